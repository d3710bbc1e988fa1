// Package ledger is the client-side source of truth for vendors, bills and
// settings: optimistic in-memory mutation, derived aggregate queries, and a
// single-document local persistence layer with an optional best-effort
// remote mirror.
package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Vendor is a company the user processes bills for, with the commission
// ("cut") percentage owed back to the user.
type Vendor struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	CutPercent decimal.Decimal `json:"cutPercent"` // 0 < x <= 100
	Color      string          `json:"color"`
	Notes      string          `json:"notes,omitempty"`
}

// Bill is one processed bill. VendorID may dangle if the vendor was deleted;
// every read path must degrade that to "no vendor", never fail.
type Bill struct {
	ID           string          `json:"id"`
	VendorID     string          `json:"vendorId"`
	CustomerName string          `json:"customerName"`
	Amount       decimal.Decimal `json:"amount"` // > 0
	Date         string          `json:"date"`   // YYYY-MM-DD
	Notes        string          `json:"notes,omitempty"`
	Confidence   string          `json:"confidence"` // high|medium|low
}

// BillNumberMarker is the free-text marker embedded in Bill.Notes that makes
// the invoice number recoverable for duplicate detection. The invoice number
// is deliberately not a first-class field.
const BillNumberMarker = "Bill #"

// UserProfile holds the single local user's display settings.
type UserProfile struct {
	Name  string `json:"name"`
	Theme string `json:"theme,omitempty"`
}

// Snapshot is the aggregate root persisted as one JSON document.
type Snapshot struct {
	User          UserProfile     `json:"user"`
	Vendors       []Vendor        `json:"vendors"`
	Bills         []Bill          `json:"bills"`
	MonthlyTarget decimal.Decimal `json:"monthlyTarget"`
	SelectedMonth string          `json:"selectedMonth"` // YYYY-MM
}

// Clone returns a deep copy so readers never alias store-owned slices.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Vendors = make([]Vendor, len(s.Vendors))
	copy(out.Vendors, s.Vendors)
	out.Bills = make([]Bill, len(s.Bills))
	copy(out.Bills, s.Bills)
	return out
}

// MonthPrefix reports whether date (YYYY-MM-DD) falls in month (YYYY-MM).
// String-prefix match by contract, not calendar parsing.
func MonthPrefix(date, month string) bool {
	if len(month) != 7 {
		return false
	}
	return strings.HasPrefix(date, month)
}

package ledger

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billerpro/billerpro/internal/common"
)

// MirrorSink receives change notifications after a local mutation commits.
// Implementations must not block: mirroring is strictly best-effort and never
// holds up or reverts the local write.
type MirrorSink interface {
	VendorsChanged(vendors []Vendor)
	SettingsChanged(snap Snapshot)
	BillUpserted(bill Bill)
	BillDeleted(id string)
}

// Store owns the in-memory snapshot. Mutations apply synchronously under one
// mutex (read snapshot, compute, write, with no suspension in between), then
// persist best-effort and notify the mirror sink.
type Store struct {
	mu     sync.Mutex
	snap   Snapshot
	doc    *DocumentStore // nil in tests that don't persist
	sink   MirrorSink     // nil until AttachMirror
	logger *slog.Logger
}

// Open loads the persisted snapshot (or starts fresh) and returns the store.
func Open(doc *DocumentStore, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{doc: doc, logger: logger}
	if doc == nil {
		s.snap = fresh()
		return s, nil
	}
	snap, err := doc.Load()
	if err != nil {
		return nil, err
	}
	s.snap = snap
	return s, nil
}

// AttachMirror wires the optional remote mirror. Call before serving.
func (s *Store) AttachMirror(sink MirrorSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// persistLocked writes the snapshot; failure is logged, never propagated.
// Availability beats durability here.
func (s *Store) persistLocked() {
	if s.doc == nil {
		return
	}
	if err := s.doc.Save(s.snap); err != nil {
		s.logger.Error("ledger.persist.failed", "error", err)
	}
}

// ---- vendor mutations ----

func (s *Store) AddVendor(name string, cutPercent decimal.Decimal, color, notes string) (Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Vendor{}, common.ValidationError("vendor name is required")
	}
	if err := validateCut(cutPercent); err != nil {
		return Vendor{}, err
	}

	v := Vendor{
		ID:         uuid.NewString(),
		Name:       name,
		CutPercent: cutPercent,
		Color:      color,
		Notes:      notes,
	}

	s.mu.Lock()
	s.snap.Vendors = append(s.snap.Vendors, v)
	s.persistLocked()
	vendors := append([]Vendor(nil), s.snap.Vendors...)
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink.VendorsChanged(vendors)
	}
	return v, nil
}

func (s *Store) UpdateVendor(v Vendor) error {
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		return common.ValidationError("vendor name is required")
	}
	if err := validateCut(v.CutPercent); err != nil {
		return err
	}

	s.mu.Lock()
	idx := -1
	for i := range s.snap.Vendors {
		if s.snap.Vendors[i].ID == v.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return common.NewAppError("VENDOR_NOT_FOUND", "vendor not found", common.ErrNotFound)
	}
	s.snap.Vendors[idx] = v
	s.persistLocked()
	vendors := append([]Vendor(nil), s.snap.Vendors...)
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink.VendorsChanged(vendors)
	}
	return nil
}

// DeleteVendor removes the vendor only. Bills referencing it stay and their
// vendorId dangles; reads degrade that to "no vendor, zero earnings".
func (s *Store) DeleteVendor(id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.snap.Vendors {
		if s.snap.Vendors[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return common.NewAppError("VENDOR_NOT_FOUND", "vendor not found", common.ErrNotFound)
	}
	s.snap.Vendors = append(s.snap.Vendors[:idx], s.snap.Vendors[idx+1:]...)
	s.persistLocked()
	vendors := append([]Vendor(nil), s.snap.Vendors...)
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink.VendorsChanged(vendors)
	}
	return nil
}

// ---- bill mutations ----

func (s *Store) AddBill(vendorID, customerName string, amount decimal.Decimal, date, notes, confidence string) (Bill, error) {
	customerName = strings.TrimSpace(customerName)
	switch {
	case strings.TrimSpace(vendorID) == "":
		return Bill{}, common.ValidationError("select a vendor before saving")
	case customerName == "":
		return Bill{}, common.ValidationError("customer name is required")
	case !amount.IsPositive():
		return Bill{}, common.ValidationError("amount must be greater than zero")
	case strings.TrimSpace(date) == "":
		return Bill{}, common.ValidationError("bill date is required")
	}

	b := Bill{
		ID:           uuid.NewString(),
		VendorID:     vendorID,
		CustomerName: customerName,
		Amount:       amount,
		Date:         date,
		Notes:        notes,
		Confidence:   confidence,
	}

	s.mu.Lock()
	s.snap.Bills = append(s.snap.Bills, b)
	s.persistLocked()
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink.BillUpserted(b)
	}
	return b, nil
}

func (s *Store) DeleteBill(id string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.snap.Bills {
		if s.snap.Bills[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return common.NewAppError("BILL_NOT_FOUND", "bill not found", common.ErrNotFound)
	}
	s.snap.Bills = append(s.snap.Bills[:idx], s.snap.Bills[idx+1:]...)
	s.persistLocked()
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink.BillDeleted(id)
	}
	return nil
}

// ---- settings mutations ----

func (s *Store) SetMonthlyTarget(target decimal.Decimal) error {
	if target.IsNegative() {
		return common.ValidationError("monthly target cannot be negative")
	}
	s.settingsMutation(func(snap *Snapshot) { snap.MonthlyTarget = target })
	return nil
}

func (s *Store) SetUserProfile(p UserProfile) {
	s.settingsMutation(func(snap *Snapshot) { snap.User = p })
}

func (s *Store) SetSelectedMonth(month string) error {
	if len(month) != 7 || month[4] != '-' {
		return common.ValidationError("month must be YYYY-MM")
	}
	s.settingsMutation(func(snap *Snapshot) { snap.SelectedMonth = month })
	return nil
}

func (s *Store) settingsMutation(apply func(*Snapshot)) {
	s.mu.Lock()
	apply(&s.snap)
	s.persistLocked()
	snap := s.snap.Clone()
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink.SettingsChanged(snap)
	}
}

// ---- derived reads (always recomputed from the current snapshot) ----

func (s *Store) Vendor(id string) (Vendor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.Vendors {
		if s.snap.Vendors[i].ID == id {
			return s.snap.Vendors[i], true
		}
	}
	return Vendor{}, false
}

func (s *Store) Vendors() []Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Vendor(nil), s.snap.Vendors...)
}

func (s *Store) Bills() []Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Bill(nil), s.snap.Bills...)
}

// BillsForMonth returns bills whose date begins with the 7-char YYYY-MM
// prefix, by contract a string match.
func (s *Store) BillsForMonth(month string) []Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Bill, 0, 8)
	for i := range s.snap.Bills {
		if MonthPrefix(s.snap.Bills[i].Date, month) {
			out = append(out, s.snap.Bills[i])
		}
	}
	return out
}

// EarningsForMonth sums amount * cutPercent / 100 over the month's bills.
// Bills whose vendor no longer exists contribute zero.
func (s *Store) EarningsForMonth(month string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for i := range s.snap.Bills {
		b := &s.snap.Bills[i]
		if !MonthPrefix(b.Date, month) {
			continue
		}
		v, ok := s.vendorLocked(b.VendorID)
		if !ok {
			continue
		}
		total = total.Add(b.Amount.Mul(v.CutPercent).Div(decimal.NewFromInt(100)))
	}
	return total
}

// TotalBillsForMonth sums the month's bill amounts, dangling vendors included.
func (s *Store) TotalBillsForMonth(month string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for i := range s.snap.Bills {
		if MonthPrefix(s.snap.Bills[i].Date, month) {
			total = total.Add(s.snap.Bills[i].Amount)
		}
	}
	return total
}

// SnapshotCopy returns a deep copy of the whole aggregate for settings and
// export reads.
func (s *Store) SnapshotCopy() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

func (s *Store) vendorLocked(id string) (Vendor, bool) {
	for i := range s.snap.Vendors {
		if s.snap.Vendors[i].ID == id {
			return s.snap.Vendors[i], true
		}
	}
	return Vendor{}, false
}

func validateCut(cut decimal.Decimal) error {
	if !cut.IsPositive() || cut.GreaterThan(decimal.NewFromInt(100)) {
		return common.ValidationError("cut percent must be between 0 and 100")
	}
	return nil
}

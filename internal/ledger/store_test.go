package ledger

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func TestAddVendorValidation(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name       string
		vendorName string
		cut        string
	}{
		{"empty name", "", "10"},
		{"blank name", "   ", "10"},
		{"zero cut", "Acme", "0"},
		{"negative cut", "Acme", "-5"},
		{"cut above hundred", "Acme", "101"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.AddVendor(tt.vendorName, dec(t, tt.cut), "", ""); err == nil {
				t.Errorf("AddVendor(%q, %s) succeeded, want error", tt.vendorName, tt.cut)
			}
		})
	}
	if len(s.Vendors()) != 0 {
		t.Errorf("rejected vendors were stored: %v", s.Vendors())
	}

	v, err := s.AddVendor("Acme Co", dec(t, "100"), "#fff", "note")
	if err != nil {
		t.Fatalf("AddVendor: %v", err)
	}
	if v.ID == "" {
		t.Error("AddVendor returned empty ID")
	}
}

func TestBillsForMonthPrefix(t *testing.T) {
	s := newTestStore(t)
	v, _ := s.AddVendor("Acme", dec(t, "10"), "", "")

	dates := []string{"2024-03-01", "2024-03-31", "2024-04-01", "2023-03-15"}
	for _, d := range dates {
		if _, err := s.AddBill(v.ID, "cust", dec(t, "100"), d, "", "high"); err != nil {
			t.Fatalf("AddBill(%s): %v", d, err)
		}
	}

	got := s.BillsForMonth("2024-03")
	if len(got) != 2 {
		t.Fatalf("BillsForMonth(2024-03) returned %d bills, want 2", len(got))
	}
	for _, b := range got {
		if !strings.HasPrefix(b.Date, "2024-03") {
			t.Errorf("bill date %q outside month", b.Date)
		}
	}

	if got := s.BillsForMonth("2024-3"); len(got) != 0 {
		t.Errorf("malformed month matched %d bills, want 0", len(got))
	}
}

func TestEarningsForMonth(t *testing.T) {
	s := newTestStore(t)
	v, _ := s.AddVendor("Acme", dec(t, "10"), "", "")

	if _, err := s.AddBill(v.ID, "cust", dec(t, "5000"), "2024-01-12", "", "high"); err != nil {
		t.Fatalf("AddBill: %v", err)
	}
	if got := s.EarningsForMonth("2024-01"); !got.Equal(dec(t, "500")) {
		t.Errorf("EarningsForMonth = %s, want 500", got)
	}

	// Dangling vendor contributes zero earnings but the bill still lists.
	if _, err := s.AddBill("no-such-vendor", "cust", dec(t, "9000"), "2024-01-20", "", "low"); err != nil {
		t.Fatalf("AddBill dangling: %v", err)
	}
	if got := s.EarningsForMonth("2024-01"); !got.Equal(dec(t, "500")) {
		t.Errorf("EarningsForMonth with dangling vendor = %s, want 500", got)
	}
	if got := s.BillsForMonth("2024-01"); len(got) != 2 {
		t.Errorf("BillsForMonth = %d bills, want 2 including dangling", len(got))
	}
	if got := s.TotalBillsForMonth("2024-01"); !got.Equal(dec(t, "14000")) {
		t.Errorf("TotalBillsForMonth = %s, want 14000", got)
	}
}

func TestDeleteVendorKeepsBills(t *testing.T) {
	s := newTestStore(t)
	v, _ := s.AddVendor("Acme", dec(t, "50"), "", "")
	b, _ := s.AddBill(v.ID, "cust", dec(t, "200"), "2024-02-02", "", "high")

	if err := s.DeleteVendor(v.ID); err != nil {
		t.Fatalf("DeleteVendor: %v", err)
	}
	bills := s.Bills()
	if len(bills) != 1 || bills[0].ID != b.ID {
		t.Fatalf("bill vanished with its vendor: %v", bills)
	}
	if got := s.EarningsForMonth("2024-02"); !got.IsZero() {
		t.Errorf("earnings after vendor delete = %s, want 0", got)
	}
}

func TestAddBillValidation(t *testing.T) {
	s := newTestStore(t)
	v, _ := s.AddVendor("Acme", dec(t, "10"), "", "")

	tests := []struct {
		name     string
		vendorID string
		customer string
		amount   string
		date     string
	}{
		{"missing vendor", "", "cust", "100", "2024-01-01"},
		{"missing customer", v.ID, "  ", "100", "2024-01-01"},
		{"zero amount", v.ID, "cust", "0", "2024-01-01"},
		{"negative amount", v.ID, "cust", "-1", "2024-01-01"},
		{"missing date", v.ID, "cust", "100", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(s.Bills())
			if _, err := s.AddBill(tt.vendorID, tt.customer, dec(t, tt.amount), tt.date, "", "high"); err == nil {
				t.Errorf("AddBill succeeded, want error")
			}
			if after := len(s.Bills()); after != before {
				t.Errorf("bill count changed %d -> %d on rejected save", before, after)
			}
		})
	}
}

func TestSettingsMutations(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetMonthlyTarget(dec(t, "-1")); err == nil {
		t.Error("negative target accepted")
	}
	if err := s.SetMonthlyTarget(dec(t, "25000")); err != nil {
		t.Fatalf("SetMonthlyTarget: %v", err)
	}

	if err := s.SetSelectedMonth("2024/03"); err == nil {
		t.Error("malformed month accepted")
	}
	if err := s.SetSelectedMonth("2024-03"); err != nil {
		t.Fatalf("SetSelectedMonth: %v", err)
	}

	s.SetUserProfile(UserProfile{Name: "Asha", Theme: "dark"})

	snap := s.SnapshotCopy()
	if !snap.MonthlyTarget.Equal(dec(t, "25000")) || snap.SelectedMonth != "2024-03" || snap.User.Name != "Asha" {
		t.Errorf("snapshot = %+v", snap)
	}
}

type recordingSink struct {
	vendorCalls int
	billUpserts []string
	billDeletes []string
	settings    int
}

func (r *recordingSink) VendorsChanged([]Vendor)  { r.vendorCalls++ }
func (r *recordingSink) SettingsChanged(Snapshot) { r.settings++ }
func (r *recordingSink) BillUpserted(b Bill)      { r.billUpserts = append(r.billUpserts, b.ID) }
func (r *recordingSink) BillDeleted(id string)    { r.billDeletes = append(r.billDeletes, id) }

func TestMirrorSinkNotifications(t *testing.T) {
	s := newTestStore(t)
	sink := &recordingSink{}
	s.AttachMirror(sink)

	v, _ := s.AddVendor("Acme", dec(t, "10"), "", "")
	b, _ := s.AddBill(v.ID, "cust", dec(t, "100"), "2024-01-01", "", "high")
	_ = s.DeleteBill(b.ID)
	_ = s.SetMonthlyTarget(dec(t, "1000"))
	_ = s.DeleteVendor(v.ID)

	if sink.vendorCalls != 2 {
		t.Errorf("vendor notifications = %d, want 2", sink.vendorCalls)
	}
	if len(sink.billUpserts) != 1 || sink.billUpserts[0] != b.ID {
		t.Errorf("bill upserts = %v", sink.billUpserts)
	}
	if len(sink.billDeletes) != 1 || sink.billDeletes[0] != b.ID {
		t.Errorf("bill deletes = %v", sink.billDeletes)
	}
	if sink.settings != 1 {
		t.Errorf("settings notifications = %d, want 1", sink.settings)
	}
}

func TestVendorLookupAndUpdate(t *testing.T) {
	s := newTestStore(t)
	v, _ := s.AddVendor("Acme", dec(t, "10"), "", "")

	got, ok := s.Vendor(v.ID)
	if !ok || got.Name != "Acme" {
		t.Fatalf("Vendor(%s) = %+v, %v", v.ID, got, ok)
	}
	if _, ok := s.Vendor("missing"); ok {
		t.Error("Vendor(missing) reported found")
	}

	v.Name = "Acme Co"
	v.CutPercent = dec(t, "15")
	if err := s.UpdateVendor(v); err != nil {
		t.Fatalf("UpdateVendor: %v", err)
	}
	got, _ = s.Vendor(v.ID)
	if got.Name != "Acme Co" || !got.CutPercent.Equal(dec(t, "15")) {
		t.Errorf("after update: %+v", got)
	}

	if err := s.UpdateVendor(Vendor{ID: "missing", Name: "X", CutPercent: dec(t, "1")}); err == nil {
		t.Error("UpdateVendor(missing) succeeded")
	}
}

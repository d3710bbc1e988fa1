package export

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/billerpro/billerpro/internal/ledger"
)

func seedStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(nil, nil)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	v, err := store.AddVendor("Acme Co", decimal.NewFromInt(10), "", "")
	if err != nil {
		t.Fatalf("AddVendor: %v", err)
	}
	if _, err := store.AddBill(v.ID, "Ravi", decimal.NewFromInt(5000), "2024-01-12", "Issuer: Acme Co · Bill #INV-099", "high"); err != nil {
		t.Fatalf("AddBill: %v", err)
	}
	if _, err := store.AddBill("gone", "Meena", decimal.NewFromInt(1000), "2024-01-20", "", "low"); err != nil {
		t.Fatalf("AddBill dangling: %v", err)
	}
	if _, err := store.AddBill(v.ID, "Other", decimal.NewFromInt(777), "2024-02-01", "", "high"); err != nil {
		t.Fatalf("AddBill other month: %v", err)
	}
	return store
}

func TestMonthXLSX(t *testing.T) {
	svc := NewService(seedStore(t), nil)

	data, err := svc.MonthXLSX("2024-01")
	if err != nil {
		t.Fatalf("MonthXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Bills")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	// header + 2 january bills + totals
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4: %v", len(rows), rows)
	}
	if rows[0][0] != "Date" || rows[0][3] != "Amount" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][2] != "Acme Co" || rows[1][5] != "500" {
		t.Errorf("vendor row = %v", rows[1])
	}
	if rows[2][2] != "-" || rows[2][5] != "0" {
		t.Errorf("dangling vendor row = %v", rows[2])
	}
	if rows[3][0] != "Total" || rows[3][3] != "6000" {
		t.Errorf("totals row = %v", rows[3])
	}
}

func TestMonthStatementPDF(t *testing.T) {
	svc := NewService(seedStore(t), nil)

	data, err := svc.MonthStatementPDF("2024-01")
	if err != nil {
		t.Fatalf("MonthStatementPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with PDF header: %q", data[:8])
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short stays", "Ravi", 30, "Ravi"},
		{"long ascii clipped", "A Very Long Customer Name Indeed Ltd", 20, "A Very Long Custo..."},
		{"multibyte within rune budget stays", strings.Repeat("₹", 10), 10, strings.Repeat("₹", 10)},
		{"multibyte clipped on rune boundary", strings.Repeat("₹", 12), 10, strings.Repeat("₹", 7) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clip(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("clip(%q, %d) produced invalid UTF-8", tt.in, tt.max)
			}
		})
	}
}

func TestMonthXLSXEmptyMonth(t *testing.T) {
	svc := NewService(seedStore(t), nil)
	data, err := svc.MonthXLSX("2030-12")
	if err != nil {
		t.Fatalf("MonthXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()
	rows, _ := f.GetRows("Bills")
	// header + totals only
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2: %v", len(rows), rows)
	}
}

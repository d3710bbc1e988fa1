package dedup

import (
	"testing"

	"github.com/billerpro/billerpro/internal/ledger"
)

func TestExtractBillNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"invoice no with colon", "Invoice No: INV-042", "INV-042"},
		{"invoice no with dot and hash", "Invoice No. #7781", "7781"},
		{"bill no", "Bill No: BX-100 for services", "BX-100"},
		{"invoice number does not capture from number word", "Invoice Number: INV-777", "INV-777"},
		{"inv dot no", "Inv. No. AB12", "AB12"},
		{"receipt no", "Receipt No 000123", "000123"},
		{"case insensitive", "INVOICE NO: abc-9", "abc-9"},
		{"no label", "Total Amount: 480.00", ""},
		{"single char token ignored", "Invoice No: 7", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractBillNumber(tt.text); got != tt.want {
				t.Errorf("ExtractBillNumber(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectDuplicate(t *testing.T) {
	saved := ledger.Bill{
		ID:    "b1",
		Notes: "Issuer: X · Bill #INV-042",
	}

	t.Run("same invoice number matches", func(t *testing.T) {
		got := DetectDuplicate("Tax Invoice\nInvoice No: INV-042\nAmount 500", []ledger.Bill{saved})
		if got == nil || got.ID != "b1" {
			t.Fatalf("DetectDuplicate() = %v, want bill b1", got)
		}
	})

	t.Run("different invoice number does not match", func(t *testing.T) {
		got := DetectDuplicate("Invoice No: INV-043", []ledger.Bill{saved})
		if got != nil {
			t.Fatalf("DetectDuplicate() = %v, want nil", got)
		}
	})

	t.Run("no label means no check", func(t *testing.T) {
		got := DetectDuplicate("this text mentions INV-042 with no label", []ledger.Bill{saved})
		if got != nil {
			t.Fatalf("DetectDuplicate() = %v, want nil", got)
		}
	})

	t.Run("leading zeros normalized", func(t *testing.T) {
		zeroSaved := ledger.Bill{ID: "b2", Notes: "Bill #42"}
		got := DetectDuplicate("Invoice No: 0042", []ledger.Bill{zeroSaved})
		if got == nil || got.ID != "b2" {
			t.Fatalf("DetectDuplicate() = %v, want bill b2", got)
		}
	})

	t.Run("empty bill list", func(t *testing.T) {
		if got := DetectDuplicate("Invoice No: INV-042", nil); got != nil {
			t.Fatalf("DetectDuplicate() = %v, want nil", got)
		}
	})
}

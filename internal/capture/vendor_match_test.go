package capture

import (
	"testing"

	"github.com/billerpro/billerpro/internal/ledger"
)

func TestMatchVendor(t *testing.T) {
	vendors := []ledger.Vendor{
		{ID: "v1", Name: "Acme Co"},
		{ID: "v2", Name: "Globex Industries"},
		{ID: "v3", Name: "Initech"},
	}

	tests := []struct {
		name string
		hint string
		want string
	}{
		{"exact match", "Acme Co", "v1"},
		{"exact match case insensitive", "globex industries", "v2"},
		{"first token containment", "GLOBEX PRIVATE LIMITED", "v2"},
		{"token containment mid-string", "Bill from Initech Services", "v3"},
		{"no match falls back to first vendor", "Umbrella Corp", "v1"},
		{"empty hint falls back to first vendor", "", "v1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchVendor(tt.hint, vendors); got != tt.want {
				t.Errorf("matchVendor(%q) = %q, want %q", tt.hint, got, tt.want)
			}
		})
	}
}

func TestMatchVendorNoVendors(t *testing.T) {
	if got := matchVendor("Acme", nil); got != "" {
		t.Errorf("matchVendor with no vendors = %q, want empty", got)
	}
}

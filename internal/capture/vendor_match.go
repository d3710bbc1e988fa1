package capture

import (
	"strings"

	"github.com/billerpro/billerpro/internal/ledger"
)

// matchVendor auto-selects a vendor for the detected issuer name:
// exact case-insensitive match first, then a containment check against the
// first space-delimited token of each vendor name, then the first configured
// vendor, or none when no vendors exist.
func matchVendor(hint string, vendors []ledger.Vendor) string {
	if len(vendors) == 0 {
		return ""
	}
	hint = strings.TrimSpace(hint)
	if hint != "" {
		lowerHint := strings.ToLower(hint)
		for i := range vendors {
			if strings.EqualFold(vendors[i].Name, hint) {
				return vendors[i].ID
			}
		}
		for i := range vendors {
			token := firstToken(vendors[i].Name)
			if token != "" && strings.Contains(lowerHint, strings.ToLower(token)) {
				return vendors[i].ID
			}
		}
	}
	return vendors[0].ID
}

func firstToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

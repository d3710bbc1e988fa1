// Package dedup spots bills that were already saved, by recovering an
// invoice number from freshly extracted text and matching it against the
// "Bill #<n>" markers embedded in saved bill notes. False negatives are
// acceptable; false positives are not, because they block user progress.
package dedup

import (
	"regexp"
	"strings"

	"github.com/billerpro/billerpro/internal/ledger"
)

// Ordered label patterns. The first label that matches wins; the candidate
// is the first alphanumeric token (>=2 chars) following it.
// The \b after "no" keeps "Invoice No." from swallowing "Invoice Number".
var labelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)invoice\s*no\b\.?\s*[#:]?\s*([A-Za-z0-9][A-Za-z0-9-]+)`),
	regexp.MustCompile(`(?i)bill\s*no\b\.?\s*[#:]?\s*([A-Za-z0-9][A-Za-z0-9-]+)`),
	regexp.MustCompile(`(?i)invoice\s*number\s*[#:]?\s*([A-Za-z0-9][A-Za-z0-9-]+)`),
	regexp.MustCompile(`(?i)inv\b\.?\s*no\b\.?\s*[#:]?\s*([A-Za-z0-9][A-Za-z0-9-]+)`),
	regexp.MustCompile(`(?i)receipt\s*no\b\.?\s*[#:]?\s*([A-Za-z0-9][A-Za-z0-9-]+)`),
}

// ExtractBillNumber returns the invoice-number candidate found in rawText,
// or "" when no label matches.
func ExtractBillNumber(rawText string) string {
	for _, re := range labelPatterns {
		if m := re.FindStringSubmatch(rawText); m != nil {
			return m[1]
		}
	}
	return ""
}

// DetectDuplicate returns the first existing bill whose notes carry the
// candidate invoice number found in rawText, or nil when no label matches or
// nothing collides. No label means no check at all.
func DetectDuplicate(rawText string, existing []ledger.Bill) *ledger.Bill {
	candidate := ExtractBillNumber(rawText)
	if candidate == "" {
		return nil
	}
	normalized := strings.TrimLeft(candidate, "0")

	markers := []string{ledger.BillNumberMarker + candidate}
	if normalized != "" && normalized != candidate {
		markers = append(markers, ledger.BillNumberMarker+normalized)
	}
	for i := range existing {
		for _, marker := range markers {
			if strings.Contains(existing[i].Notes, marker) {
				return &existing[i]
			}
		}
	}
	return nil
}

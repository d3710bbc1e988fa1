// Package mask redacts bank identifiers from extracted bill text before any
// of it leaves the device. Detection is regex-heuristic and contractual: the
// patterns below are the behavior, not a general PII guarantee.
package mask

import (
	"regexp"
	"strings"
	"unicode"
)

// Placeholder tokens. None of them re-match the pattern that produced them,
// which is what makes Mask idempotent.
const (
	ifscPlaceholder    = "[MASKED-IFSC]"
	accountPlaceholder = "[MASKED-AC]"
	upiPlaceholder     = "[MASKED-UPI]"
	bankPlaceholder    = "[MASKED-BANK]"
)

// Category names reported to the user in the privacy banner.
const (
	CategoryIFSC    = "IFSC Code"
	CategoryAccount = "Bank Account Number"
	CategoryUPI     = "UPI ID"
)

var (
	// 4 uppercase letters + literal 0 + 6 alphanumerics, whole word.
	reIFSC = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)

	// Digit runs; 9-18 digit candidates are filtered by adjacency below.
	reDigitRun = regexp.MustCompile(`[0-9]+`)

	// local-part@domain, with an optional dotted tail captured so the
	// .com/.in exclusion can see it.
	reUPI = regexp.MustCompile(`[A-Za-z0-9._-]+@[A-Za-z]+(?:\.[A-Za-z]+)*`)

	// "Bank Name" label followed by the name itself, up to a line boundary
	// or non-name character. Only the captured name is replaced.
	reBankLabel = regexp.MustCompile(`(?i)(Bank\s*Name\s*[:\-]?\s*)([A-Za-z][A-Za-z .&]*)`)
	reBankWord  = regexp.MustCompile(`(?i)\bbank\b`)
)

// Characters that disqualify an adjacent digit run from being an account
// number: decimals, dates, amounts with currency or percent, and digit runs
// glued to '@' (those are payment handles, handled by the UPI rule). Word
// characters disqualify too: the run must stand as a whole word, so digits
// inside an alphanumeric reference like INV202400012345 stay put.
const accountNeighborExclusions = "./,₹%@"

// Mask redacts bank identifiers in rawText and reports which categories
// fired, in detection order. It never fails; unmatched patterns simply mean
// no redaction for that category.
func Mask(rawText string) (string, []string) {
	masked := rawText
	fields := make([]string, 0, 3)

	if out, n := maskIFSC(masked); n > 0 {
		masked = out
		fields = append(fields, CategoryIFSC)
	}
	if out, n := maskAccountNumbers(masked); n > 0 {
		masked = out
		fields = append(fields, CategoryAccount)
	}
	if out, n := maskUPIHandles(masked); n > 0 {
		masked = out
		fields = append(fields, CategoryUPI)
	}
	// Bank-name labels are redacted but deliberately not reported.
	masked = maskBankLabels(masked)

	return masked, fields
}

func maskIFSC(s string) (string, int) {
	n := 0
	out := reIFSC.ReplaceAllStringFunc(s, func(string) string {
		n++
		return ifscPlaceholder
	})
	return out, n
}

// maskAccountNumbers replaces whole-word runs of 9-18 digits. RE2 has no
// lookaround, so neighbor checks are done by hand on rune boundaries.
func maskAccountNumbers(s string) (string, int) {
	locs := reDigitRun.FindAllStringIndex(s, -1)
	if locs == nil {
		return s, 0
	}
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		length := end - start
		if length < 9 || length > 18 || !isAccountBoundary(s, start, end) {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(accountPlaceholder)
		last = end
		n++
	}
	b.WriteString(s[last:])
	return b.String(), n
}

func isAccountBoundary(s string, start, end int) bool {
	if start > 0 {
		before := lastRune(s[:start])
		if isWordRune(before) || strings.ContainsRune(accountNeighborExclusions, before) {
			return false
		}
	}
	if end < len(s) {
		after := firstRune(s[end:])
		if isWordRune(after) || strings.ContainsRune(accountNeighborExclusions, after) {
			return false
		}
	}
	return true
}

// isWordRune mirrors the \b word-character class.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func maskUPIHandles(s string) (string, int) {
	n := 0
	out := reUPI.ReplaceAllStringFunc(s, func(m string) string {
		// Heuristic: ordinary email addresses stay untouched.
		if strings.Contains(m, ".com") || strings.Contains(m, ".in") {
			return m
		}
		n++
		return upiPlaceholder
	})
	return out, n
}

func maskBankLabels(s string) string {
	return reBankLabel.ReplaceAllStringFunc(s, func(m string) string {
		sub := reBankLabel.FindStringSubmatch(m)
		label, name := sub[1], sub[2]
		if !reBankWord.MatchString(name) {
			return m
		}
		return label + bankPlaceholder
	})
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}

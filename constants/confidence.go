package constants

// Confidence levels reported by the field extractor and stored on bills.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// NormalizeConfidence coerces arbitrary extractor output to a known level,
// falling back to low.
func NormalizeConfidence(s string) string {
	switch s {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return s
	default:
		return ConfidenceLow
	}
}

package llm

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"strings"

	"github.com/billerpro/billerpro/constants"
)

var (
	reAmount  = regexp.MustCompile(`^\d+(\.\d+)?$`)
	reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// StripFences removes a Markdown code-fence wrapper (``` or ```json) if the
// model added one despite instructions.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		// drop the language tag line ("json", "JSON", or empty)
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// NormalizeResponseJSON makes a model response schema-friendly:
//   - drops unknown keys (additionalProperties is false)
//   - coerces numeric amount to string and strips currency noise
//   - drops null / empty optionals
//
// Returns the cleaned JSON and the list of adjustments made.
func NormalizeResponseJSON(raw []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string

	stringFields := []string{"customer_name", "amount", "date", "bill_number", "vendor_name"}
	for _, k := range stringFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		case float64:
			if t == float64(int64(t)) {
				m[k] = fmt.Sprintf("%d", int64(t))
			} else {
				m[k] = fmt.Sprintf("%.2f", t)
			}
			dropped = append(dropped, k+"(number)")
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		default:
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}

	// amount: strip currency symbols and thousands separators the model
	// sometimes leaves in despite instructions
	if v, ok := m["amount"].(string); ok {
		s := strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", ",", "", " ", "").Replace(v)
		if s == "" {
			delete(m, "amount")
			dropped = append(dropped, "amount(empty)")
		} else {
			m["amount"] = s
		}
	}

	// values the schema would reject are dropped, not fatal: a missing date
	// defaults to today at draft time, a missing amount stays editable
	if v, ok := m["amount"].(string); ok && !reAmount.MatchString(v) {
		delete(m, "amount")
		dropped = append(dropped, "amount(pattern)")
	}
	if v, ok := m["date"].(string); ok && !reISODate.MatchString(v) {
		delete(m, "date")
		dropped = append(dropped, "date(pattern)")
	}

	// confidence: keep only known keys with known levels
	if v, ok := m["confidence"]; ok {
		cm, ok := v.(map[string]any)
		if !ok {
			delete(m, "confidence")
			dropped = append(dropped, "confidence(type)")
		} else {
			clean := map[string]any{}
			for _, k := range []string{"customer", "amount", "date"} {
				if s, ok := cm[k].(string); ok {
					clean[k] = constants.NormalizeConfidence(strings.ToLower(strings.TrimSpace(s)))
				}
			}
			m["confidence"] = clean
		}
	}

	// unknown keys are removed wholesale
	allowed := map[string]struct{}{
		"customer_name": {}, "amount": {}, "date": {},
		"bill_number": {}, "vendor_name": {}, "confidence": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, dropped, nil
}

// ApplyDefaults fills the gaps a lenient response leaves behind: empty
// strings for missing fields, low confidence where the model said nothing.
func ApplyDefaults(f *BillFields) {
	f.Confidence.Customer = constants.NormalizeConfidence(f.Confidence.Customer)
	f.Confidence.Amount = constants.NormalizeConfidence(f.Confidence.Amount)
	f.Confidence.Date = constants.NormalizeConfidence(f.Confidence.Date)
}

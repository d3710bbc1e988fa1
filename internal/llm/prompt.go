package llm

import (
	"strings"
	"unicode/utf8"
)

// MaxPromptChars bounds the text we ship to the hosted model, to bound cost.
const MaxPromptChars = 4000

// BuildSystemPrompt composes the system message: privacy preamble, the five
// fields we want, date normalization, and the bare-JSON demand.
func BuildSystemPrompt(req ExtractRequest) string {
	parts := []string{
		"You are an invoice parser for an Indian domestic tax invoice.",
		"Bank identifiers in the text were already masked for privacy; masked placeholders carry no information, ignore them.",
		"Extract exactly these fields:",
		"'customer_name': the buyer/customer name.",
		"'amount': the final total amount, GST-inclusive, digits only with optional decimal point, no currency symbols.",
		"'date': the invoice date as YYYY-MM-DD. If the text shows DD/MM/YYYY, convert it.",
		"'bill_number': the invoice or bill number.",
		"'vendor_name': the ISSUING company (the biller), NOT the receiver.",
		"Also return 'confidence': an object with 'customer', 'amount' and 'date', each one of high, medium, low.",
		"Return a bare JSON object only. No prose, no code fences.",
	}
	if len(req.KnownVendorNames) > 0 {
		parts = append(parts,
			"Vendors this user already works with (hints only, the issuer may be someone else): "+
				strings.Join(req.KnownVendorNames, ", ")+".")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt truncates the masked text to the character budget, backing
// off to the previous rune boundary so no rune is split.
func BuildUserPrompt(maskedText string) string {
	if len(maskedText) > MaxPromptChars {
		cut := MaxPromptChars
		for cut > 0 && !utf8.RuneStart(maskedText[cut]) {
			cut--
		}
		maskedText = maskedText[:cut]
	}
	var b strings.Builder
	b.WriteString("Invoice text (privacy-masked):\n")
	b.WriteString(maskedText)
	return b.String()
}

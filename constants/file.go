package constants

import "strings"

// MaxUploadBytes is the size ceiling for any file entering the capture flow.
const MaxUploadBytes = 20 << 20 // 20 MiB

// AllowedMIMETypes is the allow-list for capture uploads. Anything else is
// rejected before extraction begins.
var AllowedMIMETypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"image/webp":      {},
}

// IsAllowedMIME reports whether the given content type may enter the flow.
func IsAllowedMIME(mime string) bool {
	_, ok := AllowedMIMETypes[strings.ToLower(strings.TrimSpace(mime))]
	return ok
}

// IsPDFMIME reports whether the content type selects the PDF adapter.
func IsPDFMIME(mime string) bool {
	return strings.EqualFold(strings.TrimSpace(mime), "application/pdf")
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

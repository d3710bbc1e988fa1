package textextract

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/billerpro/billerpro/internal/common"
)

// PDFText extracts the plain-text content of every page, joined with a
// newline separator. No network, no rasterization; scanned PDFs without a
// text layer simply come back (near-)empty.
func (e *Extractor) PDFText(ctx context.Context, data []byte) (text string, err error) {
	start := time.Now()

	// The pdf library panics on some malformed cross-reference tables;
	// treat that the same as a parse error.
	defer func() {
		if r := recover(); r != nil {
			err = common.ExtractionError("could not parse this file as a PDF", fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Error("pdf.extract.failed", "error", err, "bytes", len(data))
		return "", common.ExtractionError("could not parse this file as a PDF", err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", common.ExtractionError("extraction cancelled", err)
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// one unreadable page should not sink the document
			e.logger.Warn("pdf.extract.page_failed", "page", i, "error", err)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(content)
	}

	e.logger.Info("pdf.extract.ok",
		"pages", pages,
		"text_len", b.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b.String(), nil
}

package export

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
)

// MonthStatementPDF renders a one-page earnings statement for the month.
// Core PDF fonts have no rupee glyph, so amounts are prefixed "Rs.".
func (s *Service) MonthStatementPDF(month string) ([]byte, error) {
	start := time.Now()
	rows := s.monthRows(month)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("BillerPRO Statement "+month, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Earnings Statement")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, "Month: "+month)
	pdf.Ln(10)

	widths := []float64{24, 50, 40, 28, 16, 32}
	headers := []string{"Date", "Customer", "Vendor", "Amount", "Cut %", "Earning"}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	totalAmount := decimal.Zero
	totalEarning := decimal.Zero
	for _, r := range rows {
		cut := ""
		if r.vendorName != "-" {
			cut = r.cutPercent.String()
		}
		cells := []string{
			r.bill.Date,
			clip(r.bill.CustomerName, 30),
			clip(r.vendorName, 24),
			"Rs. " + r.bill.Amount.StringFixed(2),
			cut,
			"Rs. " + r.earning.StringFixed(2),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		totalAmount = totalAmount.Add(r.bill.Amount)
		totalEarning = totalEarning.Add(r.earning)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "1", 0, "L", true, 0, "")
	pdf.CellFormat(widths[3], 8, "Rs. "+totalAmount.StringFixed(2), "1", 0, "L", true, 0, "")
	pdf.CellFormat(widths[4], 8, "", "1", 0, "L", true, 0, "")
	pdf.CellFormat(widths[5], 8, "Rs. "+totalEarning.StringFixed(2), "1", 0, "L", true, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 6, "Generated by BillerPRO on "+time.Now().Format("2006-01-02"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render statement: %w", err)
	}
	s.logger.Info("export.pdf.ok",
		"month", month,
		"bills", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// Package export produces downloadable month reports from the ledger: an
// XLSX workbook and a PDF statement.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/billerpro/billerpro/internal/ledger"
)

// Service is a tiny façade over the ledger store that renders export bytes.
type Service struct {
	store  *ledger.Store
	logger *slog.Logger
}

func NewService(store *ledger.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

type billRow struct {
	bill       ledger.Bill
	vendorName string
	cutPercent decimal.Decimal
	earning    decimal.Decimal
}

// monthRows resolves each bill's vendor; a dangling vendor renders as "-"
// with zero cut and zero earning.
func (s *Service) monthRows(month string) []billRow {
	bills := s.store.BillsForMonth(month)
	rows := make([]billRow, 0, len(bills))
	for _, b := range bills {
		row := billRow{bill: b, vendorName: "-"}
		if v, ok := s.store.Vendor(b.VendorID); ok {
			row.vendorName = v.Name
			row.cutPercent = v.CutPercent
			row.earning = b.Amount.Mul(v.CutPercent).Div(decimal.NewFromInt(100))
		}
		rows = append(rows, row)
	}
	return rows
}

// MonthXLSX returns an XLSX workbook for the given YYYY-MM month.
func (s *Service) MonthXLSX(month string) ([]byte, error) {
	start := time.Now()
	rows := s.monthRows(month)

	f := excelize.NewFile()
	const sheet = "Bills"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Customer", "Vendor", "Amount", "Cut %", "Earning", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	totalAmount := decimal.Zero
	totalEarning := decimal.Zero
	for i, r := range rows {
		rowNum := i + 2
		write(1, rowNum, r.bill.Date)
		write(2, rowNum, r.bill.CustomerName)
		write(3, rowNum, r.vendorName)
		write(4, rowNum, r.bill.Amount.String())
		if r.vendorName == "-" {
			write(5, rowNum, "")
		} else {
			write(5, rowNum, r.cutPercent.String())
		}
		write(6, rowNum, r.earning.String())
		write(7, rowNum, r.bill.Notes)
		totalAmount = totalAmount.Add(r.bill.Amount)
		totalEarning = totalEarning.Add(r.earning)
	}

	totalRow := len(rows) + 2
	write(1, totalRow, "Total")
	write(4, totalRow, totalAmount.String())
	write(6, totalRow, totalEarning.String())

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"month", month,
		"bills", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

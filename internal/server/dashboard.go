package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/billerpro/billerpro/internal/common"
	"github.com/billerpro/billerpro/internal/ledger"
)

type vendorBreakdown struct {
	VendorID   string          `json:"vendorId"`
	VendorName string          `json:"vendorName"`
	BillCount  int             `json:"billCount"`
	Amount     decimal.Decimal `json:"amount"`
	Earning    decimal.Decimal `json:"earning"`
}

type dashboardResponse struct {
	Month          string            `json:"month"`
	Earnings       decimal.Decimal   `json:"earnings"`
	TotalBills     decimal.Decimal   `json:"totalBills"`
	BillCount      int               `json:"billCount"`
	MonthlyTarget  decimal.Decimal   `json:"monthlyTarget"`
	TargetProgress decimal.Decimal   `json:"targetProgress"` // percent, 0 when no target
	Vendors        []vendorBreakdown `json:"vendors"`
}

// handleDashboard aggregates the month view. The month defaults to the
// stored selection, then to the current calendar month.
func (s *Server) handleDashboard(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = s.store.SnapshotCopy().SelectedMonth
	}
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if len(month) != 7 || month[4] != '-' {
		s.respondError(c, common.ValidationError("month must be YYYY-MM"))
		return
	}

	snap := s.store.SnapshotCopy()
	bills := s.store.BillsForMonth(month)
	earnings := s.store.EarningsForMonth(month)

	resp := dashboardResponse{
		Month:         month,
		Earnings:      earnings,
		TotalBills:    s.store.TotalBillsForMonth(month),
		BillCount:     len(bills),
		MonthlyTarget: snap.MonthlyTarget,
		Vendors:       breakdownByVendor(bills, snap.Vendors),
	}
	if snap.MonthlyTarget.IsPositive() {
		resp.TargetProgress = earnings.Mul(decimal.NewFromInt(100)).Div(snap.MonthlyTarget).Round(2)
	}
	c.JSON(http.StatusOK, resp)
}

// breakdownByVendor groups the month's bills per vendor, preserving vendor
// order. Bills whose vendor is gone are grouped under an unnamed entry with
// zero earning.
func breakdownByVendor(bills []ledger.Bill, vendors []ledger.Vendor) []vendorBreakdown {
	byID := make(map[string]*vendorBreakdown)
	order := make([]string, 0, len(vendors))
	hundred := decimal.NewFromInt(100)

	for _, b := range bills {
		entry, ok := byID[b.VendorID]
		if !ok {
			entry = &vendorBreakdown{VendorID: b.VendorID, VendorName: "-"}
			for i := range vendors {
				if vendors[i].ID == b.VendorID {
					entry.VendorName = vendors[i].Name
					break
				}
			}
			byID[b.VendorID] = entry
			order = append(order, b.VendorID)
		}
		entry.BillCount++
		entry.Amount = entry.Amount.Add(b.Amount)
		for i := range vendors {
			if vendors[i].ID == b.VendorID {
				entry.Earning = entry.Earning.Add(b.Amount.Mul(vendors[i].CutPercent).Div(hundred))
				break
			}
		}
	}

	out := make([]vendorBreakdown, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

type trendPoint struct {
	Month     string          `json:"month"`
	Earnings  decimal.Decimal `json:"earnings"`
	BillCount int             `json:"billCount"`
}

// handleTrend returns per-month earnings for the trailing N months, oldest
// first.
func (s *Server) handleTrend(c *gin.Context) {
	months := 6
	if raw := c.Query("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 36 {
			s.respondError(c, common.ValidationError("months must be between 1 and 36"))
			return
		}
		months = n
	}

	// Anchor on the first of the month so AddDate never normalizes past it.
	now := time.Now()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	points := make([]trendPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		m := anchor.AddDate(0, -i, 0).Format("2006-01")
		points = append(points, trendPoint{
			Month:     m,
			Earnings:  s.store.EarningsForMonth(m),
			BillCount: len(s.store.BillsForMonth(m)),
		})
	}
	c.JSON(http.StatusOK, gin.H{"trend": points})
}

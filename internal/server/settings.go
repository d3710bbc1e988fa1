package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/billerpro/billerpro/internal/common"
	"github.com/billerpro/billerpro/internal/ledger"
)

type settingsResponse struct {
	User          ledger.UserProfile `json:"user"`
	MonthlyTarget decimal.Decimal    `json:"monthlyTarget"`
	SelectedMonth string             `json:"selectedMonth"`
}

type settingsUpdate struct {
	User          *ledger.UserProfile `json:"user"`
	MonthlyTarget *decimal.Decimal    `json:"monthlyTarget"`
	SelectedMonth *string             `json:"selectedMonth"`
}

func (s *Server) handleGetSettings(c *gin.Context) {
	snap := s.store.SnapshotCopy()
	c.JSON(http.StatusOK, settingsResponse{
		User:          snap.User,
		MonthlyTarget: snap.MonthlyTarget,
		SelectedMonth: snap.SelectedMonth,
	})
}

// handleUpdateSettings applies whichever fields the payload carries.
func (s *Server) handleUpdateSettings(c *gin.Context) {
	var req settingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.ValidationError("invalid settings payload"))
		return
	}

	if req.MonthlyTarget != nil {
		if err := s.store.SetMonthlyTarget(*req.MonthlyTarget); err != nil {
			s.respondError(c, err)
			return
		}
	}
	if req.SelectedMonth != nil {
		if err := s.store.SetSelectedMonth(*req.SelectedMonth); err != nil {
			s.respondError(c, err)
			return
		}
	}
	if req.User != nil {
		s.store.SetUserProfile(*req.User)
	}

	snap := s.store.SnapshotCopy()
	c.JSON(http.StatusOK, settingsResponse{
		User:          snap.User,
		MonthlyTarget: snap.MonthlyTarget,
		SelectedMonth: snap.SelectedMonth,
	})
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/billerpro/billerpro/internal/common"
	"github.com/billerpro/billerpro/internal/ledger"
)

type vendorRequest struct {
	Name       string          `json:"name"`
	CutPercent decimal.Decimal `json:"cutPercent"`
	Color      string          `json:"color"`
	Notes      string          `json:"notes"`
}

func (s *Server) handleListVendors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"vendors": s.store.Vendors()})
}

func (s *Server) handleCreateVendor(c *gin.Context) {
	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.ValidationError("invalid vendor payload"))
		return
	}
	v, err := s.store.AddVendor(req.Name, req.CutPercent, req.Color, req.Notes)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (s *Server) handleUpdateVendor(c *gin.Context) {
	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, common.ValidationError("invalid vendor payload"))
		return
	}
	v := ledger.Vendor{
		ID:         c.Param("id"),
		Name:       req.Name,
		CutPercent: req.CutPercent,
		Color:      req.Color,
		Notes:      req.Notes,
	}
	if err := s.store.UpdateVendor(v); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) handleDeleteVendor(c *gin.Context) {
	if err := s.store.DeleteVendor(c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

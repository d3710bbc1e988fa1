package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/billerpro/billerpro/internal/common"
	"github.com/billerpro/billerpro/internal/mirror"
)

func (s *Server) exportMonth(c *gin.Context) (string, bool) {
	month := c.Query("month")
	if len(month) != 7 || month[4] != '-' {
		s.respondError(c, common.ValidationError("month must be YYYY-MM"))
		return "", false
	}
	return month, true
}

func (s *Server) handleExportXLSX(c *gin.Context) {
	month, ok := s.exportMonth(c)
	if !ok {
		return
	}
	data, err := s.exports.MonthXLSX(month)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="billerpro-`+month+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (s *Server) handleExportStatement(c *gin.Context) {
	month, ok := s.exportMonth(c)
	if !ok {
		return
	}
	data, err := s.exports.MonthStatementPDF(month)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="billerpro-`+month+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (s *Server) handleMirrorStatus(c *gin.Context) {
	if s.mirror == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false, "status": mirror.Status{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "status": s.mirror.Status()})
}

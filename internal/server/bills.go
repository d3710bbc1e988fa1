package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListBills(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		c.JSON(http.StatusOK, gin.H{"bills": s.store.Bills()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": s.store.BillsForMonth(month)})
}

func (s *Server) handleDeleteBill(c *gin.Context) {
	if err := s.store.DeleteBill(c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

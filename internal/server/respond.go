package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/billerpro/billerpro/internal/common"
)

// httpStatus maps the error taxonomy onto HTTP status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusServiceUnavailable
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrExtractionFormat),
		errors.Is(err, common.ErrExtractionService),
		errors.Is(err, common.ErrExtraction),
		errors.Is(err, common.ErrOcr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the toast-safe message; internals never leak.
func (s *Server) respondError(c *gin.Context, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "path", c.Request.URL.Path)
	}
	c.JSON(status, gin.H{"error": common.UserMessage(err)})
}

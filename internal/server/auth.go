package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/billerpro/billerpro/internal/common"
	"github.com/billerpro/billerpro/internal/server/middleware"
)

type loginRequest struct {
	Passcode string `json:"passcode"`
}

// handleLogin exchanges the configured passcode for a bearer token.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Passcode == "" {
		s.respondError(c, common.ValidationError("passcode is required"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.Auth.PasscodeHash), []byte(req.Passcode)); err != nil {
		s.logger.Warn("auth.login.rejected", "client_ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect passcode"})
		return
	}

	expire := time.Duration(s.cfg.Auth.TokenExpireHours) * time.Hour
	token, err := middleware.GenerateToken(s.cfg.Auth.JWTSecret, expire)
	if err != nil {
		s.respondError(c, common.WrapError(err, "sign token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": time.Now().Add(expire).UTC().Format(time.RFC3339),
	})
}

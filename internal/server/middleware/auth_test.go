package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func protectedRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthRequired(secret))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func request(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	const secret = "test-secret"
	r := protectedRouter(secret)

	token, err := GenerateToken(secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name string
		auth string
		want int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := request(r, tt.auth); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	const secret = "test-secret"
	token, err := GenerateToken(secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if w := request(protectedRouter(secret), "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Errorf("expired token = %d, want 401", w.Code)
	}
}

func TestAuthRequiredWrongSecret(t *testing.T) {
	token, err := GenerateToken("other-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if w := request(protectedRouter("test-secret"), "Bearer "+token); w.Code != http.StatusUnauthorized {
		t.Errorf("foreign token = %d, want 401", w.Code)
	}
}

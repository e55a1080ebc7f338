package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func guardedRouter(apikey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyMiddleware(APIKeyConfig{
		HeaderName:  "X-MAILBOT-API-KEY",
		ValidAPIKey: apikey,
	}))
	r.GET("/guarded", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAPIKeyMiddleware_MissingKey(t *testing.T) {
	r := guardedRouter("secret")

	req := httptest.NewRequest("GET", "/guarded", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Missing API key")
}

func TestAPIKeyMiddleware_InvalidKey(t *testing.T) {
	r := guardedRouter("secret")

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.Header.Set("X-MAILBOT-API-KEY", "wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")
}

func TestAPIKeyMiddleware_ValidKey(t *testing.T) {
	r := guardedRouter("secret")

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.Header.Set("X-MAILBOT-API-KEY", "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

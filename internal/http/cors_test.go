package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCreateCORSMiddleware(t *testing.T) {
	t.Run("Disabled_ReturnsNil", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(false, "https://app.example.com", discardLogger()))
	})

	t.Run("Enabled_NoOriginsReturnsNil", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(true, "", discardLogger()))
	})

	t.Run("Enabled_AppliesConfiguredOrigins", func(t *testing.T) {
		gin.SetMode(gin.TestMode)

		middleware := createCORSMiddleware(true, "https://app.example.com", discardLogger())
		assert.NotNil(t, middleware)

		router := gin.New()
		router.Use(middleware)
		router.GET("/probe", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Origin", "https://app.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestParseOrigins(t *testing.T) {
	t.Run("Success_CommaSeparatedWithWhitespace", func(t *testing.T) {
		origins := parseOrigins(" https://a.example.com , https://b.example.com ,")
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, origins)
	})

	t.Run("Success_EmptyInput", func(t *testing.T) {
		assert.Nil(t, parseOrigins(""))
	})
}

package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	"github.com/allisson/authgate/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConfigMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Server.Port = 9999

	router := gin.New()
	router.Use(ConfigMiddleware(cfg))
	router.GET("/probe", func(c *gin.Context) {
		got, ok := config.FromContext(c.Request.Context())
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"port": got.Server.Port})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "9999")
}

func TestErrorMapperMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success_MapsAttachedError", func(t *testing.T) {
		router := gin.New()
		router.Use(ErrorMapperMiddleware(discardLogger()))
		router.GET("/fail", func(c *gin.Context) {
			_ = c.Error(authDomain.ErrTokenNotFound)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/fail", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not_found")
	})

	t.Run("Success_LastAttachedErrorWins", func(t *testing.T) {
		router := gin.New()
		router.Use(ErrorMapperMiddleware(discardLogger()))
		router.GET("/fail", func(c *gin.Context) {
			_ = c.Error(authDomain.ErrTokenNotFound)
			_ = c.Error(authDomain.ErrStoreUnavailable)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/fail", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Success_WrittenResponseIsLeftAlone", func(t *testing.T) {
		router := gin.New()
		router.Use(ErrorMapperMiddleware(discardLogger()))
		router.GET("/partial", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			_ = c.Error(authDomain.ErrStoreUnavailable)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/partial", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Success_NoErrorNoRewrite", func(t *testing.T) {
		router := gin.New()
		router.Use(ErrorMapperMiddleware(discardLogger()))
		router.GET("/ok", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

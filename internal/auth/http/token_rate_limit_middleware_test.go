package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitedRouter(t *testing.T, rps float64, burst int) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(TokenRateLimitMiddleware(rps, burst, logger))
	router.POST("/token", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

func postToken(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	router.ServeHTTP(w, req)
	return w
}

func TestTokenRateLimitMiddleware(t *testing.T) {
	t.Run("Success_WithinLimit", func(t *testing.T) {
		router := setupRateLimitedRouter(t, 10.0, 20)

		for i := 0; i < 5; i++ {
			w := postToken(router, "")
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("Error_BurstExhausted", func(t *testing.T) {
		router := setupRateLimitedRouter(t, 1.0, 2)

		for i := 0; i < 2; i++ {
			w := postToken(router, "")
			assert.Equal(t, http.StatusOK, w.Code)
		}

		w := postToken(router, "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	})

	t.Run("Success_LimitsAreIndependentPerIP", func(t *testing.T) {
		router := setupRateLimitedRouter(t, 1.0, 1)

		w := postToken(router, "192.168.1.100:12345")
		assert.Equal(t, http.StatusOK, w.Code)

		// Same IP on a different source port shares the limiter.
		w = postToken(router, "192.168.1.100:12346")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		w = postToken(router, "192.168.1.101:12345")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestTokenRateLimiterStore_StaleEntryRemoval(t *testing.T) {
	store := &tokenRateLimiterStore{rps: 10.0, burst: 20}

	ip := "192.168.1.100"
	assert.NotNil(t, store.getLimiter(ip))

	val, ok := store.limiters.Load(ip)
	assert.True(t, ok)

	entry := val.(*tokenRateLimiterEntry)
	entry.mu.Lock()
	entry.lastAccess = time.Now().Add(-2 * time.Hour)
	entry.mu.Unlock()

	threshold := time.Now().Add(-1 * time.Hour)
	store.limiters.Range(func(key, value interface{}) bool {
		e := value.(*tokenRateLimiterEntry)
		e.mu.Lock()
		stale := e.lastAccess.Before(threshold)
		e.mu.Unlock()
		if stale {
			store.limiters.Delete(key)
		}
		return true
	})

	_, ok = store.limiters.Load(ip)
	assert.False(t, ok)
}

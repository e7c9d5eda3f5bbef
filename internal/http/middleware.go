// Package http provides the HTTP server, routing and the request pipeline.
package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/allisson/authgate/internal/config"
	"github.com/allisson/authgate/internal/httputil"
)

// ConfigMiddleware is the pipeline's inbound stage: it attaches the
// process-wide immutable configuration to the request context so every
// handler reads the same resolved view. Concurrent requests share the value;
// it is never mutated after startup.
func ConfigMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(config.NewContext(c.Request.Context(), cfg))
		c.Next()
	}
}

// ErrorMapperMiddleware is the pipeline's outbound stage: after the handler
// runs, it inspects any error the handler attached and rewrites it to a
// transport status. It runs for every request, including panics recovered
// upstream, and never lets backend detail reach the client.
func ErrorMapperMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httputil.HandleError(c, c.Errors.Last().Err, logger)
	}
}

// CustomLoggerMiddleware logs one line per request with the request id
// attached by the requestid middleware. Credentials never appear here; only
// method, path and outcome are logged.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
			slog.String("request_id", requestid.Get(c)),
		)
	}
}

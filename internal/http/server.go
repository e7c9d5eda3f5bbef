package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	authHTTP "github.com/allisson/authgate/internal/auth/http"
	authUseCase "github.com/allisson/authgate/internal/auth/usecase"
	"github.com/allisson/authgate/internal/config"
	"github.com/allisson/authgate/internal/metrics"
)

// Server represents the gateway HTTP server.
type Server struct {
	server        *http.Server
	cfg           *config.Config
	logger        *slog.Logger
	tokenHandler  *authHTTP.TokenHandler
	tokenUseCase  authUseCase.TokenUseCase
	meterProvider metric.MeterProvider
}

// NewServer creates the HTTP server with its route surface. meterProvider
// may be nil when metrics are disabled.
func NewServer(
	cfg *config.Config,
	tokenHandler *authHTTP.TokenHandler,
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
	meterProvider metric.MeterProvider,
) *Server {
	s := &Server{
		cfg:           cfg,
		logger:        logger,
		tokenHandler:  tokenHandler,
		tokenUseCase:  tokenUseCase,
		meterProvider: meterProvider,
	}

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.createRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// createRouter assembles the middleware chain and the route surface. The
// config injection stage runs before every handler and the error mapping
// stage after; the remaining middlewares wrap outside that pair.
func (s *Server) createRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if s.meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(s.meterProvider, s.cfg.Metrics.Namespace))
	}

	if corsMiddleware := createCORSMiddleware(
		s.cfg.CORS.Enabled, s.cfg.CORS.AllowOrigins, s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.Use(ConfigMiddleware(s.cfg))
	router.Use(ErrorMapperMiddleware(s.logger))

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)
	router.GET("/ping", s.readinessHandler)

	issueHandlers := []gin.HandlerFunc{s.tokenHandler.IssueTokenHandler}
	if s.cfg.RateLimit.Enabled {
		issueHandlers = append([]gin.HandlerFunc{
			authHTTP.TokenRateLimitMiddleware(
				s.cfg.RateLimit.RequestsPerSec,
				s.cfg.RateLimit.Burst,
				s.logger,
			),
		}, issueHandlers...)
	}

	router.POST("/token", issueHandlers...)
	router.GET("/token/:token", s.tokenHandler.ValidateTokenHandler)
	router.DELETE("/token/:token", s.tokenHandler.RevokeTokenHandler)

	return router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// healthHandler answers a trivial liveness probe without touching backends.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler proves store reachability with a no-op round trip. A
// store failure propagates to the error mapping stage and answers 503.
func (s *Server) readinessHandler(c *gin.Context) {
	if err := s.tokenUseCase.Ping(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

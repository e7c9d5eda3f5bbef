// Package app provides the dependency injection container assembling the
// gateway components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"

	authHTTP "github.com/allisson/authgate/internal/auth/http"
	authRepository "github.com/allisson/authgate/internal/auth/repository"
	authService "github.com/allisson/authgate/internal/auth/service"
	authUseCase "github.com/allisson/authgate/internal/auth/usecase"
	"github.com/allisson/authgate/internal/config"
	"github.com/allisson/authgate/internal/http"
	"github.com/allisson/authgate/internal/metrics"
)

// Container holds all application dependencies and provides methods to
// access them. Components are created lazily on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	redisClient     *redis.Client
	metricsProvider *metrics.Provider

	// Services and repositories
	verifier      authService.CredentialVerifier
	scopeResolver authService.ScopeResolver
	tokenRepo     authUseCase.TokenRepository

	// Use cases
	tokenUseCase authUseCase.TokenUseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	redisInit           sync.Once
	metricsProviderInit sync.Once
	verifierInit        sync.Once
	scopeResolverInit   sync.Once
	tokenRepoInit       sync.Once
	tokenUseCaseInit    sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the
// provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance, creating it on first
// access based on the configured log level.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// RedisClient returns the token store client.
func (c *Container) RedisClient() (*redis.Client, error) {
	c.redisInit.Do(func() {
		client, err := authRepository.NewRedisClient(c.config.Store)
		if err != nil {
			c.initErrors["redis"] = err
			return
		}
		c.redisClient = client
	})
	if storedErr, exists := c.initErrors["redis"]; exists {
		return nil, storedErr
	}
	return c.redisClient, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are
// disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.Metrics.Enabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.Metrics.Namespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// CredentialVerifier returns the directory-backed credential verifier.
func (c *Container) CredentialVerifier() authService.CredentialVerifier {
	c.verifierInit.Do(func() {
		c.verifier = authService.NewLDAPVerifier(c.config.Directory)
	})
	return c.verifier
}

// ScopeResolver returns the authorization scope resolver. The default
// resolver answers with an empty scope list.
func (c *Container) ScopeResolver() authService.ScopeResolver {
	c.scopeResolverInit.Do(func() {
		c.scopeResolver = authService.NewStaticScopeResolver()
	})
	return c.scopeResolver
}

// TokenRepository returns the Redis-backed token repository.
func (c *Container) TokenRepository() (authUseCase.TokenRepository, error) {
	c.tokenRepoInit.Do(func() {
		client, err := c.RedisClient()
		if err != nil {
			c.initErrors["tokenRepo"] = err
			return
		}
		c.tokenRepo = authRepository.NewRedisTokenRepository(client, c.config.Token.TTL)
	})
	if storedErr, exists := c.initErrors["tokenRepo"]; exists {
		return nil, storedErr
	}
	return c.tokenRepo, nil
}

// TokenUseCase returns the token lifecycle use case, instrumented with
// business metrics when metrics are enabled.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	c.tokenUseCaseInit.Do(func() {
		tokenRepo, err := c.TokenRepository()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
			return
		}

		useCase := authUseCase.NewTokenUseCase(
			c.CredentialVerifier(),
			tokenRepo,
			c.ScopeResolver(),
		)

		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
			return
		}
		if provider != nil {
			businessMetrics, err := metrics.NewBusinessMetrics(
				provider.MeterProvider(), c.config.Metrics.Namespace,
			)
			if err != nil {
				c.initErrors["tokenUseCase"] = err
				return
			}
			useCase = authUseCase.NewTokenUseCaseWithMetrics(useCase, businessMetrics)
		}

		c.tokenUseCase = useCase
	})
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// HTTPServer returns the gateway HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		tokenUseCase, err := c.TokenUseCase()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}

		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}

		logger := c.Logger()
		tokenHandler := authHTTP.NewTokenHandler(tokenUseCase, logger)

		if provider != nil {
			c.httpServer = http.NewServer(
				c.config, tokenHandler, tokenUseCase, logger, provider.MeterProvider(),
			)
		} else {
			c.httpServer = http.NewServer(c.config, tokenHandler, tokenUseCase, logger, nil)
		}
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics
// are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.Server.Address,
			c.config.Metrics.Port,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("redis close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates a structured logger based on the configured log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

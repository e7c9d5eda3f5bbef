package config

import (
	"context"
)

// ctxKey is a context key type for storing the resolved configuration.
type ctxKey struct{}

// NewContext returns a context carrying the resolved configuration.
// The pipeline's inbound stage calls this for every request so handlers get
// a read-only view of the process-wide config.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext retrieves the configuration from the context.
// Returns (cfg, true) if present, or (nil, false) when the request did not
// pass through the config injection stage.
func FromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(ctxKey{}).(*Config)
	return cfg, ok
}

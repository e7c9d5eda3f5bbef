// Package repository implements token persistence against the Redis
// key-value store.
package repository

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	"github.com/allisson/authgate/internal/config"
)

// tokenKeyPrefix namespaces token records in the store. The persisted layout
// is token:<compact-uuid> -> username.
const tokenKeyPrefix = "token:"

// NewRedisClient creates a pooled Redis client from the store configuration.
// Connectivity is not probed here; the gateway must come up and answer 503s
// even when the store is down.
func NewRedisClient(store config.StoreConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(store.URI)
	if err != nil {
		return nil, fmt.Errorf("invalid store uri: %w", err)
	}

	opts.DialTimeout = store.DialTimeout
	opts.ReadTimeout = store.ReadTimeout
	opts.WriteTimeout = store.WriteTimeout

	return redis.NewClient(opts), nil
}

// RedisTokenRepository stores opaque token records with a fixed expiry.
// All consistency is delegated to Redis: a single SET with TTL on issue, a
// GET on validate, a DEL on revoke. No client-side caching or locking.
type RedisTokenRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisTokenRepository creates a token repository on top of an existing
// Redis client. ttl is applied at issue time and never refreshed.
func NewRedisTokenRepository(client redis.UniversalClient, ttl time.Duration) *RedisTokenRepository {
	return &RedisTokenRepository{
		client: client,
		ttl:    ttl,
	}
}

// Issue generates a fresh random identifier, writes the record with the
// configured expiry, and returns the canonical hyphenated form. The
// identifier is not checked for prior existence; version-4 collision
// probability is treated as negligible.
func (r *RedisTokenRepository) Issue(ctx context.Context, username string) (string, error) {
	id := uuid.New()

	if err := r.client.Set(ctx, tokenKey(id), username, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: set failed: %v", authDomain.ErrStoreUnavailable, err)
	}

	return id.String(), nil
}

// Validate parses the token string and looks up the stored username. A
// malformed token yields ErrInvalidToken; a missing key (expired, revoked or
// never issued) yields ErrTokenNotFound. The read never refreshes the expiry.
func (r *RedisTokenRepository) Validate(ctx context.Context, token string) (string, error) {
	id, err := parseToken(token)
	if err != nil {
		return "", err
	}

	username, err := r.client.Get(ctx, tokenKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", authDomain.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: get failed: %v", authDomain.ErrStoreUnavailable, err)
	}

	return username, nil
}

// Revoke parses the token string and deletes the record unconditionally.
// Deleting an absent key is success, making revocation idempotent.
func (r *RedisTokenRepository) Revoke(ctx context.Context, token string) error {
	id, err := parseToken(token)
	if err != nil {
		return err
	}

	if err := r.client.Del(ctx, tokenKey(id)).Err(); err != nil {
		return fmt.Errorf("%w: del failed: %v", authDomain.ErrStoreUnavailable, err)
	}

	return nil
}

// Ping performs a no-op round trip to prove store reachability.
func (r *RedisTokenRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping failed: %v", authDomain.ErrStoreUnavailable, err)
	}
	return nil
}

// parseToken parses a client-supplied token string into a 128-bit
// identifier. Malformed input is a client error, never a lookup miss.
func parseToken(token string) (uuid.UUID, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", authDomain.ErrInvalidToken, err)
	}
	return id, nil
}

// tokenKey renders the store key using the compact (no-separator) form of
// the identifier.
func tokenKey(id uuid.UUID) string {
	return tokenKeyPrefix + hex.EncodeToString(id[:])
}

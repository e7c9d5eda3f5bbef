// Package usecase implements business logic orchestration for the token
// lifecycle.
package usecase

import (
	"context"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
)

// TokenRepository defines the persistence operations for opaque tokens.
type TokenRepository interface {
	// Issue stores a fresh token record for username and returns the
	// canonical token string.
	Issue(ctx context.Context, username string) (string, error)
	// Validate returns the username stored under the token, or
	// domain.ErrInvalidToken / domain.ErrTokenNotFound.
	Validate(ctx context.Context, token string) (string, error)
	// Revoke deletes the token record; deleting an absent record succeeds.
	Revoke(ctx context.Context, token string) error
	// Ping proves store reachability with a no-op round trip.
	Ping(ctx context.Context) error
}

// TokenUseCase defines the token lifecycle operations exposed over HTTP.
type TokenUseCase interface {
	Issue(ctx context.Context, input *authDomain.IssueTokenInput) (*authDomain.IssueTokenOutput, error)
	Validate(ctx context.Context, token string) (*authDomain.ValidateTokenOutput, error)
	Revoke(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}

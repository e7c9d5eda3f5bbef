// Package service implements authentication services backed by external systems.
package service

import (
	"context"
)

// CredentialVerifier checks a username/password pair against an external
// authority. Verify returns nil on success, domain.ErrInvalidCredentials when
// the authority rejects the pair, and domain.ErrDirectoryUnavailable for any
// other failure.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) error
}

// ScopeResolver resolves the authorization scopes attached to a validated
// token. Implementations may consult external policy systems; the default
// resolver returns a fixed list.
type ScopeResolver interface {
	Resolve(ctx context.Context, username string) ([]string, error)
}

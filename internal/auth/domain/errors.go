package domain

import (
	"github.com/allisson/authgate/internal/errors"
)

// Authentication and token lifecycle errors.
var (
	// ErrInvalidCredentials indicates the directory rejected the bind DN and
	// password pair. Kept distinct from availability failures so the
	// transport layer can answer 401 instead of 503.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrDirectoryUnavailable indicates the directory server could not be
	// reached or answered with a result code other than invalid credentials.
	ErrDirectoryUnavailable = errors.Wrap(errors.ErrUnavailable, "directory unavailable")

	// ErrStoreUnavailable indicates the token store could not be reached.
	ErrStoreUnavailable = errors.Wrap(errors.ErrUnavailable, "token store unavailable")

	// ErrTokenNotFound indicates the token does not exist in the store. An
	// expired or revoked token is indistinguishable from one never issued.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrInvalidToken indicates the token string is not a well-formed
	// 128-bit identifier. Never conflated with ErrTokenNotFound.
	ErrInvalidToken = errors.Wrap(errors.ErrInvalidInput, "malformed token")
)

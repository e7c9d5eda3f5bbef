package usecase

import (
	"context"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	authService "github.com/allisson/authgate/internal/auth/service"
)

// tokenUseCase implements TokenUseCase on top of a credential verifier and
// a token repository.
type tokenUseCase struct {
	verifier      authService.CredentialVerifier
	tokenRepo     TokenRepository
	scopeResolver authService.ScopeResolver
}

// NewTokenUseCase creates a TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	verifier authService.CredentialVerifier,
	tokenRepo TokenRepository,
	scopeResolver authService.ScopeResolver,
) TokenUseCase {
	return &tokenUseCase{
		verifier:      verifier,
		tokenRepo:     tokenRepo,
		scopeResolver: scopeResolver,
	}
}

// Issue verifies the credential against the directory and, on success,
// persists a fresh token record.
//
// Error semantics:
//   - domain.ErrInvalidCredentials when the directory rejects the pair
//   - domain.ErrDirectoryUnavailable when the directory cannot answer
//   - domain.ErrStoreUnavailable when the store write fails; no token is
//     returned, so there is no partial success
func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	if err := t.verifier.Verify(ctx, input.Username, input.Password); err != nil {
		return nil, err
	}

	token, err := t.tokenRepo.Issue(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	return &authDomain.IssueTokenOutput{Token: token}, nil
}

// Validate looks up the token and attaches the resolved authorization
// scopes. The lookup is non-destructive and never extends the expiry. An
// expired or revoked token is indistinguishable from one never issued.
func (t *tokenUseCase) Validate(
	ctx context.Context,
	token string,
) (*authDomain.ValidateTokenOutput, error) {
	username, err := t.tokenRepo.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	scopes, err := t.scopeResolver.Resolve(ctx, username)
	if err != nil {
		return nil, err
	}

	return &authDomain.ValidateTokenOutput{
		Username: username,
		Scopes:   scopes,
	}, nil
}

// Revoke deletes the token record. Revoking an already absent token is
// success, so the operation is idempotent.
func (t *tokenUseCase) Revoke(ctx context.Context, token string) error {
	return t.tokenRepo.Revoke(ctx, token)
}

// Ping proves token store reachability.
func (t *tokenUseCase) Ping(ctx context.Context) error {
	return t.tokenRepo.Ping(ctx)
}

// Package http provides HTTP handlers and middleware for the token
// lifecycle endpoints.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	"github.com/allisson/authgate/internal/auth/http/dto"
	authUseCase "github.com/allisson/authgate/internal/auth/usecase"
	"github.com/allisson/authgate/internal/config"
	"github.com/allisson/authgate/internal/httputil"
	customValidation "github.com/allisson/authgate/internal/validation"
)

// TokenHandler handles HTTP requests for token operations. Backend errors
// are attached to the Gin context and translated by the outbound error
// mapping stage; request-shape errors are answered directly with 400.
type TokenHandler struct {
	tokenUseCase authUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// IssueTokenHandler authenticates a credential against the directory and
// issues a new token.
// POST /token - returns 200 with the token and its lifetime.
func (h *TokenHandler) IssueTokenHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleBadRequest(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := &authDomain.IssueTokenInput{
		Username: req.Username,
		Password: req.Password,
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response := dto.LoginResponse{Token: output.Token}
	if cfg, ok := config.FromContext(c.Request.Context()); ok {
		response.ExpiresIn = int64(cfg.Token.TTL.Seconds())
	}

	c.JSON(http.StatusOK, response)
}

// ValidateTokenHandler resolves a token to its principal and scopes.
// GET /token/:token - returns 200, 400 for a malformed token, 404 for an
// expired, revoked or never-issued one.
func (h *TokenHandler) ValidateTokenHandler(c *gin.Context) {
	output, err := h.tokenUseCase.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ValidateTokenResponse{
		Username: output.Username,
		Scopes:   output.Scopes,
	})
}

// RevokeTokenHandler deletes a token. Revoking an absent token succeeds.
// DELETE /token/:token - returns 200, 400 for a malformed token.
func (h *TokenHandler) RevokeTokenHandler(c *gin.Context) {
	if err := h.tokenUseCase.Revoke(c.Request.Context(), c.Param("token")); err != nil {
		_ = c.Error(err)
		return
	}

	c.String(http.StatusOK, "OK")
}

package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	"github.com/allisson/authgate/internal/auth/http/dto"
	"github.com/allisson/authgate/internal/auth/http/mocks"
	"github.com/allisson/authgate/internal/config"
	"github.com/allisson/authgate/internal/httputil"
)

// setupTestTokenRouter wires the handler into a router that mirrors the
// request pipeline: configuration injected inbound, attached errors mapped
// to transport statuses outbound.
func setupTestTokenRouter(t *testing.T) (*gin.Engine, *mocks.MockTokenUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockTokenUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewTokenHandler(mockUseCase, logger)

	cfg := config.Default()
	cfg.Token.TTL = 7 * 24 * time.Hour

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(config.NewContext(c.Request.Context(), cfg))
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			httputil.HandleError(c, c.Errors.Last().Err, logger)
		}
	})

	router.POST("/token", handler.IssueTokenHandler)
	router.GET("/token/:token", handler.ValidateTokenHandler)
	router.DELETE("/token/:token", handler.RevokeTokenHandler)

	return router, mockUseCase
}

func performRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTokenHandler_IssueTokenHandler(t *testing.T) {
	t.Run("Success_ValidCredential", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)
		token := uuid.NewString()

		mockUseCase.On("Issue", mock.Anything, &authDomain.IssueTokenInput{
			Username: "alice",
			Password: "secret",
		}).Return(&authDomain.IssueTokenOutput{Token: token}, nil).Once()

		body, _ := json.Marshal(dto.LoginRequest{Username: "alice", Password: "secret"})
		w := performRequest(router, http.MethodPost, "/token", body)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, token, response.Token)
		assert.Equal(t, int64(7*24*3600), response.ExpiresIn)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)

		w := performRequest(router, http.MethodPost, "/token", []byte(`{"username": "alice"`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("Error_MissingPassword", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)

		body, _ := json.Marshal(dto.LoginRequest{Username: "alice"})
		w := performRequest(router, http.MethodPost, "/token", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("Error_BlankUsername", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)

		body, _ := json.Marshal(dto.LoginRequest{Username: "   ", Password: "secret"})
		w := performRequest(router, http.MethodPost, "/token", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("Error_InvalidCredentials", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)

		mockUseCase.On("Issue", mock.Anything, mock.Anything).
			Return(nil, authDomain.ErrInvalidCredentials).
			Once()

		body, _ := json.Marshal(dto.LoginRequest{Username: "alice", Password: "wrong"})
		w := performRequest(router, http.MethodPost, "/token", body)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "invalid_credentials", response.Error)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_DirectoryUnavailable", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)

		mockUseCase.On("Issue", mock.Anything, mock.Anything).
			Return(nil, authDomain.ErrDirectoryUnavailable).
			Once()

		body, _ := json.Marshal(dto.LoginRequest{Username: "alice", Password: "secret"})
		w := performRequest(router, http.MethodPost, "/token", body)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "backend_unavailable", response.Error)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_StoreUnavailable", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)

		mockUseCase.On("Issue", mock.Anything, mock.Anything).
			Return(nil, authDomain.ErrStoreUnavailable).
			Once()

		body, _ := json.Marshal(dto.LoginRequest{Username: "alice", Password: "secret"})
		w := performRequest(router, http.MethodPost, "/token", body)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}

func TestTokenHandler_ValidateTokenHandler(t *testing.T) {
	t.Run("Success_KnownToken", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)
		token := uuid.NewString()

		mockUseCase.On("Validate", mock.Anything, token).
			Return(&authDomain.ValidateTokenOutput{Username: "alice", Scopes: []string{}}, nil).
			Once()

		w := performRequest(router, http.MethodGet, "/token/"+token, nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ValidateTokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "alice", response.Username)
		assert.NotNil(t, response.Scopes)
		assert.Empty(t, response.Scopes)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MalformedToken", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)

		mockUseCase.On("Validate", mock.Anything, "not-a-token").
			Return(nil, authDomain.ErrInvalidToken).
			Once()

		w := performRequest(router, http.MethodGet, "/token/not-a-token", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "invalid_request", response.Error)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_UnknownToken", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)
		token := uuid.NewString()

		mockUseCase.On("Validate", mock.Anything, token).
			Return(nil, authDomain.ErrTokenNotFound).
			Once()

		w := performRequest(router, http.MethodGet, "/token/"+token, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "not_found", response.Error)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_StoreUnavailable", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)
		token := uuid.NewString()

		mockUseCase.On("Validate", mock.Anything, token).
			Return(nil, authDomain.ErrStoreUnavailable).
			Once()

		w := performRequest(router, http.MethodGet, "/token/"+token, nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}

func TestTokenHandler_RevokeTokenHandler(t *testing.T) {
	t.Run("Success_RevokesToken", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)
		token := uuid.NewString()

		mockUseCase.On("Revoke", mock.Anything, token).Return(nil).Once()

		w := performRequest(router, http.MethodDelete, "/token/"+token, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MalformedToken", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)

		mockUseCase.On("Revoke", mock.Anything, "not-a-token").
			Return(authDomain.ErrInvalidToken).
			Once()

		w := performRequest(router, http.MethodDelete, "/token/not-a-token", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_StoreUnavailable", func(t *testing.T) {
		router, mockUseCase := setupTestTokenRouter(t)
		token := uuid.NewString()

		mockUseCase.On("Revoke", mock.Anything, token).
			Return(authDomain.ErrStoreUnavailable).
			Once()

		w := performRequest(router, http.MethodDelete, "/token/"+token, nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/SatuKas/api/internal/domain/errors"
	"github.com/SatuKas/api/internal/domain/models"
)

type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) VerifyToken(tokenString, secret string) (*models.TokenClaims, error) {
	args := m.Called(tokenString, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenClaims), args.Error(1)
}
func (m *MockTokenVerifier) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

type MockDeviceChecker struct {
	mock.Mock
}

func (m *MockDeviceChecker) IsDeviceRevoked(ctx context.Context, deviceID uuid.UUID, userID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, deviceID, userID)
	return args.Bool(0), args.Error(1)
}

func claimsFor(userID, deviceID uuid.UUID, email string) *models.TokenClaims {
	return &models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
		Email:            email,
		DeviceID:         deviceID.String(),
	}
}

func performRequest(tokens *MockTokenVerifier, devices *MockDeviceChecker, authHeader string) (*httptest.ResponseRecorder, *Identity) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	var captured *Identity
	router.GET("/protected", AuthMiddleware(tokens, devices, zap.NewNop()), func(c *gin.Context) {
		if identity, ok := CurrentIdentity(c); ok {
			captured = &identity
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, captured
}

func TestAuthMiddleware_Success(t *testing.T) {
	tokens := new(MockTokenVerifier)
	devices := new(MockDeviceChecker)
	userID := uuid.New()
	deviceID := uuid.New()

	tokens.On("VerifyToken", "valid-token", "").Return(claimsFor(userID, deviceID, "user@example.com"), nil).Once()
	tokens.On("IsBlacklisted", mock.Anything, "valid-token").Return(false, nil).Once()
	devices.On("IsDeviceRevoked", mock.Anything, deviceID, &userID).Return(false, nil).Once()

	w, identity := performRequest(tokens, devices, "Bearer valid-token")

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, identity)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, deviceID, identity.DeviceID)
	assert.Equal(t, "user@example.com", identity.Email)
	assert.Equal(t, "valid-token", identity.Token)
	tokens.AssertExpectations(t)
	devices.AssertExpectations(t)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	w, identity := performRequest(new(MockTokenVerifier), new(MockDeviceChecker), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, identity)
	assert.Contains(t, w.Body.String(), string(domainErrors.CodeUnauthorized))
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	w, _ := performRequest(new(MockTokenVerifier), new(MockDeviceChecker), "Token abc")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), string(domainErrors.CodeUnauthorized))
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	tokens := new(MockTokenVerifier)
	tokens.On("VerifyToken", "bad-token", "").Return(nil, domainErrors.ErrInvalidToken).Once()

	w, _ := performRequest(tokens, new(MockDeviceChecker), "Bearer bad-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), string(domainErrors.CodeInvalidToken))
}

// Expired carries its own code so clients know to refresh, not re-login.
func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	tokens := new(MockTokenVerifier)
	tokens.On("VerifyToken", "stale-token", "").Return(nil, domainErrors.ErrExpiredToken).Once()

	w, _ := performRequest(tokens, new(MockDeviceChecker), "Bearer stale-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), string(domainErrors.CodeExpiredToken))
}

func TestAuthMiddleware_BlacklistedToken(t *testing.T) {
	tokens := new(MockTokenVerifier)
	devices := new(MockDeviceChecker)
	userID := uuid.New()
	deviceID := uuid.New()

	tokens.On("VerifyToken", "revoked-token", "").Return(claimsFor(userID, deviceID, ""), nil).Once()
	tokens.On("IsBlacklisted", mock.Anything, "revoked-token").Return(true, nil).Once()

	w, _ := performRequest(tokens, devices, "Bearer revoked-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), string(domainErrors.CodeRevokedToken))
	devices.AssertNotCalled(t, "IsDeviceRevoked", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthMiddleware_RevokedDevice(t *testing.T) {
	tokens := new(MockTokenVerifier)
	devices := new(MockDeviceChecker)
	userID := uuid.New()
	deviceID := uuid.New()

	tokens.On("VerifyToken", "valid-token", "").Return(claimsFor(userID, deviceID, ""), nil).Once()
	tokens.On("IsBlacklisted", mock.Anything, "valid-token").Return(false, nil).Once()
	devices.On("IsDeviceRevoked", mock.Anything, deviceID, &userID).Return(true, nil).Once()

	w, identity := performRequest(tokens, devices, "Bearer valid-token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), string(domainErrors.CodeRevokedToken))
	assert.Nil(t, identity)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SatuKas/api/internal/config"
	domainErrors "github.com/SatuKas/api/internal/domain/errors"
	"github.com/SatuKas/api/internal/domain/models"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:          "test-access-secret",
		EmailSecret:           "test-email-secret",
		AccessTokenTTL:        15 * time.Minute,
		RefreshTokenTTL:       7 * 24 * time.Hour,
		EmailTokenTTL:         24 * time.Hour,
		PasswordResetTokenTTL: 30 * time.Minute,
		Issuer:                "satukas-api",
	}
}

func newTestTokenService(cfg config.JWTConfig) (*TokenService, *MockTokenBlacklist) {
	blacklist := new(MockTokenBlacklist)
	return NewTokenService(cfg, blacklist, zap.NewNop()), blacklist
}

func TestTokenService_GenerateTokenPair(t *testing.T) {
	svc, _ := newTestTokenService(testJWTConfig())
	payload := models.TokenPayload{
		Sub:      uuid.New().String(),
		Email:    "user@example.com",
		DeviceID: uuid.New().String(),
	}

	pair, err := svc.GenerateTokenPair(payload)
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, (15 * time.Minute).Milliseconds(), pair.AccessExpiresInMS)
	assert.Equal(t, (7 * 24 * time.Hour).Milliseconds(), pair.RefreshExpiresInMS)

	// Both halves verify against the access secret and carry the payload.
	for _, tok := range []string{pair.AccessToken, pair.RefreshToken} {
		claims, err := svc.VerifyToken(tok, "")
		require.NoError(t, err)
		assert.Equal(t, payload.Sub, claims.Subject)
		assert.Equal(t, payload.Email, claims.Email)
		assert.Equal(t, payload.DeviceID, claims.DeviceID)
		assert.Empty(t, claims.Type)
		assert.Equal(t, "satukas-api", claims.Issuer)
	}

	// The stored hash matches the raw refresh token and nothing else.
	match, err := svc.CompareTokenHash(pair.RefreshToken, pair.HashedRefreshToken)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = svc.CompareTokenHash(pair.AccessToken, pair.HashedRefreshToken)
	require.NoError(t, err)
	assert.False(t, match)
}

// Two mints of the same payload must be distinct strings even within the
// same second, otherwise rotating the stored refresh hash would leave the
// superseded token matching it.
func TestTokenService_GenerateTokenPair_UniquePerMint(t *testing.T) {
	svc, _ := newTestTokenService(testJWTConfig())
	payload := models.TokenPayload{
		Sub:      uuid.New().String(),
		Email:    "user@example.com",
		DeviceID: uuid.New().String(),
	}

	first, err := svc.GenerateTokenPair(payload)
	require.NoError(t, err)
	second, err := svc.GenerateTokenPair(payload)
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The superseded refresh token no longer matches the rotated hash.
	match, err := svc.CompareTokenHash(first.RefreshToken, second.HashedRefreshToken)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestTokenService_EmailTokens_CarryTypeAndSecret(t *testing.T) {
	cfg := testJWTConfig()
	svc, _ := newTestTokenService(cfg)
	payload := models.TokenPayload{Sub: uuid.New().String(), Email: "user@example.com"}

	verifToken, err := svc.GenerateEmailToken(payload)
	require.NoError(t, err)
	resetToken, err := svc.GenerateForgotPasswordToken(payload)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(verifToken, cfg.EmailSecret)
	require.NoError(t, err)
	assert.Equal(t, models.TokenTypeEmailVerification, claims.Type)

	claims, err = svc.VerifyToken(resetToken, cfg.EmailSecret)
	require.NoError(t, err)
	assert.Equal(t, models.TokenTypePasswordReset, claims.Type)

	// Email-family tokens must not verify against the access secret.
	_, err = svc.VerifyToken(verifToken, "")
	assert.ErrorIs(t, err, domainErrors.ErrInvalidToken)
}

func TestTokenService_VerifyToken_Expired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenTTL = -time.Minute
	svc, _ := newTestTokenService(cfg)

	token, err := svc.GenerateAccessToken(models.TokenPayload{Sub: uuid.New().String()})
	require.NoError(t, err)

	_, err = svc.VerifyToken(token, "")
	assert.ErrorIs(t, err, domainErrors.ErrExpiredToken)
	assert.NotErrorIs(t, err, domainErrors.ErrInvalidToken)
}

func TestTokenService_VerifyToken_WrongSecret(t *testing.T) {
	svc, _ := newTestTokenService(testJWTConfig())

	token, err := svc.GenerateAccessToken(models.TokenPayload{Sub: uuid.New().String()})
	require.NoError(t, err)

	_, err = svc.VerifyToken(token, "a-different-secret")
	assert.ErrorIs(t, err, domainErrors.ErrInvalidToken)
}

func TestTokenService_VerifyToken_Garbage(t *testing.T) {
	svc, _ := newTestTokenService(testJWTConfig())

	_, err := svc.VerifyToken("not-a-jwt", "")
	assert.ErrorIs(t, err, domainErrors.ErrInvalidToken)
}

// DecodeToken reads claims without a signature check, so it works even on
// tokens this service could not verify.
func TestTokenService_DecodeToken_IgnoresSignatureAndExpiry(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenTTL = -time.Minute
	expiredSvc, _ := newTestTokenService(cfg)

	sub := uuid.New().String()
	deviceID := uuid.New().String()
	token, err := expiredSvc.GenerateAccessToken(models.TokenPayload{Sub: sub, DeviceID: deviceID})
	require.NoError(t, err)

	otherSvc, _ := newTestTokenService(config.JWTConfig{
		AccessSecret:   "unrelated-secret",
		EmailSecret:    "unrelated-email-secret",
		AccessTokenTTL: time.Minute,
	})
	claims, err := otherSvc.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, sub, claims.Subject)
	assert.Equal(t, deviceID, claims.DeviceID)
}

func TestTokenService_BlacklistDelegation(t *testing.T) {
	svc, blacklist := newTestTokenService(testJWTConfig())
	ctx := context.Background()

	blacklist.On("Revoke", ctx, "tok").Return(nil).Once()
	blacklist.On("IsBlacklisted", ctx, "tok").Return(true, nil).Once()
	blacklist.On("MarkUsed", ctx, "reset-tok").Return(nil).Once()
	blacklist.On("IsUsed", ctx, "reset-tok").Return(true, nil).Once()

	require.NoError(t, svc.RevokeToken(ctx, "tok"))
	revoked, err := svc.IsBlacklisted(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, svc.MarkResetTokenUsed(ctx, "reset-tok"))
	used, err := svc.IsResetTokenUsed(ctx, "reset-tok")
	require.NoError(t, err)
	assert.True(t, used)

	blacklist.AssertExpectations(t)
}

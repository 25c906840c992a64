package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SatuKas/api/internal/config"
	domainErrors "github.com/SatuKas/api/internal/domain/errors"
	"github.com/SatuKas/api/internal/domain/models"
	"github.com/SatuKas/api/internal/domain/repository"
	"github.com/SatuKas/api/internal/infrastructure/security"
)

// TokenService mints, verifies, decodes and hashes the four token kinds and
// owns the access-token blacklist. Access and refresh tokens share the
// access secret and differ only in TTL; email-verification and
// password-reset tokens are signed with a separate secret so neither secret
// can forge the other family.
type TokenService struct {
	cfg       config.JWTConfig
	blacklist repository.TokenBlacklist
	logger    *zap.Logger
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg config.JWTConfig, blacklist repository.TokenBlacklist, logger *zap.Logger) *TokenService {
	return &TokenService{
		cfg:       cfg,
		blacklist: blacklist,
		logger:    logger.Named("token_service"),
	}
}

func (s *TokenService) sign(payload models.TokenPayload, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.Sub,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			// iat/exp only have second granularity; the jti keeps two
			// tokens minted for the same payload distinct, so rotating a
			// refresh hash actually invalidates the superseded token.
			ID: uuid.NewString(),
		},
		Email:    payload.Email,
		DeviceID: payload.DeviceID,
		Type:     payload.Type,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// GenerateAccessToken signs a short-lived access token.
func (s *TokenService) GenerateAccessToken(payload models.TokenPayload) (string, error) {
	payload.Type = ""
	return s.sign(payload, s.cfg.AccessSecret, s.cfg.AccessTokenTTL)
}

// GenerateRefreshToken signs a refresh token. It reuses the access secret;
// only the TTL differs.
func (s *TokenService) GenerateRefreshToken(payload models.TokenPayload) (string, error) {
	payload.Type = ""
	return s.sign(payload, s.cfg.AccessSecret, s.cfg.RefreshTokenTTL)
}

// GenerateEmailToken signs an email-verification token with the email secret.
func (s *TokenService) GenerateEmailToken(payload models.TokenPayload) (string, error) {
	payload.Type = models.TokenTypeEmailVerification
	return s.sign(payload, s.cfg.EmailSecret, s.cfg.EmailTokenTTL)
}

// GenerateForgotPasswordToken signs a password-reset token with the email secret.
func (s *TokenService) GenerateForgotPasswordToken(payload models.TokenPayload) (string, error) {
	payload.Type = models.TokenTypePasswordReset
	return s.sign(payload, s.cfg.EmailSecret, s.cfg.PasswordResetTokenTTL)
}

// GenerateTokenPair mints an access and refresh token concurrently, hashes
// the refresh token for at-rest storage and reports both expiries in
// milliseconds. The hash, never the raw refresh token, is what gets
// persisted on the device row.
func (s *TokenService) GenerateTokenPair(payload models.TokenPayload) (models.TokenPair, error) {
	var (
		wg                    sync.WaitGroup
		access, refresh       string
		accessErr, refreshErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		access, accessErr = s.GenerateAccessToken(payload)
	}()
	go func() {
		defer wg.Done()
		refresh, refreshErr = s.GenerateRefreshToken(payload)
	}()
	wg.Wait()

	if accessErr != nil {
		return models.TokenPair{}, fmt.Errorf("failed to generate access token: %w", accessErr)
	}
	if refreshErr != nil {
		return models.TokenPair{}, fmt.Errorf("failed to generate refresh token: %w", refreshErr)
	}

	hashed, err := security.HashToken(refresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{
		AccessToken:        access,
		RefreshToken:       refresh,
		AccessExpiresInMS:  s.cfg.AccessTokenTTL.Milliseconds(),
		RefreshExpiresInMS: s.cfg.RefreshTokenTTL.Milliseconds(),
		HashedRefreshToken: hashed,
	}, nil
}

// VerifyToken validates signature and expiry against the given secret; an
// empty secret defaults to the access secret. Expired tokens and otherwise
// invalid tokens surface as distinct errors because client retry logic
// differs between the two.
func (s *TokenService) VerifyToken(tokenString, secret string) (*models.TokenClaims, error) {
	if secret == "" {
		secret = s.cfg.AccessSecret
	}

	claims := &models.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainErrors.ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, domainErrors.ErrInvalidToken
	}
	return claims, nil
}

// DecodeToken parses the payload without verifying the signature. It only
// locates the subject and device id ahead of the full verify-and-lookup
// sequence; it is never an authorization decision on its own.
func (s *TokenService) DecodeToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidToken, err)
	}
	return claims, nil
}

// HashToken is a one-way hash used for refresh-token-at-rest storage.
func (s *TokenService) HashToken(token string) (string, error) {
	return security.HashToken(token)
}

// CompareTokenHash checks a presented token against a stored hash.
func (s *TokenService) CompareTokenHash(token, storedHash string) (bool, error) {
	return security.CompareTokenHash(token, storedHash)
}

// RevokeToken blacklists a raw access token for the remainder of the access
// TTL window, implementing immediate logout.
func (s *TokenService) RevokeToken(ctx context.Context, token string) error {
	return s.blacklist.Revoke(ctx, token)
}

// IsBlacklisted reports whether the exact access token string was revoked.
func (s *TokenService) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return s.blacklist.IsBlacklisted(ctx, token)
}

// MarkResetTokenUsed consumes a password-reset token so it cannot be
// replayed within its validity window.
func (s *TokenService) MarkResetTokenUsed(ctx context.Context, token string) error {
	return s.blacklist.MarkUsed(ctx, token)
}

// IsResetTokenUsed reports whether a password-reset token was already consumed.
func (s *TokenService) IsResetTokenUsed(ctx context.Context, token string) (bool, error) {
	return s.blacklist.IsUsed(ctx, token)
}

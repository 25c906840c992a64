package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/SatuKas/api/internal/domain/errors"
	"github.com/SatuKas/api/internal/domain/models"
	"github.com/SatuKas/api/internal/utils/metrics"
)

const identityKey = "identity"

// Identity is the authenticated caller attached to the gin context by the
// auth middleware.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	DeviceID uuid.UUID
	// Token is the raw bearer string, kept so logout can blacklist it.
	Token string
}

// TokenVerifier is the slice of the token service the middleware needs.
type TokenVerifier interface {
	VerifyToken(tokenString, secret string) (*models.TokenClaims, error)
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// DeviceChecker reports device revocation state, failing closed on missing
// devices.
type DeviceChecker interface {
	IsDeviceRevoked(ctx context.Context, deviceID uuid.UUID, userID *uuid.UUID) (bool, error)
}

// AuthMiddleware guards authenticated routes. The access token must carry a
// valid signature, must not be blacklisted, and its device must still be
// active. Expired and invalid tokens are reported with distinct codes since
// clients refresh on one and re-login on the other.
func AuthMiddleware(tokens TokenVerifier, devices DeviceChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Authorization token required", domainErrors.CodeUnauthorized)
			return
		}

		claims, err := tokens.VerifyToken(raw, "")
		if err != nil {
			if errors.Is(err, domainErrors.ErrExpiredToken) {
				abortUnauthorized(c, "Token has expired", domainErrors.CodeExpiredToken)
				return
			}
			abortUnauthorized(c, "Invalid token", domainErrors.CodeInvalidToken)
			return
		}

		blacklisted, err := tokens.IsBlacklisted(c.Request.Context(), raw)
		if err != nil {
			logger.Error("Blacklist lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
				"code":  string(domainErrors.CodeInternal),
			})
			return
		}
		if blacklisted {
			metrics.BlacklistedTokenRejections.Inc()
			abortUnauthorized(c, "Token has been revoked", domainErrors.CodeRevokedToken)
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			abortUnauthorized(c, "Invalid token", domainErrors.CodeInvalidToken)
			return
		}
		deviceID, err := uuid.Parse(claims.DeviceID)
		if err != nil {
			abortUnauthorized(c, "Invalid token", domainErrors.CodeInvalidToken)
			return
		}

		revoked, err := devices.IsDeviceRevoked(c.Request.Context(), deviceID, &userID)
		if err != nil {
			logger.Error("Device revocation check failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
				"code":  string(domainErrors.CodeInternal),
			})
			return
		}
		if revoked {
			abortUnauthorized(c, "Device has been revoked", domainErrors.CodeRevokedToken)
			return
		}

		c.Set(identityKey, Identity{
			UserID:   userID,
			Email:    claims.Email,
			DeviceID: deviceID,
			Token:    raw,
		})
		c.Next()
	}
}

// CurrentIdentity returns the Identity set by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, message string, code domainErrors.Code) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
		"code":  string(code),
	})
}

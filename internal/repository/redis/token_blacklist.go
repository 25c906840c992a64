package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/SatuKas/api/internal/domain/repository"
)

const (
	blacklistKeyPrefix = "bl:"
	usedTokenKeyPrefix = "used:"
	sentinelValue      = "1"
)

// TokenBlacklist stores revoked access tokens and consumed password-reset
// tokens, each keyed by the raw token string with a TTL matching the token
// kind's remaining lifetime. Presence of a key means the token is rejected
// regardless of signature validity.
type TokenBlacklist struct {
	client       *redis.Client
	logger       *zap.Logger
	accessTTL    time.Duration
	usedTokenTTL time.Duration
}

// NewTokenBlacklist creates a new TokenBlacklist.
func NewTokenBlacklist(client *redis.Client, logger *zap.Logger, accessTTL, usedTokenTTL time.Duration) repository.TokenBlacklist {
	return &TokenBlacklist{
		client:       client,
		logger:       logger.Named("token_blacklist"),
		accessTTL:    accessTTL,
		usedTokenTTL: usedTokenTTL,
	}
}

func (b *TokenBlacklist) Revoke(ctx context.Context, token string) error {
	key := blacklistKeyPrefix + token
	if err := b.client.Set(ctx, key, sentinelValue, b.accessTTL).Err(); err != nil {
		b.logger.Error("Failed to blacklist token", zap.Error(err))
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return b.exists(ctx, blacklistKeyPrefix+token)
}

func (b *TokenBlacklist) MarkUsed(ctx context.Context, token string) error {
	key := usedTokenKeyPrefix + token
	if err := b.client.Set(ctx, key, sentinelValue, b.usedTokenTTL).Err(); err != nil {
		b.logger.Error("Failed to mark token as used", zap.Error(err))
		return fmt.Errorf("failed to mark token as used: %w", err)
	}
	return nil
}

func (b *TokenBlacklist) IsUsed(ctx context.Context, token string) (bool, error) {
	return b.exists(ctx, usedTokenKeyPrefix+token)
}

func (b *TokenBlacklist) exists(ctx context.Context, key string) (bool, error) {
	val, err := b.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		b.logger.Error("Failed to check token key", zap.Error(err))
		return false, fmt.Errorf("failed to check token key: %w", err)
	}
	return val == sentinelValue, nil
}

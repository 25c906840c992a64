package rate

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/SatuKas/api/internal/config"
)

// Limiter is a fixed-window request limiter backed by Redis. Counters are
// shared across instances, so the limit holds even when the service scales
// horizontally.
type Limiter struct {
	client *redis.Client
	logger *zap.Logger
	cfg    config.RateLimitConfig
}

func NewLimiter(client *redis.Client, logger *zap.Logger, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		client: client,
		logger: logger,
		cfg:    cfg,
	}
}

// Allow reports whether another request is permitted under the given key.
// When Redis is unreachable the request is allowed; rate limiting is a
// throttle, not an availability dependency.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if !l.cfg.Enabled {
		return true, nil
	}

	redisKey := fmt.Sprintf("rate:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Error("Failed to increment rate limit counter",
			zap.String("key", key),
			zap.Error(err),
		)
		return true, err
	}

	// The first increment opens a new window.
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.cfg.Period).Err(); err != nil {
			l.logger.Error("Failed to set rate limit window",
				zap.String("key", key),
				zap.Error(err),
			)
			return true, err
		}
	}

	if count > int64(l.cfg.Limit) {
		l.logger.Warn("Rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", l.cfg.Limit),
		)
		return false, nil
	}

	return true, nil
}

package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// IsLogged reports whether the token belongs to a live session.
// Unknown tokens are not an error.
func (lc *LoginChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	createdAtUnixStr, err := lc.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
	if err != nil {
		return false, err
	}

	createdAt := time.Unix(createdAtUnix, 0)
	if time.Since(createdAt) > lc.ttl {
		return false, nil
	}

	return true, nil
}

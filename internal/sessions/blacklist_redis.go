// Package sessions tracks revoked access tokens so a logged-out token cannot
// be used to create or edit posts before it expires.
package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blog:blacklist:access:"

// package-level Redis client used for token blacklist (optional)
var blacklistClient *redis.Client

// SetBlacklistClient configures the Redis client used for blacklist operations.
// Safe to call with nil to disable blacklist features.
func SetBlacklistClient(c *redis.Client) {
	blacklistClient = c
}

// BlacklistEnabled reports whether a Redis client is configured.
func BlacklistEnabled() bool {
	return blacklistClient != nil
}

// BlacklistAccessToken stores the given token in Redis blacklist with TTL.
// If no Redis client is configured, this is a no-op and returns nil.
func BlacklistAccessToken(ctx context.Context, token string, ttl time.Duration) error {
	if blacklistClient == nil {
		return nil
	}
	return blacklistClient.Set(ctx, blacklistPrefix+token, "1", ttl).Err()
}

// IsAccessTokenBlacklisted returns true when the token exists in the Redis blacklist.
// If no Redis client is configured, returns (false, nil).
func IsAccessTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if blacklistClient == nil {
		return false, nil
	}
	exists, err := blacklistClient.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

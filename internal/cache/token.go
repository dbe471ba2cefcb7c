package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// revokedTokenPrefix is the Redis key prefix for revoked refresh tokens.
const revokedTokenPrefix = "auth:revoked:"

// RevokeRefreshToken marks a refresh token as used so it cannot be replayed.
// The entry lives only as long as the token itself would; after that the
// signature check rejects it anyway.
func (c *Cache) RevokeRefreshToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	key := revokedTokenPrefix + tokenDigest(token)
	if err := c.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// IsRefreshTokenRevoked reports whether a refresh token has been revoked.
// Fails closed: a Redis error counts as revoked, since accepting a possibly
// replayed token is worse than forcing a re-login.
func (c *Cache) IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error) {
	key := revokedTokenPrefix + tokenDigest(token)

	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return true, fmt.Errorf("failed to check refresh token: %w", err)
	}

	return n > 0, nil
}

// tokenDigest hashes a token so raw credentials never appear in Redis keys.
func tokenDigest(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rolodex/rolodex/internal/model"
)

const (
	// userCachePrefix is the Redis key prefix for resolved user identities.
	userCachePrefix = "auth:user:"
	// userCacheTTL is the time-to-live for cached identities.
	userCacheTTL = 5 * time.Minute
)

// cachedUser is the subset of a user stored in Redis for the auth path.
// The password hash deliberately never leaves Postgres.
type cachedUser struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// GetUser retrieves a cached user identity by email.
// Returns nil on a cache miss.
func (c *Cache) GetUser(ctx context.Context, email string) (*model.User, error) {
	data, err := c.client.Get(ctx, userCachePrefix+email).Bytes()
	if err != nil {
		// Treat any failure as a miss, the DB is authoritative
		return nil, nil
	}

	var cu cachedUser
	if err := json.Unmarshal(data, &cu); err != nil {
		return nil, nil
	}

	return &model.User{
		ID:        cu.ID,
		Email:     cu.Email,
		AvatarURL: cu.AvatarURL,
	}, nil
}

// SetUser caches a user identity by email.
func (c *Cache) SetUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(cachedUser{
		ID:        user.ID,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := c.client.Set(ctx, userCachePrefix+user.Email, data, userCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}

	return nil
}

// DeleteUser drops a cached identity, e.g. after an avatar change.
func (c *Cache) DeleteUser(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, userCachePrefix+email).Err(); err != nil {
		return fmt.Errorf("failed to delete cached user: %w", err)
	}
	return nil
}

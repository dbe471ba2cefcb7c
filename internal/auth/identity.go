package auth

import (
	"context"
	"errors"

	"github.com/rolodex/rolodex/internal/model"
)

// ErrUnauthenticated indicates a request that could not be tied to a live
// user: missing, invalid, or expired token, or a subject that no longer
// exists in the user store.
var ErrUnauthenticated = errors.New("unauthenticated")

// UserStore is the subset of the user repository the resolver needs.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// IdentityResolver maps a presented bearer token to a user identity.
// Read-only; safe for concurrent use.
type IdentityResolver struct {
	tokens *TokenService
	users  UserStore
}

// NewIdentityResolver creates an IdentityResolver.
func NewIdentityResolver(tokens *TokenService, users UserStore) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, users: users}
}

// Resolve verifies the token and looks up its subject by exact email match.
// Fails with ErrUnauthenticated if the token is invalid or expired, or the
// subject no longer exists.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*model.User, error) {
	claims, err := r.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if claims.Subject == "" {
		return nil, ErrUnauthenticated
	}

	user, err := r.users.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	return user, nil
}

// IdentityCache is a read-through cache for resolved identities.
type IdentityCache interface {
	GetUser(ctx context.Context, email string) (*model.User, error)
	SetUser(ctx context.Context, user *model.User) error
}

// CachingUserStore layers an identity cache over a user store. Lookups hit
// the cache first; misses fall through to the store and backfill. Cache
// failures are treated as misses, the store stays authoritative.
type CachingUserStore struct {
	store UserStore
	cache IdentityCache
}

// NewCachingUserStore creates a CachingUserStore.
func NewCachingUserStore(store UserStore, cache IdentityCache) *CachingUserStore {
	return &CachingUserStore{store: store, cache: cache}
}

// GetUserByEmail implements UserStore with a cache-first lookup.
func (c *CachingUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if cached, err := c.cache.GetUser(ctx, email); err == nil && cached != nil {
		return cached, nil
	}

	user, err := c.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	_ = c.cache.SetUser(ctx, user)

	return user, nil
}

// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rolodex/rolodex/internal/auth"
	"github.com/rolodex/rolodex/internal/metrics"
	"github.com/rolodex/rolodex/internal/model"
	"github.com/rolodex/rolodex/internal/repository"
)

// Auth service errors.
var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUnsupportedAvatar   = errors.New("unsupported avatar content type")
)

// allowedAvatarTypes lists the accepted avatar content types.
var allowedAvatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// MaxAvatarSize is the largest accepted avatar upload.
const MaxAvatarSize = 5 << 20 // 5 MiB

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserAvatar(ctx context.Context, id, avatarURL string) error
}

// TokenRevoker tracks used refresh tokens when rotation is enabled.
type TokenRevoker interface {
	RevokeRefreshToken(ctx context.Context, token string, ttl time.Duration) error
	IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error)
}

// IdentityCache invalidates cached identities after profile changes.
type IdentityCache interface {
	DeleteUser(ctx context.Context, email string) error
}

// AvatarUploader stores avatar images and returns their public URL.
type AvatarUploader interface {
	Upload(ctx context.Context, userID, contentType string, body io.Reader, size int64) (string, error)
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// AuthService handles registration, login, token refresh and avatars.
type AuthService struct {
	users         UserStore
	tokens        *auth.TokenService
	hasher        *auth.Hasher
	revoker       TokenRevoker
	identityCache IdentityCache
	avatars       AvatarUploader
	metrics       metrics.Recorder
	rotateRefresh bool
}

// AuthServiceOptions configures an AuthService.
type AuthServiceOptions struct {
	Users         UserStore
	Tokens        *auth.TokenService
	Hasher        *auth.Hasher
	Revoker       TokenRevoker
	IdentityCache IdentityCache
	Avatars       AvatarUploader
	Metrics       metrics.Recorder

	// RotateRefresh enables single-use refresh tokens. When disabled a
	// refresh token stays valid until it expires and refresh responses
	// return the token that was presented.
	RotateRefresh bool
}

// NewAuthService creates a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	recorder := opts.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:         opts.Users,
		tokens:        opts.Tokens,
		hasher:        opts.Hasher,
		revoker:       opts.Revoker,
		identityCache: opts.IdentityCache,
		avatars:       opts.Avatars,
		metrics:       recorder,
		rotateRefresh: opts.RotateRefresh,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:             ulid.Make().String(),
		Email:          email,
		HashedPassword: hash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
// A missing account and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveAuthDuration(time.Since(start))
	}()

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		s.metrics.IncLoginAttempt("failed")
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		s.metrics.IncLoginAttempt("failed")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user.Email)
	if err != nil {
		s.metrics.IncLoginAttempt("failed")
		return nil, err
	}

	s.metrics.IncLoginAttempt("success")
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new access token.
// With rotation enabled the presented token is consumed and a new refresh
// token is returned; otherwise the same refresh token is echoed back.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		s.metrics.IncTokenRefreshed("failed")
		return nil, ErrInvalidRefreshToken
	}

	email := claims.Subject
	if email == "" {
		s.metrics.IncTokenRefreshed("failed")
		return nil, ErrInvalidRefreshToken
	}

	if s.rotateRefresh && s.revoker != nil {
		revoked, err := s.revoker.IsRefreshTokenRevoked(ctx, refreshToken)
		if err != nil || revoked {
			s.metrics.IncTokenRefreshed("failed")
			return nil, ErrInvalidRefreshToken
		}
	}

	// The account may have been deleted since the token was issued.
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		s.metrics.IncTokenRefreshed("failed")
		return nil, ErrInvalidRefreshToken
	}

	accessToken, err := s.tokens.IssueAccess(user.Email)
	if err != nil {
		s.metrics.IncTokenRefreshed("failed")
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	newRefresh := refreshToken
	if s.rotateRefresh {
		newRefresh, err = s.tokens.IssueRefresh(user.Email)
		if err != nil {
			s.metrics.IncTokenRefreshed("failed")
			return nil, fmt.Errorf("failed to issue refresh token: %w", err)
		}
		if s.revoker != nil {
			remaining := time.Until(claims.ExpiresAt.Time)
			if err := s.revoker.RevokeRefreshToken(ctx, refreshToken, remaining); err != nil {
				s.metrics.IncTokenRefreshed("failed")
				return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
			}
		}
	}

	s.metrics.IncTokenRefreshed("success")

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		TokenType:    "bearer",
	}, nil
}

// UploadAvatar stores an avatar image and records its URL on the user.
func (s *AuthService) UploadAvatar(ctx context.Context, user *model.User, contentType string, body io.Reader, size int64) (string, error) {
	if !allowedAvatarTypes[contentType] {
		return "", ErrUnsupportedAvatar
	}

	url, err := s.avatars.Upload(ctx, user.ID, contentType, body, size)
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	if err := s.users.UpdateUserAvatar(ctx, user.ID, url); err != nil {
		return "", fmt.Errorf("failed to save avatar URL: %w", err)
	}

	// Drop the cached identity so the new URL shows up immediately.
	if s.identityCache != nil {
		_ = s.identityCache.DeleteUser(ctx, user.Email)
	}

	s.metrics.IncAvatarUploaded()

	return url, nil
}

// issuePair issues a fresh access/refresh token pair for a subject.
func (s *AuthService) issuePair(subject string) (*TokenPair, error) {
	accessToken, err := s.tokens.IssueAccess(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.tokens.IssueRefresh(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

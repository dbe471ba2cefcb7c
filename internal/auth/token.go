package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// ErrInvalidToken indicates a token that failed signature verification,
// is malformed, or has expired.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed payload carried by access and refresh tokens.
// The subject is the user's email. Access and refresh tokens share this
// encoding and differ only in lifetime; the caller tracks which is which.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenConfig holds construction parameters for a TokenService.
type TokenConfig struct {
	// Secret is the process-wide HMAC signing key. Required.
	Secret []byte
	// AccessTTL is the lifetime of access tokens.
	AccessTTL time.Duration
	// RefreshTTL is the lifetime of refresh tokens.
	RefreshTTL time.Duration
	// Now overrides the clock. Defaults to time.Now; tests inject a fake.
	Now func() time.Time
}

// TokenService issues and verifies HMAC-SHA256 signed, time-limited tokens.
// Safe for concurrent use; all state is immutable after construction.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService creates a TokenService from config.
// An empty secret is a startup misconfiguration and returns an error.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token service: signing secret is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		secret:     cfg.Secret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        now,
	}, nil
}

// IssueAccess issues a short-lived access token for the subject.
func (s *TokenService) IssueAccess(subject string) (string, error) {
	return s.Issue(subject, s.accessTTL)
}

// IssueRefresh issues a long-lived refresh token for the subject.
func (s *TokenService) IssueRefresh(subject string) (string, error) {
	return s.Issue(subject, s.refreshTTL)
}

// Issue encodes {sub, jti, iat, exp} and signs with the process-wide secret.
// Expiry is now + lifetime. The jti makes every issued token unique even when
// two are minted for the same subject within the same second, so revoking one
// by its string value can never invalidate the other.
func (s *TokenService) Issue(subject string, lifetime time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature integrity and expiry. It returns the claims on
// success and ErrInvalidToken if the signature does not match, the payload
// is malformed, or the token is expired. A token presented exactly at its
// expiry instant is expired.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	// jwt's validator accepts a token at the exact expiry instant;
	// the contract here is now < exp strictly.
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// AccessTTL returns the configured access token lifetime.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

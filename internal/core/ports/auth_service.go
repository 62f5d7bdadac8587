package ports

import (
	"context"
	"time"

	"github.com/sirpyerre/portfolio-api/internal/core/domain"
)

// Session is the result of a successful sign-in or sign-up: a signed token
// and the identity it represents.
type Session struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	Identity  domain.Identity
}

// AuthService owns the session lifecycle: created on sign-in/sign-up,
// destroyed on sign-out, identity re-derived on every resolution.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// SignOut revokes the token with the given id until its natural expiry.
	SignOut(ctx context.Context, tokenID string, expiresAt time.Time) error
	// Identify resolves the current identity for a user id, re-reading the
	// admin flag from the profile record.
	Identify(ctx context.Context, userID string) (*domain.Identity, error)
}

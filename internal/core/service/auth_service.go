package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/portfolio-api/internal/core/domain"
	"github.com/sirpyerre/portfolio-api/internal/core/forms"
	"github.com/sirpyerre/portfolio-api/internal/core/ports"
)

// TokenRevoker abstracts the sign-out denylist (Redis).
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthService implements sign-up, sign-in, sign-out, and identity resolution.
type AuthService struct {
	users     ports.UserRepository
	profiles  ports.ProfileRepository
	revoker   TokenRevoker
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	profiles ports.ProfileRepository,
	revoker TokenRevoker,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		profiles:  profiles,
		revoker:   revoker,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// SignUp registers a new account and opens a session. A profile record with
// is_admin=false is created alongside the account, sharing its id.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*ports.Session, error) {
	form, err := forms.ParseAuth(forms.AuthForm{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	if existing, err := s.users.FindByEmail(ctx, form.Email); err == nil && existing != nil {
		return nil, domain.ErrUserExists
	} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        form.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		ID:        created.ID,
		Email:     created.Email,
		IsAdmin:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("account registered")

	return s.issueSession(domain.Identity{UserID: created.ID, Email: created.Email, IsAdmin: false})
}

// SignIn authenticates an account and opens a session. The admin flag is
// read from the profile record at sign-in time.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*ports.Session, error) {
	form, err := forms.ParseAuth(forms.AuthForm{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, form.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := s.Identify(ctx, user.ID)
	if err != nil {
		// Missing profile is not fatal for sign-in; the identity simply
		// carries no admin rights.
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("profile lookup failed on sign-in")
		identity = &domain.Identity{UserID: user.ID, Email: user.Email}
	}

	return s.issueSession(*identity)
}

// SignOut revokes the token id until its natural expiry. Expired tokens need
// no denylist entry.
func (s *AuthService) SignOut(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return domain.ErrInvalidCredentials
	}
	if !expiresAt.After(time.Now()) {
		return nil
	}
	if err := s.revoker.Revoke(ctx, tokenID, expiresAt); err != nil {
		return err
	}
	s.log.Info().Str("token_id", tokenID).Msg("session revoked")
	return nil
}

// Identify re-derives the identity from the profile record. Called on every
// auth-state resolution so admin-flag changes take effect without re-login.
func (s *AuthService) Identify(ctx context.Context, userID string) (*domain.Identity, error) {
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.Identity{
		UserID:  profile.ID,
		Email:   profile.Email,
		IsAdmin: profile.IsAdmin,
	}, nil
}

func (s *AuthService) issueSession(identity domain.Identity) (*ports.Session, error) {
	tokenID := uuid.NewString()
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.MapClaims{
		"sub":      identity.UserID,
		"email":    identity.Email,
		"is_admin": identity.IsAdmin,
		"jti":      tokenID,
		"exp":      expiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &ports.Session{
		Token:     signed,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
		Identity:  identity,
	}, nil
}

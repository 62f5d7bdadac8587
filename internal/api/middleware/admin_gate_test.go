package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/portfolio-api/internal/core/domain"
	"github.com/sirpyerre/portfolio-api/internal/infrastructure/config"
)

type stubProfiles struct {
	admins map[string]bool
	finds  int
}

func (s *stubProfiles) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	s.finds++
	isAdmin, ok := s.admins[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &domain.Profile{ID: id, IsAdmin: isAdmin}, nil
}

func (s *stubProfiles) Create(context.Context, *domain.Profile) error { return nil }

func gateContext(userID string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(CtxUserID, userID)
	}
	return c
}

func TestAdminGate_NoIdentityDenied(t *testing.T) {
	for _, mode := range []string{config.GateLax, config.GateStrict} {
		c := gateContext("")
		handler := AdminGate(mode, &stubProfiles{})(func(echo.Context) error {
			t.Fatalf("handler ran without identity in %s mode", mode)
			return nil
		})
		err := handler(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
			t.Fatalf("mode %s: expected 401, got %v", mode, err)
		}
	}
}

func TestAdminGate_LaxPassesAnyIdentity(t *testing.T) {
	profiles := &stubProfiles{admins: map[string]bool{"user-1": false}}
	c := gateContext("user-1")

	called := false
	handler := AdminGate(config.GateLax, profiles)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("non-admin blocked in lax mode")
	}
	if profiles.finds != 0 {
		t.Fatalf("lax mode read the profile")
	}
}

func TestAdminGate_StrictRequiresAdminFlag(t *testing.T) {
	profiles := &stubProfiles{admins: map[string]bool{
		"admin-1": true,
		"user-1":  false,
	}}

	handler := AdminGate(config.GateStrict, profiles)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(gateContext("user-1"))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %v", err)
	}

	err = handler(gateContext("unknown"))
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for missing profile, got %v", err)
	}

	if err := handler(gateContext("admin-1")); err != nil {
		t.Fatalf("admin blocked in strict mode: %v", err)
	}
}

// Strict mode reads the flag per request, so a promotion takes effect on the
// very next call without re-login.
func TestAdminGate_StrictRereadsEveryRequest(t *testing.T) {
	profiles := &stubProfiles{admins: map[string]bool{"user-1": false}}
	handler := AdminGate(config.GateStrict, profiles)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(gateContext("user-1")); err == nil {
		t.Fatalf("non-admin passed strict gate")
	}

	profiles.admins["user-1"] = true
	if err := handler(gateContext("user-1")); err != nil {
		t.Fatalf("promoted user still blocked: %v", err)
	}
	if profiles.finds != 2 {
		t.Fatalf("expected 2 profile reads, got %d", profiles.finds)
	}
}

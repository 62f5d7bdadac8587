package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

type stubRevocations struct {
	revoked map[string]bool
}

func (s *stubRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], nil
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func requestWithToken(token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func assertDenied(t *testing.T, err error) deniedResponse {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", he.Code)
	}
	dr, ok := he.Message.(deniedResponse)
	if !ok {
		t.Fatalf("expected denial envelope, got %T", he.Message)
	}
	if dr.Redirect != SignInPath {
		t.Fatalf("redirect = %q, want %q", dr.Redirect, SignInPath)
	}
	return dr
}

func TestAuth_ValidTokenSetsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	token := signedToken(t, jwt.MapClaims{
		"sub":      "user-1",
		"email":    "a@example.com",
		"is_admin": true,
		"jti":      "token-1",
		"exp":      exp.Unix(),
	})
	c, rec := requestWithToken(token)

	called := false
	handler := Auth(testSecret, &stubRevocations{})(func(c echo.Context) error {
		called = true
		if c.Get(CtxUserID) != "user-1" {
			t.Fatalf("user id not set: %v", c.Get(CtxUserID))
		}
		if c.Get(CtxEmail) != "a@example.com" {
			t.Fatalf("email not set: %v", c.Get(CtxEmail))
		}
		if c.Get(CtxIsAdmin) != true {
			t.Fatalf("admin flag not set")
		}
		if c.Get(CtxTokenID) != "token-1" {
			t.Fatalf("token id not set")
		}
		got, ok := c.Get(CtxExpires).(time.Time)
		if !ok || got.Unix() != exp.Unix() {
			t.Fatalf("expiry not set: %v", c.Get(CtxExpires))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuth_MissingHeaderDeniedBeforeHandler(t *testing.T) {
	c, _ := requestWithToken("")

	called := false
	handler := Auth(testSecret, &stubRevocations{})(func(c echo.Context) error {
		called = true
		return nil
	})

	err := handler(c)
	assertDenied(t, err)
	if called {
		t.Fatalf("handler ran for unauthenticated request")
	}
}

func TestAuth_BadToken(t *testing.T) {
	cases := map[string]string{
		"garbage": "not-a-jwt",
		"wrong secret": func() string {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
			signed, _ := token.SignedString([]byte("other-secret"))
			return signed
		}(),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := requestWithToken(token)
			handler := Auth(testSecret, &stubRevocations{})(func(echo.Context) error {
				t.Fatalf("handler ran")
				return nil
			})
			assertDenied(t, handler(c))
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	c, _ := requestWithToken(token)
	handler := Auth(testSecret, &stubRevocations{})(func(echo.Context) error {
		t.Fatalf("handler ran with expired token")
		return nil
	})
	assertDenied(t, handler(c))
}

func TestAuth_RevokedToken(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub": "user-1",
		"jti": "signed-out",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	c, _ := requestWithToken(token)

	revocations := &stubRevocations{revoked: map[string]bool{"signed-out": true}}
	handler := Auth(testSecret, revocations)(func(echo.Context) error {
		t.Fatalf("handler ran with revoked token")
		return nil
	})
	dr := assertDenied(t, handler(c))
	if dr.Error != "session signed out" {
		t.Fatalf("message = %q", dr.Error)
	}
}

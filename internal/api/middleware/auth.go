package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxUserID  = "user_id"
	CtxEmail   = "email"
	CtxIsAdmin = "is_admin"
	CtxTokenID = "token_id"
	CtxExpires = "token_expires"
)

// SignInPath is the redirect target emitted with every denial.
const SignInPath = "/auth/login"

// RevocationChecker reports whether a token id has been signed out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// deniedResponse is the denial envelope: the error plus a redirect signal
// the frontend follows to the sign-in page.
type deniedResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

func denied(message string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, deniedResponse{
		Error:    message,
		Redirect: SignInPath,
	})
}

// Auth validates the JWT, rejects revoked tokens, and injects the identity
// claims into context. An unauthenticated request is denied before any
// handler runs, so no repository data is ever fetched for it.
func Auth(jwtSecret string, revoked RevocationChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return denied("missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return denied("invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return denied("invalid token")
			}

			tokenID, _ := claims["jti"].(string)
			if revoked != nil && tokenID != "" {
				isRevoked, err := revoked.IsRevoked(c.Request().Context(), tokenID)
				if err == nil && isRevoked {
					return denied("session signed out")
				}
			}

			c.Set(CtxUserID, claims["sub"])
			c.Set(CtxEmail, claims["email"])
			c.Set(CtxIsAdmin, claims["is_admin"] == true)
			c.Set(CtxTokenID, tokenID)
			if exp, ok := claims["exp"].(float64); ok {
				c.Set(CtxExpires, time.Unix(int64(exp), 0))
			}

			return next(c)
		}
	}
}

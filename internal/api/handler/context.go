package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/portfolio-api/internal/api/middleware"
)

// ctxIdentity extracts the identity claims injected by the Auth middleware
// and performs a fast-fail check before any service call: a missing user id
// means the middleware did not run or the token was structurally unusable.
func ctxIdentity(c echo.Context) (userID, email string, err error) {
	userID, _ = c.Get(middleware.CtxUserID).(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	email, _ = c.Get(middleware.CtxEmail).(string)
	return userID, email, nil
}

// ctxToken extracts the token id and expiry used by sign-out.
func ctxToken(c echo.Context) (tokenID string, expiresAt time.Time) {
	tokenID, _ = c.Get(middleware.CtxTokenID).(string)
	expiresAt, _ = c.Get(middleware.CtxExpires).(time.Time)
	return tokenID, expiresAt
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/portfolio-api/internal/core/ports"
	"github.com/sirpyerre/portfolio-api/internal/infrastructure/config"
)

// AdminGate guards the management surface. It runs after Auth, so an
// identity is always present here.
//
// In "lax" mode any authenticated identity passes — the behavior the site
// has always shipped with, leaving real write enforcement to store policy.
// In "strict" mode the profile's admin flag is re-read on every request and
// must be true. Both modes exist so the lax gate is an explicit choice
// rather than an accident; the mode comes from ADMIN_GATE.
func AdminGate(mode string, profiles ports.ProfileRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(CtxUserID).(string)
			if userID == "" {
				return denied("missing authentication claims")
			}

			if mode != config.GateStrict {
				return next(c)
			}

			profile, err := profiles.FindByID(c.Request().Context(), userID)
			if err != nil || !profile.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "administrator access required")
			}

			return next(c)
		}
	}
}

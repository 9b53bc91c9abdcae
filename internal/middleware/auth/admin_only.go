package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

// RequireRole admits only identities whose role equals expected. It must run after RequireAuth.
func RequireRole(expected models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := logging.FromContext(c.Request().Context()).With("middleware", "require_role")

			id, ok := IdentityFrom(c)
			if !ok {
				l.Warn("role_check_failed", "status", 401, "reason", "no identity")
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if id.Role != expected {
				l.Warn("role_check_failed", "status", 403, "user_id", id.ID, "role", id.Role, "expected", expected)
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
			}
			return next(c)
		}
	}
}

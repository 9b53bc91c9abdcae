package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type Auth struct {
	Tokens *tokens.Authority
}

func New(t *tokens.Authority) *Auth {
	return &Auth{Tokens: t}
}

// RequireAuth verifies the bearer token and attaches the identity to the context.
func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "require_auth")

		id, err := m.Tokens.Verify(ctx, c.Request().Header.Get(echo.HeaderAuthorization))
		switch {
		case err == nil:
		case errors.Is(err, tokens.ErrRevoked):
			l.Warn("auth_failed", "status", 401, "reason", "revoked")
			return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
		case errors.Is(err, tokens.ErrUnauthenticated):
			l.Warn("auth_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		default:
			l.Error("auth_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, echo.Map{
				"message": "authentication check failed",
				"error":   err.Error(),
			})
		}

		setIdentity(c, id)
		scoped := logging.FromContext(ctx).With("user_id", id.ID)
		c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, scoped)))
		return next(c)
	}
}

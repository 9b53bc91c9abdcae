package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Signup(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("signup_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrForbidden):
			l.Warn("signup_error", "status", 403, "error", err)
			return echo.NewHTTPError(http.StatusForbidden, "admin signup is disabled")
		case errors.Is(err, service.ErrConflict):
			l.Warn("signup_error", "status", 409, "error", err)
			return echo.NewHTTPError(http.StatusConflict, "a user with this email already exists")
		default:
			l.Error("signup_error", "status", 500, "error", err)
			return internalError("signup failed", err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "signup successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("login_failed", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUnauthenticated):
			l.Warn("login_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		default:
			l.Error("login_failed", "status", 500, "error", err)
			return internalError("login failed", err)
		}
	}

	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if err := h.Svc.Logout(ctx, c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
		if errors.Is(err, tokens.ErrMissingToken) {
			l.Warn("logout_failed", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "missing token")
		}
		l.Error("logout_failed", "status", 500, "error", err)
		return internalError("logout failed", err)
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

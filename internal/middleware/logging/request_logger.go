package loggingmw

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
)

// RequestLogger scopes a logger to the request and writes one summary line when the
// handler returns. It must run after echo's RequestID middleware.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			rid := requestID(c)
			if rid != "" {
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}

			l := base.With(requestAttrs(c, rid)...)
			c.SetRequest(r.WithContext(logging.IntoContext(r.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}
			status := c.Response().Status

			attrs := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
			if id, ok := authmw.IdentityFrom(c); ok {
				attrs = append(attrs, "user_id", id.ID, "role", string(id.Role))
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			} else {
				attrs = append(attrs, "bytes", c.Response().Size)
			}
			l.Log(context.Background(), levelFor(status), "request completed", attrs...)
			return nil
		}
	}
}

func requestID(c echo.Context) string {
	if rid := c.Request().Header.Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func requestAttrs(c echo.Context, rid string) []any {
	r := c.Request()
	attrs := []any{
		"method", r.Method,
		"route", c.Path(),
		"path", r.URL.Path,
		"remote_ip", c.RealIP(),
	}
	if rid != "" {
		attrs = append(attrs, "request_id", rid)
	}
	return attrs
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

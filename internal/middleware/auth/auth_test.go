package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

func okHandler(c echo.Context) error {
	id, _ := IdentityFrom(c)
	return c.JSON(http.StatusOK, id)
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func newCtx(e *echo.Echo, header string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()
	authority := tokens.NewAuthority([]byte("k"), time.Hour, nil)
	mw := New(authority)

	tok, err := authority.Issue(tokens.Identity{ID: 5, Email: "e@example.com", Role: models.RoleCustomer})
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		c, _ := newCtx(e, "")
		assert.Equal(t, http.StatusUnauthorized, httpCode(t, mw.RequireAuth(okHandler)(c)))
	})

	t.Run("valid token", func(t *testing.T) {
		c, rec := newCtx(e, "Bearer "+tok)
		require.NoError(t, mw.RequireAuth(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"email":"e@example.com"`)
	})

	t.Run("revoked token", func(t *testing.T) {
		c, _ := newCtx(e, "Bearer "+tok)
		require.NoError(t, authority.Revoke(c.Request().Context(), "Bearer "+tok))
		assert.Equal(t, http.StatusUnauthorized, httpCode(t, mw.RequireAuth(okHandler)(c)))
	})
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	gate := RequireRole(models.RoleAdmin)(okHandler)

	t.Run("no identity", func(t *testing.T) {
		c, _ := newCtx(e, "")
		assert.Equal(t, http.StatusUnauthorized, httpCode(t, gate(c)))
	})

	t.Run("customer rejected", func(t *testing.T) {
		c, _ := newCtx(e, "")
		setIdentity(c, tokens.Identity{ID: 1, Role: models.RoleCustomer})
		assert.Equal(t, http.StatusForbidden, httpCode(t, gate(c)))
	})

	t.Run("admin admitted", func(t *testing.T) {
		c, rec := newCtx(e, "")
		setIdentity(c, tokens.Identity{ID: 2, Role: models.RoleAdmin})
		require.NoError(t, gate(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/tokens"
)

const identityKey = "identity"

func setIdentity(c echo.Context, id tokens.Identity) {
	c.Set(identityKey, id)
}

func IdentityFrom(c echo.Context) (tokens.Identity, bool) {
	id, ok := c.Get(identityKey).(tokens.Identity)
	return id, ok
}

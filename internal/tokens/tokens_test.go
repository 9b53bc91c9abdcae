package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/revocation"
)

var secret = []byte("test-secret")

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newAuthority(t *testing.T) (*Authority, *clock, *revocation.Memory) {
	t.Helper()
	c := &clock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := revocation.NewMemory()
	a := NewAuthority(secret, time.Hour, store)
	a.Now = c.Now
	return a, c, store
}

func bearer(tok string) string { return "Bearer " + tok }

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	a, _, _ := newAuthority(t)
	id := Identity{ID: 7, Email: "ann@example.com", Role: models.RoleAdmin}

	tok, err := a.Issue(id)
	require.NoError(t, err)

	got, err := a.Verify(context.Background(), bearer(tok))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestIssue_RejectsUnknownRole(t *testing.T) {
	t.Parallel()

	a, _, _ := newAuthority(t)
	_, err := a.Issue(Identity{ID: 1, Email: "x@example.com", Role: "root"})
	assert.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	a, c, _ := newAuthority(t)
	tok, err := a.Issue(Identity{ID: 1, Email: "a@example.com", Role: models.RoleCustomer})
	require.NoError(t, err)

	c.Advance(59 * time.Minute)
	_, err = a.Verify(context.Background(), bearer(tok))
	require.NoError(t, err)

	c.Advance(2 * time.Minute)
	_, err = a.Verify(context.Background(), bearer(tok))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestVerify_BadHeaders(t *testing.T) {
	t.Parallel()

	a, _, _ := newAuthority(t)
	tok, err := a.Issue(Identity{ID: 1, Email: "a@example.com", Role: models.RoleCustomer})
	require.NoError(t, err)

	cases := map[string]string{
		"empty":        "",
		"no scheme":    tok,
		"wrong scheme": "Basic " + tok,
		"three parts":  "Bearer " + tok + " extra",
		"scheme only":  "Bearer",
		"garbage":      "Bearer not.a.jwt",
		"double space": "Bearer  " + tok,
		"trailing":     "Bearer ",
		"tab":          "Bearer\t" + tok,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := a.Verify(context.Background(), header)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestParseBearer(t *testing.T) {
	t.Parallel()

	tok, err := ParseBearer("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	for _, header := range []string{"Bearer  abc", " Bearer abc", "bearer abc", "Bearer abc "} {
		_, err := ParseBearer(header)
		assert.ErrorIs(t, err, ErrUnauthenticated, header)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	a, _, _ := newAuthority(t)
	other := NewAuthority([]byte("other"), time.Hour, nil)
	other.Now = a.Now

	tok, err := other.Issue(Identity{ID: 1, Email: "a@example.com", Role: models.RoleCustomer})
	require.NoError(t, err)

	_, err = a.Verify(context.Background(), bearer(tok))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	a, c, _ := newAuthority(t)
	claims := Claims{
		UserID: 1,
		Email:  "a@example.com",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(c.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = a.Verify(context.Background(), bearer(tok))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestVerify_RejectsUnknownRoleClaim(t *testing.T) {
	t.Parallel()

	a, c, _ := newAuthority(t)
	claims := Claims{
		UserID: 1,
		Email:  "a@example.com",
		Role:   "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(c.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = a.Verify(context.Background(), bearer(tok))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRevoke_ThenVerifyFails(t *testing.T) {
	t.Parallel()

	a, _, _ := newAuthority(t)
	ctx := context.Background()
	tok, err := a.Issue(Identity{ID: 3, Email: "c@example.com", Role: models.RoleCustomer})
	require.NoError(t, err)

	require.NoError(t, a.Revoke(ctx, bearer(tok)))
	require.NoError(t, a.Revoke(ctx, bearer(tok)))

	_, err = a.Verify(ctx, bearer(tok))
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestRevoke_MissingToken(t *testing.T) {
	t.Parallel()

	a, _, _ := newAuthority(t)
	assert.ErrorIs(t, a.Revoke(context.Background(), ""), ErrMissingToken)
	assert.ErrorIs(t, a.Revoke(context.Background(), "Bearer"), ErrMissingToken)
}

func TestRevoke_ExpiredTokenIsNoop(t *testing.T) {
	t.Parallel()

	a, c, store := newAuthority(t)
	tok, err := a.Issue(Identity{ID: 1, Email: "a@example.com", Role: models.RoleCustomer})
	require.NoError(t, err)

	c.Advance(2 * time.Hour)
	require.NoError(t, a.Revoke(context.Background(), bearer(tok)))
	assert.Equal(t, 0, store.Len())
}

func TestRevoke_NoExpiryDefaultsToOneHour(t *testing.T) {
	t.Parallel()

	a, c, store := newAuthority(t)
	ctx := context.Background()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 1}).SignedString(secret)
	require.NoError(t, err)

	require.NoError(t, a.Revoke(ctx, bearer(tok)))
	ok, _ := store.IsRevoked(ctx, tok, c.Now().Add(59*time.Minute))
	assert.True(t, ok)
	ok, _ = store.IsRevoked(ctx, tok, c.Now().Add(61*time.Minute))
	assert.False(t, ok)
}

func TestVerify_PurgesExpiredRevocations(t *testing.T) {
	t.Parallel()

	a, c, store := newAuthority(t)
	ctx := context.Background()

	old, err := a.Issue(Identity{ID: 1, Email: "a@example.com", Role: models.RoleCustomer})
	require.NoError(t, err)
	require.NoError(t, a.Revoke(ctx, bearer(old)))
	require.Equal(t, 1, store.Len())

	c.Advance(90 * time.Minute)
	fresh, err := a.Issue(Identity{ID: 2, Email: "b@example.com", Role: models.RoleCustomer})
	require.NoError(t, err)

	_, err = a.Verify(ctx, bearer(fresh))
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

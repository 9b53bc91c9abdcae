// Package tokens issues and verifies bearer session tokens.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/revocation"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrRevoked         = errors.New("token revoked")
	ErrMissingToken    = errors.New("missing token")
)

const (
	DefaultTTL       = time.Hour
	defaultRevokeTTL = time.Hour
	bearerScheme     = "Bearer"
)

type Identity struct {
	ID    uint        `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type Claims struct {
	UserID uint        `json:"id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

type Authority struct {
	Secret  []byte
	TTL     time.Duration
	Revoked revocation.Store
	Now     func() time.Time
}

func NewAuthority(secret []byte, ttl time.Duration, store revocation.Store) *Authority {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if store == nil {
		store = revocation.NewMemory()
	}
	return &Authority{Secret: secret, TTL: ttl, Revoked: store, Now: time.Now}
}

func (a *Authority) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Authority) Issue(id Identity) (string, error) {
	if !id.Role.Valid() {
		return "", fmt.Errorf("issue token: unknown role %q", id.Role)
	}
	now := a.now()
	claims := Claims{
		UserID: id.ID,
		Email:  id.Email,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(id.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.TTL)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseBearer returns the token of a two-part "Bearer <token>" header.
func ParseBearer(header string) (string, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != bearerScheme || parts[1] == "" {
		return "", ErrUnauthenticated
	}
	return parts[1], nil
}

// Verify purges expired revocations, then checks the header, the revocation set and the signature.
func (a *Authority) Verify(ctx context.Context, header string) (Identity, error) {
	now := a.now()
	if err := a.Revoked.Purge(ctx, now); err != nil {
		return Identity{}, fmt.Errorf("purge revocations: %w", err)
	}

	if header == "" {
		return Identity{}, fmt.Errorf("%w: no authorization header", ErrUnauthenticated)
	}
	raw, err := ParseBearer(header)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: malformed authorization header", ErrUnauthenticated)
	}

	revoked, err := a.Revoked.IsRevoked(ctx, raw, now)
	if err != nil {
		return Identity{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Identity{}, ErrRevoked
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !tkn.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if !claims.Role.Valid() {
		return Identity{}, fmt.Errorf("%w: unknown role %q", ErrUnauthenticated, claims.Role)
	}

	return Identity{ID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// Revoke stores the presented token until its own expiry. The signature is not checked.
func (a *Authority) Revoke(ctx context.Context, header string) error {
	if strings.TrimSpace(header) == "" {
		return ErrMissingToken
	}
	raw, err := ParseBearer(header)
	if err != nil {
		return ErrMissingToken
	}

	now := a.now()
	exp := now.Add(defaultRevokeTTL)
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err == nil && claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	if !exp.After(now) {
		return nil
	}

	if err := a.Revoked.Revoke(ctx, raw, exp, now); err != nil {
		return fmt.Errorf("store revocation: %w", err)
	}
	return nil
}

// Package revocation holds tokens that were logged out before their expiry.
package revocation

import (
	"context"
	"time"
)

// Store remembers revoked tokens until their own expiry. Every method takes the
// caller's clock as now.
type Store interface {
	Revoke(ctx context.Context, token string, exp, now time.Time) error
	IsRevoked(ctx context.Context, token string, now time.Time) (bool, error)
	// Purge drops entries whose expiry is at or before now.
	Purge(ctx context.Context, now time.Time) error
}

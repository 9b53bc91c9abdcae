package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "revoked:"

// Redis shares revocations between instances. Keys expire with the token,
// so Purge has nothing to do.
type Redis struct {
	Client    redis.UniversalClient
	KeyPrefix string
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{Client: client, KeyPrefix: defaultKeyPrefix}
}

func (r *Redis) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return r.KeyPrefix + hex.EncodeToString(sum[:])
}

func (r *Redis) Revoke(ctx context.Context, token string, exp, now time.Time) error {
	ttl := exp.Sub(now)
	if ttl <= 0 {
		return nil
	}
	return r.Client.Set(ctx, r.key(token), exp.Unix(), ttl).Err()
}

func (r *Redis) IsRevoked(ctx context.Context, token string, now time.Time) (bool, error) {
	v, err := r.Client.Get(ctx, r.key(token)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return time.Unix(v, 0).After(now), nil
}

func (r *Redis) Purge(context.Context, time.Time) error { return nil }

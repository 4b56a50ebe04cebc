package auth

import (
	"context"
	"fmt"
	"time"

	rediscommon "github.com/softserv/softserv/common/redis"
)

// Revoker invalidates issued tokens before their natural expiry.
// Entries only need to outlive the token, so no sweeping is required.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevoker is the production revocation cache, keyed by token id
type RedisRevoker struct {
	redis *rediscommon.Client
}

// NewRedisRevoker creates a revocation cache backed by redis
func NewRedisRevoker(client *rediscommon.Client) *RedisRevoker {
	return &RedisRevoker{redis: client}
}

func (r *RedisRevoker) key(tokenID string) string {
	return fmt.Sprintf("token:revoked:%s", tokenID)
}

// Revoke records a token id until the token would have expired anyway
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired, nothing to record
		return nil
	}
	return r.redis.SetWithExpiry(ctx, r.key(tokenID), "revoked", ttl)
}

// IsRevoked reports whether a token id has been revoked
func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return r.redis.Exists(ctx, r.key(tokenID))
}

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedSessionPrefix = "filevault:revoked_session:"

// RedisSessionDenylist stores revoked session ids in Redis, each expiring
// when the last token issued for it would have.
type RedisSessionDenylist struct {
	client *redis.Client
}

// NewRedisSessionDenylist connects to Redis and verifies the connection.
func NewRedisSessionDenylist(ctx context.Context, addr, password string, db int) (*RedisSessionDenylist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisSessionDenylist{client: client}, nil
}

// IsRevoked reports whether sessionID has been signed out
func (d *RedisSessionDenylist) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	count, err := d.client.Exists(ctx, revokedSessionPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Revoke marks sessionID as signed out until the given time. Past times are a no-op.
func (d *RedisSessionDenylist) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, revokedSessionPrefix+sessionID, "1", ttl).Err()
}

// Close closes the Redis connection
func (d *RedisSessionDenylist) Close() error {
	return d.client.Close()
}

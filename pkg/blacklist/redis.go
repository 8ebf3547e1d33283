package blacklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces blacklist keys in Redis.
const KeyPrefix = "blacklist:"

// Redis is a Blacklist shared between server processes. Each entry is a
// key that Redis expires together with the token.
type Redis struct {
	client redis.Cmdable
	now    func() time.Time
}

// NewRedis wraps an existing client.
func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client, now: time.Now}
}

// Dial connects to the Redis server at addr using database db and checks
// the connection.
func Dial(ctx context.Context, addr string, db int) (*Redis, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping %s/%d: %w", addr, db, err)
	}
	return NewRedis(client), client, nil
}

// Key returns the Redis key of jti.
func Key(jti string) string {
	return KeyPrefix + jti
}

// Add blacklists jti until exp. Tokens that already expired are ignored.
func (r *Redis) Add(ctx context.Context, jti string, exp time.Time) error {
	ttl := exp.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	// Redis rejects sub-second EX values.
	ttl = ttl.Round(time.Second)
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := r.client.Set(ctx, Key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", Key(jti), err)
	}
	return nil
}

// Contains reports whether jti is blacklisted.
func (r *Redis) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, Key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", Key(jti), err)
	}
	return n > 0, nil
}

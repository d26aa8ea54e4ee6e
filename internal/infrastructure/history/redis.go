package history

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voicebot/internal/ports/output"
)

// DefaultTTL bounds how long an inactive user's history survives in Redis;
// it plays the role the user-LRU cap plays in the in-process history.
const DefaultTTL = 24 * time.Hour

// Ensure Redis implements the output.SessionHistory port.
var _ output.SessionHistory = (*Redis)(nil)

// Redis is a session history shared across bot instances. Each (user, key)
// is a bounded list ring; a per-user set tracks which rings exist so
// EvictUser can drop them in one shot. Redis serializes commands per
// connection, which gives the same-user ordering guarantee the port asks
// for.
type Redis struct {
	client   *redis.Client
	capacity int
	ttl      time.Duration
	prefix   string
}

// RedisOption configures a Redis history.
type RedisOption func(*Redis)

// WithRedisCapacity sets the per-(user, key) bound.
func WithRedisCapacity(capacity int) RedisOption {
	return func(r *Redis) {
		if capacity > 0 {
			r.capacity = capacity
		}
	}
}

// WithTTL sets how long an inactive user's history is retained.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithPrefix namespaces all keys, for shared Redis deployments.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// NewRedis builds a history over an existing client.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client:   client,
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
		prefix:   "voice:hist",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) ringKey(userID, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, userID, key)
}

func (r *Redis) userKey(userID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, userID)
}

// Record implements output.SessionHistory.
func (r *Redis) Record(ctx context.Context, userID, key, variantID string) error {
	ring := r.ringKey(userID, key)
	set := r.userKey(userID)

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, ring, variantID)
	pipe.LTrim(ctx, ring, 0, int64(r.capacity)-1)
	pipe.SAdd(ctx, set, ring)
	pipe.Expire(ctx, ring, r.ttl)
	pipe.Expire(ctx, set, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("history record: %w", err)
	}
	return nil
}

// RecentlyUsed implements output.SessionHistory.
func (r *Redis) RecentlyUsed(ctx context.Context, userID, key string) ([]string, error) {
	ids, err := r.client.LRange(ctx, r.ringKey(userID, key), 0, int64(r.capacity)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("history lookup: %w", err)
	}
	return ids, nil
}

// EvictUser implements output.SessionHistory.
func (r *Redis) EvictUser(ctx context.Context, userID string) error {
	set := r.userKey(userID)
	rings, err := r.client.SMembers(ctx, set).Result()
	if err != nil {
		return fmt.Errorf("history evict: %w", err)
	}
	if err := r.client.Del(ctx, append(rings, set)...).Err(); err != nil {
		return fmt.Errorf("history evict: %w", err)
	}
	return nil
}

// SizeBytes implements output.SessionHistory. The memory lives in the Redis
// server and is bounded there by ring trimming plus the per-user TTL, so the
// in-process estimate is zero.
func (r *Redis) SizeBytes() int64 { return 0 }

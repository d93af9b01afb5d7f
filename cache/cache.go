// Package cache provides Redis caching for read-heavy payloads. The homepage
// feed tolerates slightly stale counts, so entries simply expire; nothing
// invalidates them on write.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	PopularPostsKey = "feed:popular-posts"
	TopUsersKey     = "feed:top-users"

	FeedTTL = 30 * time.Second
)

// ErrMiss is returned when a key is absent or the cache is disabled.
var ErrMiss = errors.New("cache miss")

// Cache wraps a Redis client. A nil *Cache (or one built from an unreachable
// Redis) disables caching without affecting callers.
type Cache struct {
	client *redis.Client
}

// New connects to Redis at addr. On any failure it logs a warning and
// returns a disabled cache so the application keeps working without Redis.
func New(addr string) *Cache {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unreachable, continuing without cache")
		return nil
	}

	logrus.Info("Redis connected")
	return &Cache{client: client}
}

// NewWithClient wraps an existing client; used by tests.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// GetJSON loads the value at key into dest. Returns ErrMiss when absent.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	if c == nil || c.client == nil {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// SetJSON stores value at key with the given TTL. Failures are logged and
// dropped; caching is best effort.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache set failed")
	}
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

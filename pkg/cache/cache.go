// Package cache is a small key/value cache over Redis.
//
// Keys are namespaced with the cache prefix. Values are strings; GetOrLoad stores
// arbitrary values as JSON.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "kycore/pkg/domain-errors"
)

// incrAndExpire sets the TTL only when the counter is created, so a window does
// not slide with every hit.
var incrAndExpire = redis.NewScript(`
local r = redis.call("INCR", KEYS[1])
if r == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return r
`)

var incrByAndExpire = redis.NewScript(`
local r = redis.call("INCRBY", KEYS[1], ARGV[1])
redis.call("EXPIRE", KEYS[1], ARGV[2])
return r
`)

// Logger receives failures that do not fail the caller.
type Logger interface {
	Warn(ctx context.Context, msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Warn(context.Context, string, ...any) {}

// Cache is safe for concurrent use.
type Cache struct {
	client redis.Cmdable
	prefix string
	logger Logger
}

type Option func(*Cache)

// WithPrefix namespaces every key as "<prefix>:<key>".
func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = strings.TrimSuffix(prefix, ":") }
}

func WithLogger(logger Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

func New(client redis.Cmdable, opts ...Option) *Cache {
	c := &Cache{client: client, logger: nopLogger{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key joins parts with ':' under the cache prefix.
func (c *Cache) Key(parts ...string) string {
	key := strings.Join(parts, ":")
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// SetOptions tunes Set. NX writes only absent keys, XX only existing ones; they
// are mutually exclusive.
type SetOptions struct {
	TTL time.Duration
	NX  bool
	XX  bool
}

// Set stores value under key. It reports false when an NX or XX condition
// prevented the write.
func (c *Cache) Set(ctx context.Context, key string, value any, opts SetOptions) (bool, error) {
	if opts.NX && opts.XX {
		return false, dErrors.New(dErrors.CodeArgumentInvalid, "NX and XX are mutually exclusive")
	}
	if key == "" {
		return false, dErrors.New(dErrors.CodeArgumentMissing, "cache key is required")
	}
	args := redis.SetArgs{TTL: opts.TTL}
	switch {
	case opts.NX:
		args.Mode = "NX"
	case opts.XX:
		args.Mode = "XX"
	}
	err := c.client.SetArgs(ctx, c.Key(key), value, args).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the value stored under key; found is false when it is absent.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, c.Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// GetOrLoad returns the JSON value cached under key or, on a miss, calls load and
// caches its result for ttl. A failure to write the cache is logged, not
// returned. An undecodable cached value is treated as a miss.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	raw, found, err := c.Get(ctx, key)
	if err != nil {
		c.logger.Warn(ctx, "cache read failed", "key", key, "error", err)
	}
	if found {
		var cached T
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn(ctx, "cache value undecodable", "key", key)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn(ctx, "cache value unencodable", "key", key, "error", err)
		return value, nil
	}
	if _, err := c.Set(ctx, key, encoded, SetOptions{TTL: ttl}); err != nil {
		c.logger.Warn(ctx, "cache write failed", "key", key, "error", err)
	}
	return value, nil
}

// Del removes keys and returns how many existed.
func (c *Cache) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return c.client.Del(ctx, c.keys(keys)...).Result()
}

// Exists returns how many of keys exist.
func (c *Cache) Exists(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return c.client.Exists(ctx, c.keys(keys)...).Result()
}

// Expire sets key's TTL and reports whether the key exists.
func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.Expire(ctx, c.Key(key), ttl).Result()
}

// TTL returns the remaining time to live of key.
func (c *Cache) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.client.TTL(ctx, c.Key(key)).Result()
}

// IncrAndExpire atomically increments key and, when the increment created it,
// sets its TTL. It returns the new value.
func (c *Cache) IncrAndExpire(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return incrAndExpire.Run(ctx, c.client, []string{c.Key(key)}, seconds(ttl)).Int64()
}

// IncrByAndExpire atomically increments key by n and resets its TTL.
func (c *Cache) IncrByAndExpire(ctx context.Context, key string, n int64, ttl time.Duration) (int64, error) {
	return incrByAndExpire.Run(ctx, c.client, []string{c.Key(key)}, n, seconds(ttl)).Int64()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) keys(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = c.Key(k)
	}
	return out
}

func seconds(d time.Duration) int64 {
	s := int64(d / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}

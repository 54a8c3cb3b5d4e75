package store

import (
	"context"
	"time"

	"kycore/internal/user/models"
	"kycore/pkg/cache"
	"kycore/pkg/domain"
)

// LookupRecorder counts cache hits and misses.
type LookupRecorder interface {
	IncrementCacheLookup(hit bool)
}

// Cache keeps read-through copies of users in Redis, keyed by id. Entries are
// stored in row form and validated again on the way out.
type Cache struct {
	cache   *cache.Cache
	ttl     time.Duration
	lookups LookupRecorder
}

func NewCache(c *cache.Cache, ttl time.Duration, lookups LookupRecorder) *Cache {
	return &Cache{cache: c, ttl: ttl, lookups: lookups}
}

// Load returns the cached user with id, or calls load and caches its result.
func (c *Cache) Load(ctx context.Context, id domain.ID, load func(ctx context.Context) (*models.User, error)) (*models.User, error) {
	hit := true
	row, err := cache.GetOrLoad(ctx, c.cache, key(id), c.ttl, func(ctx context.Context) (UserRow, error) {
		hit = false
		u, err := load(ctx)
		if err != nil {
			return UserRow{}, err
		}
		return mapper{}.ToOrmEntity(u), nil
	})
	if err != nil {
		return nil, err
	}
	if c.lookups != nil {
		c.lookups.IncrementCacheLookup(hit)
	}
	return mapper{}.ToDomainEntity(row)
}

// Invalidate drops the cached copy of id.
func (c *Cache) Invalidate(ctx context.Context, id domain.ID) error {
	_, err := c.cache.Del(ctx, key(id))
	return err
}

func key(id domain.ID) string {
	return "user:" + id.String()
}

// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"voicechat_backend/internal/feature/users/domain/entity"
	"voicechat_backend/internal/feature/users/usecase"
)

// CachingUserRepository decorates a UserRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository. Email and username lookups are
// cached with the password hash cleared, so no bcrypt hash ever lands in
// Redis; listings and ID lookups are not cached (FindByID is the read half
// of every read-then-write operation and must see the current row, hash
// included). Misses are never cached, so Create needs no invalidation;
// every other mutation invalidates the whole namespace.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// CachingUserRepositoryがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create inserts a user through the underlying repository.
// Nothing is cached for absent users, so no invalidation is needed.
func (c *CachingUserRepository) Create(ctx context.Context, u *entity.User) error {
	return c.inner.Create(ctx, u)
}

// FindAll always goes to the underlying repository: the listing uses a
// column projection that would not round-trip through the cached full rows.
func (c *CachingUserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	return c.inner.FindAll(ctx)
}

// FindByID always goes to the underlying repository. The ID lookup is the
// read half of password change, face enrollment and delete, so it must see
// the current row with the password hash intact; a cached copy would make
// the password comparison run against a stale or cleared hash.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return c.inner.FindByID(ctx, id)
}

// FindByEmail retrieves a user by email, checking cache first.
func (c *CachingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.lookup(ctx, c.cacheKey("email", email), func() (*entity.User, error) {
		return c.inner.FindByEmail(ctx, email)
	})
}

// FindByUsername retrieves a user by username, checking cache first.
func (c *CachingUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return c.lookup(ctx, c.cacheKey("username", username), func() (*entity.User, error) {
		return c.inner.FindByUsername(ctx, username)
	})
}

// Update applies a partial update and invalidates the user cache namespace.
func (c *CachingUserRepository) Update(ctx context.Context, id uint, changes entity.UserChanges) (int64, error) {
	affected, err := c.inner.Update(ctx, id, changes)
	if err != nil {
		return 0, err
	}
	c.invalidate(ctx)
	return affected, nil
}

// Delete removes a user and invalidates the user cache namespace.
func (c *CachingUserRepository) Delete(ctx context.Context, u *entity.User) error {
	if err := c.inner.Delete(ctx, u); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// lookup implements the read-through path shared by the single-user finders.
func (c *CachingUserRepository) lookup(ctx context.Context, key string, find func() (*entity.User, error)) (*entity.User, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return find()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var u entity.User
		if err := json.Unmarshal(b, &u); err == nil {
			return &u, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	u, err := find()
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort). The password hash is cleared first
	// so credentials never land in Redis; cache hits carry an empty hash,
	// which is fine because the hash-bearing path (FindByID) never caches.
	cached := *u
	cached.Password = ""
	if b, err := json.Marshal(&cached); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return u, nil
}

// invalidate removes every cached entry in the namespace (best effort:
// mutations must not fail because cache deletion failed).
func (c *CachingUserRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	_ = c.deleteByPattern(ctx, c.namespace+":*")
}

// cacheKey generates a cache key for a specific lookup.
func (c *CachingUserRepository) cacheKey(field, value string) string {
	return fmt.Sprintf("%s:%s:%s", c.namespace, field, safe(value))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingUserRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}

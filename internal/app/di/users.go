// Package di はアプリケーションの依存関係を組み立てるファクトリを提供します。
package di

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"voicechat_backend/internal/feature/users/adapters"
	"voicechat_backend/internal/feature/users/usecase"
	"voicechat_backend/internal/platform/cache"
	platformredis "voicechat_backend/internal/platform/redis"
)

// userCacheTTL is how long cached email/username lookups live in Redis.
const userCacheTTL = 5 * time.Minute

// NewUserRepository creates a UserRepository implementation.
// It builds the Redis client from the environment and, when Redis is
// reachable, wraps the GORM repository with the caching decorator.
// Otherwise, it falls back to the database alone.
func NewUserRepository(db *gorm.DB) usecase.UserRepository {
	repo := adapters.NewUserMySQL(db)

	rdb, err := platformredis.NewRedisClient()
	if err != nil {
		slog.Warn("Running without user cache", "error", err)
		return repo
	}
	return cache.NewCachingUserRepository(rdb, userCacheTTL, repo, "users")
}

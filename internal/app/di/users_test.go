package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"voicechat_backend/internal/feature/users/domain/entity"
	"voicechat_backend/internal/platform/cache"
)

// TestNewUserRepository_FallsBackWithoutRedis はRedisに到達できない場合に
// キャッシュなしのリポジトリへフォールバックし、それがDBに対して動作することを検証します。
func TestNewUserRepository_FallsBackWithoutRedis(t *testing.T) {
	// Port 0 is never dialable, so the ping fails immediately.
	t.Setenv("REDIS_HOST", "127.0.0.1")
	t.Setenv("REDIS_PORT", "0")
	t.Setenv("REDIS_PASSWORD", "")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.User{}))

	repo := NewUserRepository(db)
	require.NotNil(t, repo)

	if _, ok := repo.(*cache.CachingUserRepository); ok {
		t.Fatal("expected the uncached repository when Redis is unreachable")
	}

	u := &entity.User{Username: "alice", Email: "alice@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(context.Background(), u))

	got, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "alice", got.Username)
}

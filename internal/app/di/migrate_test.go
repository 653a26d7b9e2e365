package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authadapters "internship_backend/internal/feature/auth/adapters"
	"internship_backend/internal/platform/config"
	"internship_backend/internal/platform/db"
	"internship_backend/internal/platform/session"
	"internship_backend/internal/shared/ratelimiter"
	"internship_backend/internal/shared/role"
)

func TestMigrate(t *testing.T) {
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, gdb))
	// 2回目も成功する
	require.NoError(t, Migrate(ctx, gdb))

	for _, table := range []string{"users", "roles", "sessions", "companies", "colleges", "students", "internships", "applications", "audit_events"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}
	roles, err := authadapters.NewRoleGorm(gdb).List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, role.All(), roles)
}

func TestNewSessionRepository_FallsBackToSQL(t *testing.T) {
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	repo := NewSessionRepository(nil, gdb)
	require.NotNil(t, repo)
	_, isRedis := repo.(*session.SessionRedis)
	assert.False(t, isRedis)
}

func TestNewLoginLimiter(t *testing.T) {
	assert.Nil(t, NewLoginLimiter(nil, config.RateLimitSettings{}))

	l := NewLoginLimiter(nil, config.RateLimitSettings{LoginMax: 2, LoginWindow: time.Minute})
	_, isMemory := l.(*ratelimiter.MemoryLimiter)
	assert.True(t, isMemory)
}

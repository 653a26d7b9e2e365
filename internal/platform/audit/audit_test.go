package audit

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"internship_backend/internal/platform/config"
	"internship_backend/internal/platform/logging"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Event{}))
	return db
}

func TestGormRecorder_Record(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	db := setupDB(t)
	rec := NewGormRecorder(db, logging.New(&buf, config.LogSettings{Format: "text"}))
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	rec.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Second) }

	ctx := logging.WithRequestID(context.Background(), "req-9")
	require.NoError(t, rec.Record(ctx, Event{Type: EventLockout, Actor: "system", Target: "user:1", Outcome: OutcomeFailure}))
	require.NoError(t, rec.Record(context.Background(), Event{Type: EventUnlock, Actor: "cli", Target: "user:1", Outcome: OutcomeSuccess}))
	require.NoError(t, rec.Record(context.Background(), Event{Type: EventRolesSeeded, Actor: "cli", Outcome: OutcomeSuccess}))

	events, err := rec.Recent(context.Background(), "user:1", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventUnlock, events[0].Type, "newest first")
	assert.Equal(t, EventLockout, events[1].Type)
	assert.Equal(t, "req-9", events[1].RequestID)

	all, err := rec.Recent(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	assert.Contains(t, buf.String(), "level=WARN msg=audit type=auth.lockout")
}

func TestGormRecorder_InsertFailure(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// テーブル未作成
	rec := NewGormRecorder(db, nil)

	err = rec.Record(context.Background(), Event{Type: EventAdminAction, Actor: "cli", Outcome: OutcomeSuccess})
	assert.Error(t, err)
}

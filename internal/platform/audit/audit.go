// Package audit records security relevant events (lockouts, admin actions)
// in the audit_events table and mirrors them to the structured log.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"internship_backend/internal/platform/logging"
)

// EventType categorizes audit events.
type EventType string

const (
	EventLoginSuccess        EventType = "auth.success"
	EventLoginFailure        EventType = "auth.failure"
	EventLockout             EventType = "auth.lockout"
	EventUnlock              EventType = "auth.unlock"
	EventEmailVerified       EventType = "auth.email_verified"
	EventPasswordReset       EventType = "user.password_reset"
	EventUserCreated         EventType = "user.created"
	EventRolesSeeded         EventType = "admin.roles_seeded"
	EventApplicationsDeduped EventType = "admin.applications_deduped"
	EventAdminAction         EventType = "admin.action"
)

// Outcome indicates whether an action succeeded.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one audit record.
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      EventType `gorm:"size:64;index;not null" json:"type"`
	Actor     string    `gorm:"size:255;not null" json:"actor"`
	Target    string    `gorm:"size:255" json:"target,omitempty"`
	Outcome   Outcome   `gorm:"size:16;not null" json:"outcome"`
	Detail    string    `gorm:"type:text" json:"detail,omitempty"`
	RequestID string    `gorm:"size:64" json:"requestId,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (Event) TableName() string { return "audit_events" }

// Recorder persists audit events.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// GormRecorder writes events with gorm and logs them.
type GormRecorder struct {
	db  *gorm.DB
	log *slog.Logger
	now func() time.Time
}

func NewGormRecorder(db *gorm.DB, log *slog.Logger) *GormRecorder {
	if log == nil {
		log = slog.Default()
	}
	return &GormRecorder{db: db, log: log, now: time.Now}
}

var _ Recorder = (*GormRecorder)(nil)

// Record stores e. A failed insert is returned but the event is still logged.
func (r *GormRecorder) Record(ctx context.Context, e Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}
	if e.RequestID == "" {
		e.RequestID = logging.RequestID(ctx)
	}

	level := slog.LevelInfo
	if e.Outcome == OutcomeFailure || e.Type == EventLockout {
		level = slog.LevelWarn
	}
	r.log.Log(ctx, level, "audit",
		"type", e.Type,
		"actor", e.Actor,
		"target", e.Target,
		"outcome", e.Outcome,
		"detail", e.Detail,
	)

	if err := r.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Recent returns the newest events first, optionally filtered by target.
func (r *GormRecorder) Recent(ctx context.Context, target string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit)
	if target != "" {
		q = q.Where("target = ?", target)
	}
	var out []Event
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Package usecase implements the operator commands run by cmd/admin.
// Every command writes an audit event, successful or not.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	authentity "internship_backend/internal/feature/auth/domain/entity"
	"internship_backend/internal/platform/audit"
)

type RoleSeeder interface {
	Seed(ctx context.Context) (int64, error)
}

// AccountStore is the subset of the user repository the operator needs.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*authentity.User, error)
	ResetLoginFailures(ctx context.Context, id uint) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id uint) error
}

type SessionStore interface {
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ApplicationDeduper interface {
	DeleteDuplicates(ctx context.Context, dryRun bool) (int64, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Event) error
}

// IdentityInvalidator drops cached identities after account changes.
type IdentityInvalidator interface {
	Invalidate(ctx context.Context, userID uint) error
}

// LockoutStatus is what lockout-status prints.
type LockoutStatus struct {
	Email               string
	FailedLoginAttempts int
	LockoutUntil        *time.Time
	Locked              bool
	EmailVerified       bool
}

type adminUsecase struct {
	actor        string
	roles        RoleSeeder
	accounts     AccountStore
	sessions     SessionStore
	applications ApplicationDeduper
	audit        AuditRecorder
	identities   IdentityInvalidator
	now          func() time.Time
	cost         int
}

// NewAdminUsecase builds the operator usecase. actor names who runs the
// commands in audit events, e.g. "cli:alice".
func NewAdminUsecase(actor string, roles RoleSeeder, accounts AccountStore, sessions SessionStore,
	applications ApplicationDeduper, rec AuditRecorder, identities IdentityInvalidator) *adminUsecase {
	return &adminUsecase{
		actor:        actor,
		roles:        roles,
		accounts:     accounts,
		sessions:     sessions,
		applications: applications,
		audit:        rec,
		identities:   identities,
		now:          time.Now,
		cost:         bcrypt.DefaultCost,
	}
}

func (u *adminUsecase) record(ctx context.Context, t audit.EventType, target string, err error, detail string) {
	e := audit.Event{Type: t, Actor: u.actor, Target: target, Outcome: audit.OutcomeSuccess, Detail: detail}
	if err != nil {
		e.Outcome = audit.OutcomeFailure
		e.Detail = err.Error()
	}
	// 監査の失敗は GormRecorder がログに残す
	_ = u.audit.Record(ctx, e)
}

func (u *adminUsecase) account(ctx context.Context, email string) (*authentity.User, error) {
	return u.accounts.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (u *adminUsecase) invalidate(ctx context.Context, userID uint) {
	if u.identities != nil {
		_ = u.identities.Invalidate(ctx, userID)
	}
}

// SeedRoles inserts the fixed roles. Running it twice is harmless.
func (u *adminUsecase) SeedRoles(ctx context.Context) (int64, error) {
	n, err := u.roles.Seed(ctx)
	u.record(ctx, audit.EventRolesSeeded, "roles", err, fmt.Sprintf("inserted=%d", n))
	return n, err
}

func (u *adminUsecase) LockoutStatus(ctx context.Context, email string) (*LockoutStatus, error) {
	user, err := u.account(ctx, email)
	u.record(ctx, audit.EventAdminAction, email, err, "lockout-status")
	if err != nil {
		return nil, err
	}
	return &LockoutStatus{
		Email:               user.Email,
		FailedLoginAttempts: user.FailedLoginAttempts,
		LockoutUntil:        user.LockoutUntil,
		Locked:              user.IsLocked(u.now()),
		EmailVerified:       user.EmailVerified,
	}, nil
}

// Unlock clears the failure counter and any lockout.
func (u *adminUsecase) Unlock(ctx context.Context, email string) error {
	user, err := u.account(ctx, email)
	if err == nil {
		err = u.accounts.ResetLoginFailures(ctx, user.ID)
	}
	u.record(ctx, audit.EventUnlock, email, err, "")
	if err != nil {
		return err
	}
	u.invalidate(ctx, user.ID)
	return nil
}

// ResetPassword sets a new password and signs the user out everywhere.
// The lockout is lifted as well.
func (u *adminUsecase) ResetPassword(ctx context.Context, email, password string) error {
	if len(password) < 8 || len(password) > 72 {
		return ErrInvalidPassword
	}
	user, err := u.account(ctx, email)
	if err == nil {
		err = u.resetPassword(ctx, user.ID, password)
	}
	u.record(ctx, audit.EventPasswordReset, email, err, "")
	if err != nil {
		return err
	}
	u.invalidate(ctx, user.ID)
	return nil
}

func (u *adminUsecase) resetPassword(ctx context.Context, userID uint, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := u.accounts.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	if err := u.accounts.ResetLoginFailures(ctx, userID); err != nil {
		return err
	}
	if err := u.sessions.RevokeAllByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// VerifyEmail marks the account verified without the emailed token.
func (u *adminUsecase) VerifyEmail(ctx context.Context, email string) error {
	user, err := u.account(ctx, email)
	if err == nil && !user.EmailVerified {
		err = u.accounts.MarkEmailVerified(ctx, user.ID)
	}
	u.record(ctx, audit.EventEmailVerified, email, err, "by operator")
	if err != nil {
		return err
	}
	u.invalidate(ctx, user.ID)
	return nil
}

// DedupeApplications removes repeated (internship, student) applications,
// keeping the oldest. dryRun only counts.
func (u *adminUsecase) DedupeApplications(ctx context.Context, dryRun bool) (int64, error) {
	n, err := u.applications.DeleteDuplicates(ctx, dryRun)
	u.record(ctx, audit.EventApplicationsDeduped, "applications", err, fmt.Sprintf("count=%d dry_run=%t", n, dryRun))
	return n, err
}

// PurgeSessions deletes refresh sessions that have expired.
func (u *adminUsecase) PurgeSessions(ctx context.Context) (int64, error) {
	n, err := u.sessions.DeleteExpired(ctx, u.now())
	u.record(ctx, audit.EventAdminAction, "sessions", err, fmt.Sprintf("purged=%d", n))
	return n, err
}

// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"time"

	"internship_backend/internal/feature/auth/domain/entity"
	"internship_backend/internal/shared/role"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID                  uint       `gorm:"primaryKey"`
	Name                string     `gorm:"size:255;not null"`
	Email               string     `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash        string     `gorm:"size:255;not null"`
	RoleID              uint       `gorm:"index;not null"`
	EmailVerified       bool       `gorm:"not null;default:false"`
	FailedLoginAttempts int        `gorm:"not null;default:0"`
	LockoutUntil        *time.Time `gorm:"index"`
	// NULL のときは未発行。空文字だと一意制約に引っかかる
	VerificationTokenHash      *string `gorm:"uniqueIndex;size:64"`
	VerificationTokenExpiresAt *time.Time
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() *entity.User {
	u := &entity.User{
		ID:                         m.ID,
		Name:                       m.Name,
		Email:                      m.Email,
		PasswordHash:               m.PasswordHash,
		Role:                       role.Role(m.RoleID),
		EmailVerified:              m.EmailVerified,
		FailedLoginAttempts:        m.FailedLoginAttempts,
		LockoutUntil:               m.LockoutUntil,
		VerificationTokenExpiresAt: m.VerificationTokenExpiresAt,
		CreatedAt:                  m.CreatedAt,
		UpdatedAt:                  m.UpdatedAt,
	}
	if m.VerificationTokenHash != nil {
		u.VerificationTokenHash = *m.VerificationTokenHash
	}
	return u
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u *entity.User) *UserModel {
	m := &UserModel{
		ID:                         u.ID,
		Name:                       u.Name,
		Email:                      u.Email,
		PasswordHash:               u.PasswordHash,
		RoleID:                     uint(u.Role),
		EmailVerified:              u.EmailVerified,
		FailedLoginAttempts:        u.FailedLoginAttempts,
		LockoutUntil:               u.LockoutUntil,
		VerificationTokenExpiresAt: u.VerificationTokenExpiresAt,
		CreatedAt:                  u.CreatedAt,
		UpdatedAt:                  u.UpdatedAt,
	}
	if u.VerificationTokenHash != "" {
		h := u.VerificationTokenHash
		m.VerificationTokenHash = &h
	}
	return m
}

// RoleModel is the roles lookup table. IDs are fixed, see package role.
type RoleModel struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"uniqueIndex;size:32;not null"`
}

func (RoleModel) TableName() string {
	return "roles"
}

// SessionModel is the GORM model for the sessions table.
type SessionModel struct {
	ID        string     `gorm:"primaryKey;size:64"`
	UserID    uint       `gorm:"index;not null"`
	UserAgent string     `gorm:"size:512"`
	IPAddress string     `gorm:"size:45"` // IPv6 max length
	CreatedAt time.Time  `gorm:"not null"`
	ExpiresAt time.Time  `gorm:"index;not null"`
	RevokedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}

// ToEntity converts the GORM model to a domain entity.
func (m *SessionModel) ToEntity() *entity.Session {
	return &entity.Session{
		ID:        m.ID,
		UserID:    m.UserID,
		UserAgent: m.UserAgent,
		IPAddress: m.IPAddress,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		RevokedAt: m.RevokedAt,
	}
}

// SessionModelFromEntity converts a domain entity to a GORM model.
func SessionModelFromEntity(s *entity.Session) *SessionModel {
	return &SessionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		RevokedAt: s.RevokedAt,
	}
}

// Models lists the auth tables for AutoMigrate.
func Models() []any {
	return []any{&RoleModel{}, &UserModel{}, &SessionModel{}}
}

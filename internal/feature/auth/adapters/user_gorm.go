package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"internship_backend/internal/feature/auth/domain/entity"
	"internship_backend/internal/feature/auth/usecase"
	collegeadapters "internship_backend/internal/feature/college/adapters"
	companyadapters "internship_backend/internal/feature/company/adapters"
	"internship_backend/internal/platform/db"
	"internship_backend/internal/shared/role"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
type userGorm struct {
	db *gorm.DB
}

var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// CreateAccount inserts the user and its organization row in one transaction.
// 重複メールアドレスは usecase.ErrEmailAlreadyExists を返します。
func (r *userGorm) CreateAccount(ctx context.Context, u *entity.User, org entity.Organization) error {
	if u == nil {
		return errors.New("user is nil")
	}
	m := UserModelFromEntity(u)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return usecase.ErrEmailAlreadyExists
			}
			return err
		}
		switch u.Role {
		case role.Company:
			c := &companyadapters.CompanyModel{UserID: m.ID, CompanyName: org.CompanyName}
			if err := tx.Create(c).Error; err != nil {
				return fmt.Errorf("create company: %w", err)
			}
		case role.Admin:
			c := &collegeadapters.CollegeModel{AdminUserID: m.ID, Name: org.CollegeName}
			if err := tx.Create(c).Error; err != nil {
				return fmt.Errorf("create college: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	*u = *m.ToEntity()
	return nil
}

func (r *userGorm) first(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userGorm) FindByVerificationTokenHash(ctx context.Context, hash string) (*entity.User, error) {
	if hash == "" {
		return nil, usecase.ErrUserNotFound
	}
	return r.first(ctx, "verification_token_hash = ?", hash)
}

func (r *userGorm) update(ctx context.Context, id uint, values map[string]any) error {
	res := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

func (r *userGorm) SetVerificationToken(ctx context.Context, id uint, hash string, expiresAt time.Time) error {
	return r.update(ctx, id, map[string]any{
		"verification_token_hash":       hash,
		"verification_token_expires_at": expiresAt,
	})
}

func (r *userGorm) MarkEmailVerified(ctx context.Context, id uint) error {
	return r.update(ctx, id, map[string]any{
		"email_verified":                true,
		"verification_token_hash":       nil,
		"verification_token_expires_at": nil,
	})
}

// RecordFailedLogin increments the counter and, once it reaches maxAttempts,
// locks the account and resets the counter. Both statements run in one
// transaction; the row lock taken by the increment serializes concurrent
// failures so none is lost and only one of them locks.
func (r *userGorm) RecordFailedLogin(ctx context.Context, id uint, maxAttempts int, lockUntil time.Time) (bool, error) {
	locked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&UserModel{}).Where("id = ?", id).
			UpdateColumn("failed_login_attempts", gorm.Expr("failed_login_attempts + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrUserNotFound
		}

		res = tx.Model(&UserModel{}).
			Where("id = ? AND failed_login_attempts >= ?", id, maxAttempts).
			UpdateColumns(map[string]any{
				"lockout_until":         lockUntil,
				"failed_login_attempts": 0,
			})
		if res.Error != nil {
			return res.Error
		}
		locked = res.RowsAffected > 0
		return nil
	})
	return locked, err
}

func (r *userGorm) ResetLoginFailures(ctx context.Context, id uint) error {
	return r.update(ctx, id, map[string]any{
		"failed_login_attempts": 0,
		"lockout_until":         nil,
	})
}

// UpdatePassword stores a new bcrypt hash.
func (r *userGorm) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return r.update(ctx, id, map[string]any{"password_hash": passwordHash})
}

package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	jwtmw "internship_backend/internal/platform/jwt"
)

// identityGorm resolves token subjects against the users table.
type identityGorm struct {
	db *gorm.DB
}

var _ jwtmw.IdentityResolver = (*identityGorm)(nil)

func NewIdentityGorm(db *gorm.DB) *identityGorm {
	return &identityGorm{db: db}
}

func (r *identityGorm) ResolveIdentity(ctx context.Context, userID uint) (*jwtmw.Identity, error) {
	var m UserModel
	err := r.db.WithContext(ctx).
		Select("id", "email", "name", "role_id", "email_verified").
		Where("id = ?", userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jwtmw.ErrIdentityNotFound
		}
		return nil, err
	}
	u := m.ToEntity()
	return &jwtmw.Identity{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
	}, nil
}

// Package adapters provides the GORM repositories for colleges.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"internship_backend/internal/feature/college/domain/entity"
	"internship_backend/internal/feature/college/usecase"
	"internship_backend/internal/platform/db"
)

type collegeGorm struct {
	db *gorm.DB
}

var _ usecase.CollegeRepository = (*collegeGorm)(nil)

func NewCollegeGorm(db *gorm.DB) *collegeGorm {
	return &collegeGorm{db: db}
}

func (r *collegeGorm) FindByAdminUserID(ctx context.Context, adminUserID uint) (*entity.College, error) {
	var m CollegeModel
	if err := r.db.WithContext(ctx).Where("admin_user_id = ?", adminUserID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCollegeNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Save inserts when ID is zero and updates every column otherwise. A first
// save racing another one for the same admin_user_id lands on the existing row.
func (r *collegeGorm) Save(ctx context.Context, c *entity.College) error {
	m := CollegeModelFromEntity(c)
	tx := r.db.WithContext(ctx)
	if m.ID != 0 {
		if err := tx.Save(m).Error; err != nil {
			return err
		}
		*c = *m.ToEntity()
		return nil
	}

	upsert := db.UpsertOn("colleges", "admin_user_id",
		[]string{"name", "address", "website", "contact_email", "updated_at"},
		"id_proof_file", "auth_letter_file")
	if err := tx.Clauses(upsert).Create(m).Error; err != nil {
		return err
	}
	// 競合時は既存行が更新されるので読み直す
	var saved CollegeModel
	if err := tx.Where("admin_user_id = ?", m.AdminUserID).First(&saved).Error; err != nil {
		return err
	}
	*c = *saved.ToEntity()
	return nil
}

func (r *collegeGorm) List(ctx context.Context) ([]entity.College, error) {
	var ms []CollegeModel
	if err := r.db.WithContext(ctx).Order("name, id").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]entity.College, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToEntity())
	}
	return out, nil
}

// Exists is used by the student feature before linking.
func (r *collegeGorm) Exists(ctx context.Context, collegeID uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&CollegeModel{}).Where("id = ?", collegeID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

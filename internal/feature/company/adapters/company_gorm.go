// Package adapters provides the GORM repository for companies.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"internship_backend/internal/feature/company/domain/entity"
	"internship_backend/internal/feature/company/usecase"
	"internship_backend/internal/platform/db"
)

type companyGorm struct {
	db *gorm.DB
}

var _ usecase.CompanyRepository = (*companyGorm)(nil)

func NewCompanyGorm(db *gorm.DB) *companyGorm {
	return &companyGorm{db: db}
}

func (r *companyGorm) FindByUserID(ctx context.Context, userID uint) (*entity.Company, error) {
	var m CompanyModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCompanyNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Save inserts when ID is zero and updates every column otherwise. A first
// save racing another one for the same user_id lands on the existing row.
func (r *companyGorm) Save(ctx context.Context, c *entity.Company) error {
	m := CompanyModelFromEntity(c)
	tx := r.db.WithContext(ctx)
	if m.ID != 0 {
		if err := tx.Save(m).Error; err != nil {
			return err
		}
		*c = *m.ToEntity()
		return nil
	}

	upsert := db.UpsertOn("companies", "user_id",
		[]string{"company_name", "industry", "website", "description", "updated_at"},
		"logo_file", "auth_letter_file")
	if err := tx.Clauses(upsert).Create(m).Error; err != nil {
		return err
	}
	// 競合時は既存行が更新されるので読み直す
	var saved CompanyModel
	if err := tx.Where("user_id = ?", m.UserID).First(&saved).Error; err != nil {
		return err
	}
	*c = *saved.ToEntity()
	return nil
}

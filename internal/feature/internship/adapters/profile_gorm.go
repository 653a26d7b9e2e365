package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	companyadapters "internship_backend/internal/feature/company/adapters"
	"internship_backend/internal/feature/internship/usecase"
	studentadapters "internship_backend/internal/feature/student/adapters"
)

type profileGorm struct {
	db *gorm.DB
}

var _ usecase.ProfileResolver = (*profileGorm)(nil)

func NewProfileGorm(db *gorm.DB) *profileGorm {
	return &profileGorm{db: db}
}

func (r *profileGorm) CompanyIDByUser(ctx context.Context, userID uint) (uint, error) {
	var m companyadapters.CompanyModel
	err := r.db.WithContext(ctx).Select("id").Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, usecase.ErrCompanyProfileNeeded
	}
	return m.ID, err
}

func (r *profileGorm) StudentIDByUser(ctx context.Context, userID uint) (uint, error) {
	var m studentadapters.StudentModel
	err := r.db.WithContext(ctx).Select("id").Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, usecase.ErrStudentProfileNeeded
	}
	return m.ID, err
}

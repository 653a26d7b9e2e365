// Package adapters provides the GORM repository for student profiles.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"internship_backend/internal/feature/student/domain/entity"
	"internship_backend/internal/feature/student/usecase"
	"internship_backend/internal/platform/db"
)

type studentGorm struct {
	db *gorm.DB
}

var _ usecase.StudentRepository = (*studentGorm)(nil)

func NewStudentGorm(db *gorm.DB) *studentGorm {
	return &studentGorm{db: db}
}

func (r *studentGorm) FindByUserID(ctx context.Context, userID uint) (*entity.Student, error) {
	var m StudentModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrStudentNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Save inserts when ID is zero and updates every column otherwise. A first
// save racing another one for the same user_id lands on the existing row.
func (r *studentGorm) Save(ctx context.Context, s *entity.Student) error {
	m := StudentModelFromEntity(s)
	tx := r.db.WithContext(ctx)
	if m.ID != 0 {
		if err := tx.Save(m).Error; err != nil {
			return err
		}
		*s = *m.ToEntity()
		return nil
	}

	upsert := db.UpsertOn("students", "user_id",
		[]string{"full_name", "phone", "course", "graduation_year", "cgpa", "updated_at"},
		"photo_file", "signature_file", "resume_file")
	if err := tx.Clauses(upsert).Create(m).Error; err != nil {
		return err
	}
	// 競合時は既存行が更新されるので読み直す
	var saved StudentModel
	if err := tx.Where("user_id = ?", m.UserID).First(&saved).Error; err != nil {
		return err
	}
	*s = *saved.ToEntity()
	return nil
}

func (r *studentGorm) SetCollege(ctx context.Context, userID, collegeID uint) error {
	res := r.db.WithContext(ctx).Model(&StudentModel{}).
		Where("user_id = ?", userID).
		Update("college_id", collegeID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrStudentNotFound
	}
	return nil
}

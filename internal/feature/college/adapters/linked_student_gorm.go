package adapters

import (
	"context"

	"gorm.io/gorm"

	"internship_backend/internal/feature/college/domain/entity"
	"internship_backend/internal/feature/college/usecase"
	studentadapters "internship_backend/internal/feature/student/adapters"
)

type linkedStudentGorm struct {
	db *gorm.DB
}

var _ usecase.StudentLister = (*linkedStudentGorm)(nil)

func NewLinkedStudentGorm(db *gorm.DB) *linkedStudentGorm {
	return &linkedStudentGorm{db: db}
}

func (r *linkedStudentGorm) ListByCollegeID(ctx context.Context, collegeID uint) ([]entity.LinkedStudent, error) {
	var ms []studentadapters.StudentModel
	if err := r.db.WithContext(ctx).
		Where("college_id = ?", collegeID).
		Order("full_name, id").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]entity.LinkedStudent, 0, len(ms))
	for _, m := range ms {
		out = append(out, entity.LinkedStudent{
			ID:             m.ID,
			UserID:         m.UserID,
			FullName:       m.FullName,
			Course:         m.Course,
			GraduationYear: m.GraduationYear,
			CGPA:           m.CGPA,
		})
	}
	return out, nil
}

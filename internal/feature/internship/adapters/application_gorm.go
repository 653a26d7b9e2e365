package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"internship_backend/internal/feature/internship/domain/entity"
	"internship_backend/internal/feature/internship/usecase"
	studentadapters "internship_backend/internal/feature/student/adapters"
	"internship_backend/internal/platform/db"
)

type applicationGorm struct {
	db *gorm.DB
}

var _ usecase.ApplicationRepository = (*applicationGorm)(nil)

func NewApplicationGorm(db *gorm.DB) *applicationGorm {
	return &applicationGorm{db: db}
}

func (r *applicationGorm) Create(ctx context.Context, a *entity.Application) error {
	m := ApplicationModelFromEntity(a)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return usecase.ErrAlreadyApplied
		}
		return err
	}
	a.ID = m.ID
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *applicationGorm) FindByID(ctx context.Context, id uint) (*entity.Application, error) {
	var m ApplicationModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrApplicationNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

func (r *applicationGorm) list(ctx context.Context, column string, id uint) ([]entity.Application, error) {
	var ms []ApplicationModel
	if err := r.db.WithContext(ctx).Where(column+" = ?", id).Order("created_at DESC, id DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Application, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToEntity())
	}
	return out, nil
}

// ListByStudent returns the student's applications with internship titles.
func (r *applicationGorm) ListByStudent(ctx context.Context, studentID uint) ([]entity.Application, error) {
	apps, err := r.list(ctx, "student_id", studentID)
	if err != nil || len(apps) == 0 {
		return apps, err
	}
	ids := make([]uint, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.InternshipID)
	}
	var internships []InternshipModel
	if err := r.db.WithContext(ctx).Select("id", "title").Where("id IN ?", ids).Find(&internships).Error; err != nil {
		return nil, err
	}
	titles := make(map[uint]string, len(internships))
	for _, it := range internships {
		titles[it.ID] = it.Title
	}
	for i := range apps {
		apps[i].InternshipTitle = titles[apps[i].InternshipID]
	}
	return apps, nil
}

// ListByInternship returns the applications with applicant names.
func (r *applicationGorm) ListByInternship(ctx context.Context, internshipID uint) ([]entity.Application, error) {
	apps, err := r.list(ctx, "internship_id", internshipID)
	if err != nil || len(apps) == 0 {
		return apps, err
	}
	ids := make([]uint, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.StudentID)
	}
	var students []studentadapters.StudentModel
	if err := r.db.WithContext(ctx).Select("id", "full_name").Where("id IN ?", ids).Find(&students).Error; err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(students))
	for _, s := range students {
		names[s.ID] = s.FullName
	}
	for i := range apps {
		apps[i].StudentName = names[apps[i].StudentID]
	}
	return apps, nil
}

func (r *applicationGorm) UpdateStatus(ctx context.Context, id uint, from, to entity.ApplicationStatus) error {
	res := r.db.WithContext(ctx).Model(&ApplicationModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrInvalidTransition
	}
	return nil
}

// DeleteDuplicates removes every application that repeats an earlier
// (internship, student) pair, keeping the lowest id. With dryRun it only
// counts them.
func (r *applicationGorm) DeleteDuplicates(ctx context.Context, dryRun bool) (int64, error) {
	keep := r.db.Model(&ApplicationModel{}).Select("MIN(id)").Group("internship_id, student_id")
	dups := r.db.WithContext(ctx).Where("id NOT IN (?)", keep)

	if dryRun {
		var n int64
		err := dups.Model(&ApplicationModel{}).Count(&n).Error
		return n, err
	}
	res := dups.Delete(&ApplicationModel{})
	return res.RowsAffected, res.Error
}

// Package adapters provides the GORM repositories for internships and
// applications.
package adapters

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	companyadapters "internship_backend/internal/feature/company/adapters"
	"internship_backend/internal/feature/internship/domain/entity"
	"internship_backend/internal/feature/internship/usecase"
)

type internshipGorm struct {
	db *gorm.DB
}

var _ usecase.InternshipRepository = (*internshipGorm)(nil)

func NewInternshipGorm(db *gorm.DB) *internshipGorm {
	return &internshipGorm{db: db}
}

func (r *internshipGorm) Create(ctx context.Context, in *entity.Internship) error {
	m := InternshipModelFromEntity(in)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	name := in.CompanyName
	*in = *m.ToEntity()
	in.CompanyName = name
	return nil
}

func (r *internshipGorm) FindByID(ctx context.Context, id uint) (*entity.Internship, error) {
	var m InternshipModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrInternshipNotFound
		}
		return nil, err
	}
	out := []entity.Internship{*m.ToEntity()}
	if err := r.fillCompanyNames(ctx, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// List returns one page ordered newest first, plus the total match count.
func (r *internshipGorm) List(ctx context.Context, f usecase.ListFilter) ([]entity.Internship, int64, error) {
	q := r.db.WithContext(ctx).Model(&InternshipModel{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.CompanyID != 0 {
		q = q.Where("company_id = ?", f.CompanyID)
	}
	if f.Location != "" {
		q = q.Where(`LOWER(location) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.Location))+"%")
	}
	if f.Query != "" {
		like := "%" + escapeLike(strings.ToLower(f.Query)) + "%"
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, like, like)
	}

	// Count と Find で同じ条件を使い回す
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []InternshipModel
	if err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]entity.Internship, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToEntity())
	}
	if err := r.fillCompanyNames(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// fillCompanyNames sets CompanyName with one query for the whole page.
func (r *internshipGorm) fillCompanyNames(ctx context.Context, items []entity.Internship) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.CompanyID)
	}
	var companies []companyadapters.CompanyModel
	if err := r.db.WithContext(ctx).Select("id", "company_name").Where("id IN ?", ids).Find(&companies).Error; err != nil {
		return err
	}
	names := make(map[uint]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.CompanyName
	}
	for i := range items {
		items[i].CompanyName = names[items[i].CompanyID]
	}
	return nil
}

func (r *internshipGorm) Update(ctx context.Context, in *entity.Internship) error {
	m := InternshipModelFromEntity(in)
	res := r.db.WithContext(ctx).Model(&InternshipModel{ID: in.ID}).Select(
		"title", "description", "location", "stipend", "duration_weeks", "openings", "deadline", "status",
	).Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrInternshipNotFound
	}
	return nil
}

func (r *internshipGorm) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("internship_id = ?", id).Delete(&ApplicationModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&InternshipModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrInternshipNotFound
		}
		return nil
	})
}

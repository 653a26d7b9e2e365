package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"internship_backend/internal/shared/role"
)

// roleGorm maintains the roles lookup table.
type roleGorm struct {
	db *gorm.DB
}

func NewRoleGorm(db *gorm.DB) *roleGorm {
	return &roleGorm{db: db}
}

// Seed inserts every known role. Existing rows are left alone, so running it
// twice is harmless. Returns the number of rows inserted.
func (r *roleGorm) Seed(ctx context.Context) (int64, error) {
	rows := make([]RoleModel, 0, len(role.All()))
	for _, ro := range role.All() {
		rows = append(rows, RoleModel{ID: uint(ro), Name: ro.String()})
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	return res.RowsAffected, res.Error
}

// List returns the seeded roles ordered by ID.
func (r *roleGorm) List(ctx context.Context) ([]role.Role, error) {
	var rows []RoleModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]role.Role, 0, len(rows))
	for _, m := range rows {
		if ro, err := role.FromID(m.ID); err == nil {
			out = append(out, ro)
		}
	}
	return out, nil
}

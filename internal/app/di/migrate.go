package di

import (
	"context"

	"gorm.io/gorm"

	authadapters "internship_backend/internal/feature/auth/adapters"
	collegeadapters "internship_backend/internal/feature/college/adapters"
	companyadapters "internship_backend/internal/feature/company/adapters"
	internshipadapters "internship_backend/internal/feature/internship/adapters"
	studentadapters "internship_backend/internal/feature/student/adapters"
	"internship_backend/internal/platform/audit"
	"internship_backend/internal/platform/db"
)

// Migrate creates or updates every table and seeds the fixed roles.
func Migrate(ctx context.Context, gdb *gorm.DB) error {
	models := append(authadapters.Models(),
		&companyadapters.CompanyModel{},
		&collegeadapters.CollegeModel{},
		&studentadapters.StudentModel{},
		&audit.Event{},
	)
	if err := db.Migrate(gdb, models...); err != nil {
		return err
	}
	if err := internshipadapters.Migrate(ctx, gdb); err != nil {
		return err
	}
	_, err := authadapters.NewRoleGorm(gdb).Seed(ctx)
	return err
}

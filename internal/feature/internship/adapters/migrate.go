package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"internship_backend/internal/platform/db"
)

const applicationPairIndex = "idx_applications_internship_student"

// Migrate creates the internship tables. Duplicate applications left by
// older schemas are removed first, otherwise the unique index cannot be built.
func Migrate(ctx context.Context, gdb *gorm.DB) error {
	m := gdb.Migrator()
	if m.HasTable(&ApplicationModel{}) && !m.HasIndex(&ApplicationModel{}, applicationPairIndex) {
		n, err := NewApplicationGorm(gdb).DeleteDuplicates(ctx, false)
		if err != nil {
			return fmt.Errorf("failed to remove duplicate applications: %w", err)
		}
		if n > 0 {
			slog.WarnContext(ctx, "removed duplicate applications before migration", "count", n)
		}
	}
	return db.Migrate(gdb, &InternshipModel{}, &ApplicationModel{})
}

package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	companyadapters "internship_backend/internal/feature/company/adapters"
	"internship_backend/internal/feature/internship/domain/entity"
	"internship_backend/internal/feature/internship/usecase"
	studentadapters "internship_backend/internal/feature/student/adapters"
	"internship_backend/internal/platform/db"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, &companyadapters.CompanyModel{}, &studentadapters.StudentModel{}))
	require.NoError(t, Migrate(context.Background(), gdb))

	require.NoError(t, gdb.Create(&[]companyadapters.CompanyModel{
		{ID: 1, UserID: 10, CompanyName: "Acme"},
		{ID: 2, UserID: 11, CompanyName: "Globex"},
	}).Error)
	require.NoError(t, gdb.Create(&[]studentadapters.StudentModel{
		{ID: 5, UserID: 20, FullName: "Asha"},
		{ID: 6, UserID: 21, FullName: "Ravi"},
	}).Error)
	return gdb
}

func TestInternshipGorm_CRUD(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewInternshipGorm(gdb)
	ctx := context.Background()

	deadline := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	it := &entity.Internship{CompanyID: 1, Title: "Go intern", Openings: 2, Deadline: &deadline, Status: entity.StatusOpen}
	require.NoError(t, repo.Create(ctx, it))
	assert.NotZero(t, it.ID)

	got, err := repo.FindByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.CompanyName)
	require.NotNil(t, got.Deadline)
	assert.True(t, deadline.Equal(*got.Deadline))

	got.Title = "Go backend intern"
	got.Deadline = nil
	got.Openings = 0
	got.Status = entity.StatusClosed
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.FindByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go backend intern", again.Title)
	assert.Nil(t, again.Deadline)
	assert.Equal(t, 0, again.Openings)
	assert.Equal(t, entity.StatusClosed, again.Status)

	assert.ErrorIs(t, repo.Update(ctx, &entity.Internship{ID: 999}), usecase.ErrInternshipNotFound)

	apps := NewApplicationGorm(gdb)
	require.NoError(t, apps.Create(ctx, &entity.Application{InternshipID: it.ID, StudentID: 5, Status: entity.ApplicationPending}))

	require.NoError(t, repo.Delete(ctx, it.ID))
	_, err = repo.FindByID(ctx, it.ID)
	assert.ErrorIs(t, err, usecase.ErrInternshipNotFound)
	var n int64
	require.NoError(t, gdb.Model(&ApplicationModel{}).Count(&n).Error)
	assert.Zero(t, n, "applications are deleted with the internship")
	assert.ErrorIs(t, repo.Delete(ctx, it.ID), usecase.ErrInternshipNotFound)
}

func TestInternshipGorm_List(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewInternshipGorm(gdb)
	ctx := context.Background()

	seed := []entity.Internship{
		{CompanyID: 1, Title: "Go intern", Location: "Chennai", Status: entity.StatusOpen},
		{CompanyID: 1, Title: "Data intern", Description: "SQL and Go", Location: "Bengaluru", Status: entity.StatusOpen},
		{CompanyID: 2, Title: "Design intern", Location: "Chennai", Status: entity.StatusClosed},
		{CompanyID: 2, Title: "100% remote", Location: "Remote", Status: entity.StatusOpen},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	tests := []struct {
		name      string
		filter    usecase.ListFilter
		wantTotal int64
		wantLen   int
	}{
		{name: "all", filter: usecase.ListFilter{Limit: 10}, wantTotal: 4, wantLen: 4},
		{name: "open only", filter: usecase.ListFilter{Status: entity.StatusOpen, Limit: 10}, wantTotal: 3, wantLen: 3},
		{name: "by company", filter: usecase.ListFilter{CompanyID: 2, Limit: 10}, wantTotal: 2, wantLen: 2},
		{name: "location is case-insensitive", filter: usecase.ListFilter{Location: "chennai", Limit: 10}, wantTotal: 2, wantLen: 2},
		{name: "query matches description", filter: usecase.ListFilter{Query: "go", Limit: 10}, wantTotal: 2, wantLen: 2},
		{name: "percent is literal", filter: usecase.ListFilter{Query: "100%", Limit: 10}, wantTotal: 1, wantLen: 1},
		{name: "paged", filter: usecase.ListFilter{Limit: 3, Offset: 3}, wantTotal: 4, wantLen: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Len(t, items, tt.wantLen)
			for _, it := range items {
				assert.NotEmpty(t, it.CompanyName)
			}
		})
	}
}

func TestApplicationGorm(t *testing.T) {
	gdb := setupTestDB(t)
	internships := NewInternshipGorm(gdb)
	repo := NewApplicationGorm(gdb)
	ctx := context.Background()

	it := &entity.Internship{CompanyID: 1, Title: "Go intern", Status: entity.StatusOpen}
	require.NoError(t, internships.Create(ctx, it))

	a := &entity.Application{InternshipID: it.ID, StudentID: 5, CoverLetter: "hi", Status: entity.ApplicationPending}
	require.NoError(t, repo.Create(ctx, a))
	assert.NotZero(t, a.ID)

	err := repo.Create(ctx, &entity.Application{InternshipID: it.ID, StudentID: 5, Status: entity.ApplicationPending})
	assert.ErrorIs(t, err, usecase.ErrAlreadyApplied)
	require.NoError(t, repo.Create(ctx, &entity.Application{InternshipID: it.ID, StudentID: 6, Status: entity.ApplicationPending}))

	mine, err := repo.ListByStudent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Go intern", mine[0].InternshipTitle)

	all, err := repo.ListByInternship(ctx, it.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.ElementsMatch(t, []string{"Asha", "Ravi"}, []string{all[0].StudentName, all[1].StudentName})

	require.NoError(t, repo.UpdateStatus(ctx, a.ID, entity.ApplicationPending, entity.ApplicationShortlisted))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, a.ID, entity.ApplicationPending, entity.ApplicationRejected), usecase.ErrInvalidTransition)

	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ApplicationShortlisted, got.Status)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, usecase.ErrApplicationNotFound)
}

// legacyApplication is the applications table before the pair was unique.
type legacyApplication struct {
	ID           uint   `gorm:"primaryKey"`
	InternshipID uint   `gorm:"not null"`
	StudentID    uint   `gorm:"not null"`
	Status       string `gorm:"size:16;not null;default:pending"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (legacyApplication) TableName() string { return "applications" }

func TestMigrate_RemovesDuplicateApplications(t *testing.T) {
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, &legacyApplication{}))
	require.NoError(t, gdb.Create(&[]legacyApplication{
		{ID: 1, InternshipID: 1, StudentID: 5, Status: "pending"},
		{ID: 2, InternshipID: 1, StudentID: 5, Status: "pending"},
		{ID: 3, InternshipID: 1, StudentID: 6, Status: "pending"},
		{ID: 4, InternshipID: 1, StudentID: 5, Status: "pending"},
	}).Error)

	n, err := NewApplicationGorm(gdb).DeleteDuplicates(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, Migrate(context.Background(), gdb))

	var ids []uint
	require.NoError(t, gdb.Model(&ApplicationModel{}).Order("id").Pluck("id", &ids).Error)
	assert.Equal(t, []uint{1, 3}, ids)
	assert.True(t, gdb.Migrator().HasIndex(&ApplicationModel{}, applicationPairIndex))
}

func TestProfileGorm(t *testing.T) {
	p := NewProfileGorm(setupTestDB(t))
	ctx := context.Background()

	id, err := p.CompanyIDByUser(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, uint(2), id)
	_, err = p.CompanyIDByUser(ctx, 20)
	assert.ErrorIs(t, err, usecase.ErrCompanyProfileNeeded)

	id, err = p.StudentIDByUser(ctx, 21)
	require.NoError(t, err)
	assert.Equal(t, uint(6), id)
	_, err = p.StudentIDByUser(ctx, 10)
	assert.ErrorIs(t, err, usecase.ErrStudentProfileNeeded)
}

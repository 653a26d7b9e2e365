package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"internship_backend/internal/feature/college/domain/entity"
	"internship_backend/internal/feature/college/usecase"
	studentadapters "internship_backend/internal/feature/student/adapters"
	"internship_backend/internal/platform/db"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, &CollegeModel{}, &studentadapters.StudentModel{}))
	return gdb
}

func TestCollegeGorm(t *testing.T) {
	repo := NewCollegeGorm(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.FindByAdminUserID(ctx, 8)
	assert.ErrorIs(t, err, usecase.ErrCollegeNotFound)

	b := &entity.College{AdminUserID: 8, Name: "Brindavan College"}
	a := &entity.College{AdminUserID: 9, Name: "Anna University"}
	require.NoError(t, repo.Save(ctx, b))
	require.NoError(t, repo.Save(ctx, a))

	ok, err := repo.Exists(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Exists(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Anna University", list[0].Name)

	b.Website = "https://brindavan.example"
	require.NoError(t, repo.Save(ctx, b))
	got, err := repo.FindByAdminUserID(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, "https://brindavan.example", got.Website)
}

func TestCollegeGorm_FirstSaveTwiceForSameAdmin(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewCollegeGorm(gdb)
	ctx := context.Background()

	first := &entity.College{AdminUserID: 8, Name: "Brindavan", IDProofFile: "idProof-1-abc.pdf"}
	require.NoError(t, repo.Save(ctx, first))

	second := &entity.College{AdminUserID: 8, Name: "Brindavan College", ContactEmail: "office@brindavan.example"}
	require.NoError(t, repo.Save(ctx, second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Brindavan College", second.Name)
	assert.Equal(t, "idProof-1-abc.pdf", second.IDProofFile)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLinkedStudentGorm(t *testing.T) {
	gdb := setupTestDB(t)
	ctx := context.Background()
	college := uint(3)
	other := uint(4)
	require.NoError(t, gdb.Create(&[]studentadapters.StudentModel{
		{UserID: 1, FullName: "Vikram", CollegeID: &college},
		{UserID: 2, FullName: "Asha", CollegeID: &college, CGPA: 9},
		{UserID: 3, FullName: "Ravi", CollegeID: &other},
		{UserID: 4, FullName: "Meena"},
	}).Error)

	got, err := NewLinkedStudentGorm(gdb).ListByCollegeID(ctx, college)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Asha", got[0].FullName)
	assert.Equal(t, 9.0, got[0].CGPA)
	assert.Equal(t, "Vikram", got[1].FullName)
}

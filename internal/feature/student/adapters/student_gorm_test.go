package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internship_backend/internal/feature/student/domain/entity"
	"internship_backend/internal/feature/student/usecase"
	"internship_backend/internal/platform/db"
)

func TestStudentGorm(t *testing.T) {
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, &StudentModel{}))
	repo := NewStudentGorm(gdb)
	ctx := context.Background()

	_, err = repo.FindByUserID(ctx, 3)
	assert.ErrorIs(t, err, usecase.ErrStudentNotFound)
	assert.ErrorIs(t, repo.SetCollege(ctx, 3, 1), usecase.ErrStudentNotFound)

	s := &entity.Student{UserID: 3, FullName: "Asha", CGPA: 9.1, GraduationYear: 2027}
	require.NoError(t, repo.Save(ctx, s))
	assert.NotZero(t, s.ID)

	require.NoError(t, repo.SetCollege(ctx, 3, 11))

	got, err := repo.FindByUserID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.FullName)
	assert.InDelta(t, 9.1, got.CGPA, 0.0001)
	require.NotNil(t, got.CollegeID)
	assert.Equal(t, uint(11), *got.CollegeID)

	// プロフィール更新で所属は消えない
	got.Phone = "+91 99999 00000"
	require.NoError(t, repo.Save(ctx, got))
	again, err := repo.FindByUserID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "+91 99999 00000", again.Phone)
	require.NotNil(t, again.CollegeID)
}

func TestStudentGorm_FirstSaveTwiceForSameUser(t *testing.T) {
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, &StudentModel{}))
	repo := NewStudentGorm(gdb)
	ctx := context.Background()

	first := &entity.Student{UserID: 3, FullName: "Asha", ResumeFile: "resume-1-abc.pdf"}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.SetCollege(ctx, 3, 11))

	second := &entity.Student{UserID: 3, FullName: "Asha Rao", Course: "CSE", PhotoFile: "photo-1-def.png"}
	require.NoError(t, repo.Save(ctx, second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Asha Rao", second.FullName)
	assert.Equal(t, "resume-1-abc.pdf", second.ResumeFile)
	assert.Equal(t, "photo-1-def.png", second.PhotoFile)
	require.NotNil(t, second.CollegeID, "college link survives")
	assert.Equal(t, uint(11), *second.CollegeID)

	var n int64
	require.NoError(t, gdb.Model(&StudentModel{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

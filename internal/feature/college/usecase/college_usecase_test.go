package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internship_backend/internal/feature/college/domain/entity"
)

type mockCollegeRepository struct {
	FindFunc func(adminUserID uint) (*entity.College, error)
	SaveFunc func(c *entity.College) error
	ListFunc func() ([]entity.College, error)
}

func (m *mockCollegeRepository) FindByAdminUserID(_ context.Context, adminUserID uint) (*entity.College, error) {
	if m.FindFunc != nil {
		return m.FindFunc(adminUserID)
	}
	return nil, ErrCollegeNotFound
}

func (m *mockCollegeRepository) Save(_ context.Context, c *entity.College) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(c)
	}
	if c.ID == 0 {
		c.ID = 1
	}
	return nil
}

func (m *mockCollegeRepository) List(context.Context) ([]entity.College, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return nil, nil
}

type studentListerFunc func(collegeID uint) ([]entity.LinkedStudent, error)

func (f studentListerFunc) ListByCollegeID(_ context.Context, collegeID uint) ([]entity.LinkedStudent, error) {
	return f(collegeID)
}

type removedFiles []string

func (r *removedFiles) Delete(_ context.Context, name string) error {
	*r = append(*r, name)
	return nil
}

func TestCollegeUsecase_UpdateProfile(t *testing.T) {
	t.Run("creates when missing", func(t *testing.T) {
		var removed removedFiles
		uc := NewCollegeUsecase(&mockCollegeRepository{}, nil, &removed)

		c, err := uc.UpdateProfile(context.Background(), 8, ProfileInput{Name: "IIT", IDProofFile: "idProof-1-a.pdf"})
		require.NoError(t, err)
		assert.Equal(t, uint(8), c.AdminUserID)
		assert.Equal(t, "idProof-1-a.pdf", c.IDProofFile)
		assert.Empty(t, removed)
	})

	t.Run("replaces uploaded documents", func(t *testing.T) {
		var removed removedFiles
		repo := &mockCollegeRepository{FindFunc: func(uint) (*entity.College, error) {
			return &entity.College{ID: 4, AdminUserID: 8, Name: "Old", IDProofFile: "a.pdf", AuthLetterFile: "b.pdf"}, nil
		}}
		uc := NewCollegeUsecase(repo, nil, &removed)

		c, err := uc.UpdateProfile(context.Background(), 8, ProfileInput{Name: "New", IDProofFile: "c.pdf", AuthLetterFile: "d.pdf"})
		require.NoError(t, err)
		assert.Equal(t, "New", c.Name)
		assert.Equal(t, removedFiles{"a.pdf", "b.pdf"}, removed)
	})
}

func TestCollegeUsecase_ListStudents(t *testing.T) {
	repo := &mockCollegeRepository{FindFunc: func(adminUserID uint) (*entity.College, error) {
		if adminUserID != 8 {
			return nil, ErrCollegeNotFound
		}
		return &entity.College{ID: 4, AdminUserID: 8}, nil
	}}
	lister := studentListerFunc(func(collegeID uint) ([]entity.LinkedStudent, error) {
		if collegeID != 4 {
			return nil, errors.New("wrong college")
		}
		return []entity.LinkedStudent{{ID: 1, FullName: "Asha"}}, nil
	})
	uc := NewCollegeUsecase(repo, lister, &removedFiles{})

	got, err := uc.ListStudents(context.Background(), 8)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = uc.ListStudents(context.Background(), 9)
	assert.ErrorIs(t, err, ErrCollegeNotFound)
}

package usecase

import (
	"context"
	"errors"
	"log/slog"

	"internship_backend/internal/feature/college/domain/entity"
)

// CollegeRepository abstracts college persistence.
type CollegeRepository interface {
	// FindByAdminUserID returns ErrCollegeNotFound when the admin has no college.
	FindByAdminUserID(ctx context.Context, adminUserID uint) (*entity.College, error)
	Save(ctx context.Context, c *entity.College) error
	List(ctx context.Context) ([]entity.College, error)
}

// StudentLister lists the students linked to a college.
type StudentLister interface {
	ListByCollegeID(ctx context.Context, collegeID uint) ([]entity.LinkedStudent, error)
}

// FileRemover deletes stored uploads that a profile no longer references.
type FileRemover interface {
	Delete(ctx context.Context, name string) error
}

// ProfileInput replaces the text fields of the profile. Empty file names
// keep the current file.
type ProfileInput struct {
	Name           string
	Address        string
	Website        string
	ContactEmail   string
	IDProofFile    string
	AuthLetterFile string
}

type collegeUsecase struct {
	colleges CollegeRepository
	students StudentLister
	files    FileRemover
}

func NewCollegeUsecase(colleges CollegeRepository, students StudentLister, files FileRemover) *collegeUsecase {
	return &collegeUsecase{colleges: colleges, students: students, files: files}
}

func (u *collegeUsecase) GetProfile(ctx context.Context, adminUserID uint) (*entity.College, error) {
	return u.colleges.FindByAdminUserID(ctx, adminUserID)
}

// UpdateProfile updates the admin's college, creating it when registration
// did not.
func (u *collegeUsecase) UpdateProfile(ctx context.Context, adminUserID uint, in ProfileInput) (*entity.College, error) {
	c, err := u.colleges.FindByAdminUserID(ctx, adminUserID)
	if err != nil {
		if !errors.Is(err, ErrCollegeNotFound) {
			return nil, err
		}
		c = &entity.College{AdminUserID: adminUserID}
	}

	c.Name = in.Name
	c.Address = in.Address
	c.Website = in.Website
	c.ContactEmail = in.ContactEmail

	var replaced []string
	if in.IDProofFile != "" {
		if c.IDProofFile != "" && c.IDProofFile != in.IDProofFile {
			replaced = append(replaced, c.IDProofFile)
		}
		c.IDProofFile = in.IDProofFile
	}
	if in.AuthLetterFile != "" {
		if c.AuthLetterFile != "" && c.AuthLetterFile != in.AuthLetterFile {
			replaced = append(replaced, c.AuthLetterFile)
		}
		c.AuthLetterFile = in.AuthLetterFile
	}

	if err := u.colleges.Save(ctx, c); err != nil {
		return nil, err
	}
	for _, name := range replaced {
		if err := u.files.Delete(ctx, name); err != nil {
			slog.WarnContext(ctx, "failed to delete replaced file", "error", err, "file", name)
		}
	}
	return c, nil
}

// ListColleges returns every college, ordered by name.
func (u *collegeUsecase) ListColleges(ctx context.Context) ([]entity.College, error) {
	return u.colleges.List(ctx)
}

// ListStudents returns the students linked to the admin's college.
func (u *collegeUsecase) ListStudents(ctx context.Context, adminUserID uint) ([]entity.LinkedStudent, error) {
	c, err := u.colleges.FindByAdminUserID(ctx, adminUserID)
	if err != nil {
		return nil, err
	}
	return u.students.ListByCollegeID(ctx, c.ID)
}

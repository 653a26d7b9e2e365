package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"internship_backend/internal/feature/student/domain/entity"
)

// StudentRepository abstracts student persistence.
type StudentRepository interface {
	// FindByUserID returns ErrStudentNotFound when the user has no profile.
	FindByUserID(ctx context.Context, userID uint) (*entity.Student, error)
	Save(ctx context.Context, s *entity.Student) error
	// SetCollege returns ErrStudentNotFound when the user has no profile.
	SetCollege(ctx context.Context, userID, collegeID uint) error
}

// CollegeChecker reports whether a college exists.
type CollegeChecker interface {
	Exists(ctx context.Context, collegeID uint) (bool, error)
}

// FileRemover deletes stored uploads that a profile no longer references.
type FileRemover interface {
	Delete(ctx context.Context, name string) error
}

// ProfileInput replaces the text fields of the profile. Empty file names
// keep the current file.
type ProfileInput struct {
	FullName       string
	Phone          string
	Course         string
	GraduationYear int
	CGPA           float64
	PhotoFile      string
	SignatureFile  string
	ResumeFile     string
}

type studentUsecase struct {
	students StudentRepository
	colleges CollegeChecker
	files    FileRemover
}

func NewStudentUsecase(students StudentRepository, colleges CollegeChecker, files FileRemover) *studentUsecase {
	return &studentUsecase{students: students, colleges: colleges, files: files}
}

func (u *studentUsecase) GetProfile(ctx context.Context, userID uint) (*entity.Student, error) {
	return u.students.FindByUserID(ctx, userID)
}

// SaveProfile creates or updates the student profile of userID.
func (u *studentUsecase) SaveProfile(ctx context.Context, userID uint, in ProfileInput) (*entity.Student, error) {
	s, err := u.students.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrStudentNotFound) {
			return nil, err
		}
		s = &entity.Student{UserID: userID}
	}

	s.FullName = in.FullName
	s.Phone = in.Phone
	s.Course = in.Course
	s.GraduationYear = in.GraduationYear
	s.CGPA = in.CGPA

	var replaced []string
	replace := func(current *string, next string) {
		if next == "" {
			return
		}
		if *current != "" && *current != next {
			replaced = append(replaced, *current)
		}
		*current = next
	}
	replace(&s.PhotoFile, in.PhotoFile)
	replace(&s.SignatureFile, in.SignatureFile)
	replace(&s.ResumeFile, in.ResumeFile)

	if err := u.students.Save(ctx, s); err != nil {
		return nil, err
	}
	for _, name := range replaced {
		if err := u.files.Delete(ctx, name); err != nil {
			slog.WarnContext(ctx, "failed to delete replaced file", "error", err, "file", name)
		}
	}
	return s, nil
}

// LinkCollege attaches the student of userID to an existing college.
func (u *studentUsecase) LinkCollege(ctx context.Context, userID, collegeID uint) error {
	ok, err := u.colleges.Exists(ctx, collegeID)
	if err != nil {
		return fmt.Errorf("failed to look up college: %w", err)
	}
	if !ok {
		return ErrCollegeNotFound
	}
	if err := u.students.SetCollege(ctx, userID, collegeID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "student linked to college", "user_id", userID, "college_id", collegeID)
	return nil
}

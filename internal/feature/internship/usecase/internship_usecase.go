package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"internship_backend/internal/feature/internship/domain/entity"
)

// InternshipRepository abstracts internship persistence.
type InternshipRepository interface {
	Create(ctx context.Context, in *entity.Internship) error
	// FindByID returns ErrInternshipNotFound when absent.
	FindByID(ctx context.Context, id uint) (*entity.Internship, error)
	List(ctx context.Context, f ListFilter) ([]entity.Internship, int64, error)
	Update(ctx context.Context, in *entity.Internship) error
	// Delete removes the internship and its applications.
	Delete(ctx context.Context, id uint) error
}

// ApplicationRepository abstracts application persistence.
type ApplicationRepository interface {
	// Create returns ErrAlreadyApplied when the student already applied.
	Create(ctx context.Context, a *entity.Application) error
	FindByID(ctx context.Context, id uint) (*entity.Application, error)
	ListByStudent(ctx context.Context, studentID uint) ([]entity.Application, error)
	ListByInternship(ctx context.Context, internshipID uint) ([]entity.Application, error)
	// UpdateStatus changes the status only while it is still from.
	// ErrInvalidTransition when another request changed it first.
	UpdateStatus(ctx context.Context, id uint, from, to entity.ApplicationStatus) error
}

// ProfileResolver maps a user to the company or student profile behind it.
type ProfileResolver interface {
	CompanyIDByUser(ctx context.Context, userID uint) (uint, error)
	StudentIDByUser(ctx context.Context, userID uint) (uint, error)
}

// ListFilter narrows GET /internships. Zero values do not filter.
type ListFilter struct {
	Status    entity.Status
	CompanyID uint
	Location  string
	Query     string
	Limit     int
	Offset    int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// InternshipInput carries the editable fields of an internship.
type InternshipInput struct {
	Title         string
	Description   string
	Location      string
	Stipend       int
	DurationWeeks int
	Openings      int
	Deadline      *time.Time
	// Status is ignored on create.
	Status entity.Status
}

type internshipUsecase struct {
	internships  InternshipRepository
	applications ApplicationRepository
	profiles     ProfileResolver
	now          func() time.Time
}

func NewInternshipUsecase(internships InternshipRepository, applications ApplicationRepository, profiles ProfileResolver) *internshipUsecase {
	return &internshipUsecase{
		internships:  internships,
		applications: applications,
		profiles:     profiles,
		now:          time.Now,
	}
}

func (u *internshipUsecase) Create(ctx context.Context, userID uint, in InternshipInput) (*entity.Internship, error) {
	companyID, err := u.profiles.CompanyIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Deadline != nil && in.Deadline.Before(u.now()) {
		return nil, ErrDeadlinePassed
	}

	it := &entity.Internship{CompanyID: companyID, Status: entity.StatusOpen}
	apply(it, in)
	if err := u.internships.Create(ctx, it); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "internship created", "internship_id", it.ID, "company_id", companyID)
	return it, nil
}

func sameTime(a, b *time.Time) bool {
	return a != nil && b != nil && a.Equal(*b)
}

func apply(it *entity.Internship, in InternshipInput) {
	it.Title = in.Title
	it.Description = in.Description
	it.Location = in.Location
	it.Stipend = in.Stipend
	it.DurationWeeks = in.DurationWeeks
	it.Openings = in.Openings
	it.Deadline = in.Deadline
}

func (u *internshipUsecase) List(ctx context.Context, f ListFilter) ([]entity.Internship, int64, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return u.internships.List(ctx, f)
}

func (u *internshipUsecase) Get(ctx context.Context, id uint) (*entity.Internship, error) {
	return u.internships.FindByID(ctx, id)
}

// owned loads the internship and checks that userID's company published it.
func (u *internshipUsecase) owned(ctx context.Context, userID, id uint) (*entity.Internship, error) {
	it, err := u.internships.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	companyID, err := u.profiles.CompanyIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if it.CompanyID != companyID {
		return nil, ErrNotOwner
	}
	return it, nil
}

// Update replaces the editable fields. An empty Status keeps the current one.
// A new deadline must not be in the past; an unchanged one is left alone so
// expired postings can still be edited or closed.
func (u *internshipUsecase) Update(ctx context.Context, userID, id uint, in InternshipInput) (*entity.Internship, error) {
	it, err := u.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Deadline != nil && in.Deadline.Before(u.now()) && !sameTime(in.Deadline, it.Deadline) {
		return nil, ErrDeadlinePassed
	}
	apply(it, in)
	if in.Status != "" {
		it.Status = in.Status
	}
	if err := u.internships.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (u *internshipUsecase) Delete(ctx context.Context, userID, id uint) error {
	if _, err := u.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := u.internships.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "internship deleted", "internship_id", id, "user_id", userID)
	return nil
}

// Apply files an application of userID's student profile.
func (u *internshipUsecase) Apply(ctx context.Context, userID, internshipID uint, coverLetter string) (*entity.Application, error) {
	studentID, err := u.profiles.StudentIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	it, err := u.internships.FindByID(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if !it.AcceptsApplications(u.now()) {
		return nil, ErrInternshipClosed
	}

	a := &entity.Application{
		InternshipID:    internshipID,
		StudentID:       studentID,
		CoverLetter:     coverLetter,
		Status:          entity.ApplicationPending,
		InternshipTitle: it.Title,
	}
	if err := u.applications.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (u *internshipUsecase) ListForStudent(ctx context.Context, userID uint) ([]entity.Application, error) {
	studentID, err := u.profiles.StudentIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.applications.ListByStudent(ctx, studentID)
}

func (u *internshipUsecase) ListForInternship(ctx context.Context, userID, internshipID uint) ([]entity.Application, error) {
	if _, err := u.owned(ctx, userID, internshipID); err != nil {
		return nil, err
	}
	return u.applications.ListByInternship(ctx, internshipID)
}

// UpdateApplicationStatus moves an application of the caller's internship
// along pending -> shortlisted -> accepted|rejected.
func (u *internshipUsecase) UpdateApplicationStatus(ctx context.Context, userID, applicationID uint, to entity.ApplicationStatus) (*entity.Application, error) {
	a, err := u.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if _, err := u.owned(ctx, userID, a.InternshipID); err != nil {
		return nil, err
	}
	if a.Status == to {
		return a, nil
	}
	if !a.Status.CanBecome(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
	}
	if err := u.applications.UpdateStatus(ctx, a.ID, a.Status, to); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "application status changed", "application_id", a.ID, "from", a.Status, "to", to)
	a.Status = to
	return a, nil
}

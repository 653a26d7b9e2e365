package usecase

import (
	"context"
	"errors"
	"log/slog"

	"internship_backend/internal/feature/company/domain/entity"
)

// CompanyRepository abstracts company persistence.
type CompanyRepository interface {
	// FindByUserID returns ErrCompanyNotFound when the user has no profile.
	FindByUserID(ctx context.Context, userID uint) (*entity.Company, error)
	// Save creates the company when ID is 0, otherwise updates it.
	Save(ctx context.Context, c *entity.Company) error
}

// FileRemover deletes stored uploads that a profile no longer references.
type FileRemover interface {
	Delete(ctx context.Context, name string) error
}

// ProfileInput replaces the text fields of the profile. Empty file names
// keep the current file.
type ProfileInput struct {
	CompanyName    string
	Industry       string
	Website        string
	Description    string
	LogoFile       string
	AuthLetterFile string
}

type companyUsecase struct {
	companies CompanyRepository
	files     FileRemover
}

func NewCompanyUsecase(companies CompanyRepository, files FileRemover) *companyUsecase {
	return &companyUsecase{companies: companies, files: files}
}

// GetProfile returns the company of userID.
func (u *companyUsecase) GetProfile(ctx context.Context, userID uint) (*entity.Company, error) {
	return u.companies.FindByUserID(ctx, userID)
}

// SaveProfile creates or updates the company of userID. Files replaced by a
// new upload are deleted after the profile is stored.
func (u *companyUsecase) SaveProfile(ctx context.Context, userID uint, in ProfileInput) (*entity.Company, error) {
	c, err := u.companies.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrCompanyNotFound) {
			return nil, err
		}
		c = &entity.Company{UserID: userID}
	}

	c.CompanyName = in.CompanyName
	c.Industry = in.Industry
	c.Website = in.Website
	c.Description = in.Description

	var replaced []string
	if in.LogoFile != "" {
		if c.LogoFile != "" && c.LogoFile != in.LogoFile {
			replaced = append(replaced, c.LogoFile)
		}
		c.LogoFile = in.LogoFile
	}
	if in.AuthLetterFile != "" {
		if c.AuthLetterFile != "" && c.AuthLetterFile != in.AuthLetterFile {
			replaced = append(replaced, c.AuthLetterFile)
		}
		c.AuthLetterFile = in.AuthLetterFile
	}

	if err := u.companies.Save(ctx, c); err != nil {
		return nil, err
	}

	for _, name := range replaced {
		if err := u.files.Delete(ctx, name); err != nil {
			slog.WarnContext(ctx, "failed to delete replaced file", "error", err, "file", name)
		}
	}
	return c, nil
}

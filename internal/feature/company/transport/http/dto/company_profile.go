// Package dto defines request and response bodies of the company feature.
package dto

import (
	"time"

	"internship_backend/internal/feature/company/domain/entity"
)

// CompanyProfileForm holds the text fields of POST /company/profile. The
// companyLogo and authLetter files are checked by the upload gate.
type CompanyProfileForm struct {
	CompanyName string `form:"companyName" binding:"required,notblank,max=255"`
	Industry    string `form:"industry" binding:"max=255"`
	Website     string `form:"website" binding:"omitempty,url,max=512"`
	Description string `form:"description" binding:"max=5000"`
}

type CompanyRes struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"userId"`
	CompanyName   string    `json:"companyName"`
	Industry      string    `json:"industry"`
	Website       string    `json:"website"`
	Description   string    `json:"description"`
	LogoURL       string    `json:"logoUrl,omitempty"`
	AuthLetterURL string    `json:"authLetterUrl,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func fileURL(name string) string {
	if name == "" {
		return ""
	}
	return "/uploads/" + name
}

func NewCompanyRes(c *entity.Company) CompanyRes {
	return CompanyRes{
		ID:            c.ID,
		UserID:        c.UserID,
		CompanyName:   c.CompanyName,
		Industry:      c.Industry,
		Website:       c.Website,
		Description:   c.Description,
		LogoURL:       fileURL(c.LogoFile),
		AuthLetterURL: fileURL(c.AuthLetterFile),
		UpdatedAt:     c.UpdatedAt,
	}
}

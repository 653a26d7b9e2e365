package adapters

import (
	"time"

	"internship_backend/internal/feature/company/domain/entity"
)

// CompanyModel is the GORM model for the companies table.
type CompanyModel struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"uniqueIndex;not null"`
	CompanyName    string `gorm:"size:255;not null"`
	Industry       string `gorm:"size:255"`
	Website        string `gorm:"size:512"`
	Description    string `gorm:"type:text"`
	LogoFile       string `gorm:"size:255"`
	AuthLetterFile string `gorm:"size:255"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM.
func (CompanyModel) TableName() string {
	return "companies"
}

// ToEntity converts the GORM model to a domain entity.
func (m *CompanyModel) ToEntity() *entity.Company {
	return &entity.Company{
		ID:             m.ID,
		UserID:         m.UserID,
		CompanyName:    m.CompanyName,
		Industry:       m.Industry,
		Website:        m.Website,
		Description:    m.Description,
		LogoFile:       m.LogoFile,
		AuthLetterFile: m.AuthLetterFile,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// CompanyModelFromEntity converts a domain entity to a GORM model.
func CompanyModelFromEntity(c *entity.Company) *CompanyModel {
	return &CompanyModel{
		ID:             c.ID,
		UserID:         c.UserID,
		CompanyName:    c.CompanyName,
		Industry:       c.Industry,
		Website:        c.Website,
		Description:    c.Description,
		LogoFile:       c.LogoFile,
		AuthLetterFile: c.AuthLetterFile,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

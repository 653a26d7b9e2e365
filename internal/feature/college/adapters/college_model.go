package adapters

import (
	"time"

	"internship_backend/internal/feature/college/domain/entity"
)

// CollegeModel is the GORM model for the colleges table.
type CollegeModel struct {
	ID             uint   `gorm:"primaryKey"`
	AdminUserID    uint   `gorm:"uniqueIndex;not null"`
	Name           string `gorm:"size:255;not null"`
	Address        string `gorm:"size:512"`
	Website        string `gorm:"size:512"`
	ContactEmail   string `gorm:"size:255"`
	IDProofFile    string `gorm:"size:255"`
	AuthLetterFile string `gorm:"size:255"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM.
func (CollegeModel) TableName() string {
	return "colleges"
}

// ToEntity converts the GORM model to a domain entity.
func (m *CollegeModel) ToEntity() *entity.College {
	return &entity.College{
		ID:             m.ID,
		AdminUserID:    m.AdminUserID,
		Name:           m.Name,
		Address:        m.Address,
		Website:        m.Website,
		ContactEmail:   m.ContactEmail,
		IDProofFile:    m.IDProofFile,
		AuthLetterFile: m.AuthLetterFile,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// CollegeModelFromEntity converts a domain entity to a GORM model.
func CollegeModelFromEntity(c *entity.College) *CollegeModel {
	return &CollegeModel{
		ID:             c.ID,
		AdminUserID:    c.AdminUserID,
		Name:           c.Name,
		Address:        c.Address,
		Website:        c.Website,
		ContactEmail:   c.ContactEmail,
		IDProofFile:    c.IDProofFile,
		AuthLetterFile: c.AuthLetterFile,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

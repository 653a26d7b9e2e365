package adapters

import (
	"time"

	"internship_backend/internal/feature/internship/domain/entity"
)

// InternshipModel is the GORM model for the internships table.
type InternshipModel struct {
	ID            uint   `gorm:"primaryKey"`
	CompanyID     uint   `gorm:"index;not null"`
	Title         string `gorm:"size:255;not null"`
	Description   string `gorm:"type:text"`
	Location      string `gorm:"size:255;index"`
	Stipend       int
	DurationWeeks int
	Openings      int
	Deadline      *time.Time
	Status        string `gorm:"size:16;index;not null;default:open"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (InternshipModel) TableName() string {
	return "internships"
}

func (m *InternshipModel) ToEntity() *entity.Internship {
	return &entity.Internship{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		Title:         m.Title,
		Description:   m.Description,
		Location:      m.Location,
		Stipend:       m.Stipend,
		DurationWeeks: m.DurationWeeks,
		Openings:      m.Openings,
		Deadline:      m.Deadline,
		Status:        entity.Status(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func InternshipModelFromEntity(i *entity.Internship) *InternshipModel {
	return &InternshipModel{
		ID:            i.ID,
		CompanyID:     i.CompanyID,
		Title:         i.Title,
		Description:   i.Description,
		Location:      i.Location,
		Stipend:       i.Stipend,
		DurationWeeks: i.DurationWeeks,
		Openings:      i.Openings,
		Deadline:      i.Deadline,
		Status:        string(i.Status),
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

// ApplicationModel is the GORM model for the applications table.
// (internship_id, student_id) は一意。
type ApplicationModel struct {
	ID           uint   `gorm:"primaryKey"`
	InternshipID uint   `gorm:"not null;uniqueIndex:idx_applications_internship_student,priority:1"`
	StudentID    uint   `gorm:"not null;uniqueIndex:idx_applications_internship_student,priority:2;index"`
	CoverLetter  string `gorm:"type:text"`
	Status       string `gorm:"size:16;not null;default:pending"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ApplicationModel) TableName() string {
	return "applications"
}

func (m *ApplicationModel) ToEntity() *entity.Application {
	return &entity.Application{
		ID:           m.ID,
		InternshipID: m.InternshipID,
		StudentID:    m.StudentID,
		CoverLetter:  m.CoverLetter,
		Status:       entity.ApplicationStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func ApplicationModelFromEntity(a *entity.Application) *ApplicationModel {
	return &ApplicationModel{
		ID:           a.ID,
		InternshipID: a.InternshipID,
		StudentID:    a.StudentID,
		CoverLetter:  a.CoverLetter,
		Status:       string(a.Status),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

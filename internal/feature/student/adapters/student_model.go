package adapters

import (
	"time"

	"internship_backend/internal/feature/student/domain/entity"
)

// StudentModel is the GORM model for the students table.
type StudentModel struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"uniqueIndex;not null"`
	FullName       string `gorm:"size:255;not null"`
	Phone          string `gorm:"size:32"`
	Course         string `gorm:"size:255"`
	GraduationYear int
	CGPA           float64 `gorm:"column:cgpa"`
	CollegeID      *uint   `gorm:"index"`
	PhotoFile      string  `gorm:"size:255"`
	SignatureFile  string  `gorm:"size:255"`
	ResumeFile     string  `gorm:"size:255"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (StudentModel) TableName() string {
	return "students"
}

func (m *StudentModel) ToEntity() *entity.Student {
	return &entity.Student{
		ID:             m.ID,
		UserID:         m.UserID,
		FullName:       m.FullName,
		Phone:          m.Phone,
		Course:         m.Course,
		GraduationYear: m.GraduationYear,
		CGPA:           m.CGPA,
		CollegeID:      m.CollegeID,
		PhotoFile:      m.PhotoFile,
		SignatureFile:  m.SignatureFile,
		ResumeFile:     m.ResumeFile,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func StudentModelFromEntity(s *entity.Student) *StudentModel {
	return &StudentModel{
		ID:             s.ID,
		UserID:         s.UserID,
		FullName:       s.FullName,
		Phone:          s.Phone,
		Course:         s.Course,
		GraduationYear: s.GraduationYear,
		CGPA:           s.CGPA,
		CollegeID:      s.CollegeID,
		PhotoFile:      s.PhotoFile,
		SignatureFile:  s.SignatureFile,
		ResumeFile:     s.ResumeFile,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// Package dto defines request and response bodies of the student feature.
package dto

import (
	"time"

	"internship_backend/internal/feature/student/domain/entity"
)

// StudentProfileForm holds the text fields of POST /student/profile.
type StudentProfileForm struct {
	FullName       string  `form:"fullName" binding:"required,notblank,max=255"`
	Phone          string  `form:"phone" binding:"omitempty,max=32"`
	Course         string  `form:"course" binding:"max=255"`
	GraduationYear int     `form:"graduationYear" binding:"omitempty,gte=1950,lte=2100"`
	CGPA           float64 `form:"cgpa" binding:"omitempty,gte=0,lte=10"`
}

// LinkCollegeReq is the body of POST /student/link-college.
type LinkCollegeReq struct {
	CollegeID uint `json:"collegeId" binding:"required,min=1"`
}

type StudentRes struct {
	ID             uint      `json:"id"`
	UserID         uint      `json:"userId"`
	FullName       string    `json:"fullName"`
	Phone          string    `json:"phone"`
	Course         string    `json:"course"`
	GraduationYear int       `json:"graduationYear"`
	CGPA           float64   `json:"cgpa"`
	CollegeID      *uint     `json:"collegeId"`
	PhotoURL       string    `json:"photoUrl,omitempty"`
	SignatureURL   string    `json:"signatureUrl,omitempty"`
	ResumeURL      string    `json:"resumeUrl,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func fileURL(name string) string {
	if name == "" {
		return ""
	}
	return "/uploads/" + name
}

func NewStudentRes(s *entity.Student) StudentRes {
	return StudentRes{
		ID:             s.ID,
		UserID:         s.UserID,
		FullName:       s.FullName,
		Phone:          s.Phone,
		Course:         s.Course,
		GraduationYear: s.GraduationYear,
		CGPA:           s.CGPA,
		CollegeID:      s.CollegeID,
		PhotoURL:       fileURL(s.PhotoFile),
		SignatureURL:   fileURL(s.SignatureFile),
		ResumeURL:      fileURL(s.ResumeFile),
		UpdatedAt:      s.UpdatedAt,
	}
}

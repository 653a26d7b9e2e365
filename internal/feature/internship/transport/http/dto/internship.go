// Package dto defines request and response bodies of the internship feature.
package dto

import (
	"time"

	"internship_backend/internal/feature/internship/domain/entity"
)

// InternshipReq is the body of POST /internships and PUT /internships/:id.
type InternshipReq struct {
	Title         string     `json:"title" binding:"required,notblank,max=255"`
	Description   string     `json:"description" binding:"required,notblank,max=10000"`
	Location      string     `json:"location" binding:"max=255"`
	Stipend       int        `json:"stipend" binding:"min=0"`
	DurationWeeks int        `json:"durationWeeks" binding:"required,min=1,max=104"`
	Openings      int        `json:"openings" binding:"required,min=1,max=1000"`
	Deadline      *time.Time `json:"deadline"`
	// 作成時は無視される
	Status string `json:"status" binding:"omitempty,oneof=open closed"`
}

// ListInternshipsQuery holds the query of GET /internships.
type ListInternshipsQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=open closed"`
	CompanyID uint   `form:"companyId"`
	Location  string `form:"location" binding:"max=255"`
	Q         string `form:"q" binding:"max=255"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset    int    `form:"offset" binding:"omitempty,min=0"`
}

type ApplyReq struct {
	CoverLetter string `json:"coverLetter" binding:"max=5000"`
}

type UpdateApplicationStatusReq struct {
	Status string `json:"status" binding:"required,oneof=pending shortlisted accepted rejected"`
}

type InternshipRes struct {
	ID            uint       `json:"id"`
	CompanyID     uint       `json:"companyId"`
	CompanyName   string     `json:"companyName"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Location      string     `json:"location"`
	Stipend       int        `json:"stipend"`
	DurationWeeks int        `json:"durationWeeks"`
	Openings      int        `json:"openings"`
	Deadline      *time.Time `json:"deadline"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func NewInternshipRes(i *entity.Internship) InternshipRes {
	return InternshipRes{
		ID:            i.ID,
		CompanyID:     i.CompanyID,
		CompanyName:   i.CompanyName,
		Title:         i.Title,
		Description:   i.Description,
		Location:      i.Location,
		Stipend:       i.Stipend,
		DurationWeeks: i.DurationWeeks,
		Openings:      i.Openings,
		Deadline:      i.Deadline,
		Status:        string(i.Status),
		CreatedAt:     i.CreatedAt,
	}
}

type ApplicationRes struct {
	ID              uint      `json:"id"`
	InternshipID    uint      `json:"internshipId"`
	InternshipTitle string    `json:"internshipTitle,omitempty"`
	StudentID       uint      `json:"studentId"`
	StudentName     string    `json:"studentName,omitempty"`
	CoverLetter     string    `json:"coverLetter"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

func NewApplicationRes(a *entity.Application) ApplicationRes {
	return ApplicationRes{
		ID:              a.ID,
		InternshipID:    a.InternshipID,
		InternshipTitle: a.InternshipTitle,
		StudentID:       a.StudentID,
		StudentName:     a.StudentName,
		CoverLetter:     a.CoverLetter,
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt,
	}
}

func NewApplicationList(as []entity.Application) []ApplicationRes {
	out := make([]ApplicationRes, 0, len(as))
	for i := range as {
		out = append(out, NewApplicationRes(&as[i]))
	}
	return out
}

// Package dto defines request and response bodies of the college feature.
package dto

import (
	"time"

	"internship_backend/internal/feature/college/domain/entity"
)

// CollegeProfileForm holds the text fields of PUT /college/profile.
type CollegeProfileForm struct {
	Name         string `form:"name" binding:"required,notblank,max=255"`
	Address      string `form:"address" binding:"max=512"`
	Website      string `form:"website" binding:"omitempty,url,max=512"`
	ContactEmail string `form:"contactEmail" binding:"omitempty,email,max=255"`
}

type CollegeRes struct {
	ID            uint      `json:"id"`
	AdminUserID   uint      `json:"adminUserId"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	Website       string    `json:"website"`
	ContactEmail  string    `json:"contactEmail"`
	IDProofURL    string    `json:"idProofUrl,omitempty"`
	AuthLetterURL string    `json:"authLetterUrl,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CollegeSummaryRes is the public listing shown to students.
type CollegeSummaryRes struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Website string `json:"website"`
}

func fileURL(name string) string {
	if name == "" {
		return ""
	}
	return "/uploads/" + name
}

func NewCollegeRes(c *entity.College) CollegeRes {
	return CollegeRes{
		ID:            c.ID,
		AdminUserID:   c.AdminUserID,
		Name:          c.Name,
		Address:       c.Address,
		Website:       c.Website,
		ContactEmail:  c.ContactEmail,
		IDProofURL:    fileURL(c.IDProofFile),
		AuthLetterURL: fileURL(c.AuthLetterFile),
		UpdatedAt:     c.UpdatedAt,
	}
}

func NewCollegeSummaries(cs []entity.College) []CollegeSummaryRes {
	out := make([]CollegeSummaryRes, 0, len(cs))
	for _, c := range cs {
		out = append(out, CollegeSummaryRes{ID: c.ID, Name: c.Name, Address: c.Address, Website: c.Website})
	}
	return out
}

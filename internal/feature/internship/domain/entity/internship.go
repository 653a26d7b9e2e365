// Package entity defines internships and the applications made to them.
package entity

import "time"

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

type Internship struct {
	ID            uint
	CompanyID     uint
	CompanyName   string // 読み取り専用 (companies から補完)
	Title         string
	Description   string
	Location      string
	Stipend       int
	DurationWeeks int
	Openings      int
	Deadline      *time.Time
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AcceptsApplications reports whether students may still apply at now.
// The deadline itself is inclusive.
func (i *Internship) AcceptsApplications(now time.Time) bool {
	if i.Status != StatusOpen {
		return false
	}
	return i.Deadline == nil || !now.After(*i.Deadline)
}

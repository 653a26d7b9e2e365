package entity

import "time"

type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationAccepted    ApplicationStatus = "accepted"
	ApplicationRejected    ApplicationStatus = "rejected"
)

// Final reports whether no further change is allowed.
func (s ApplicationStatus) Final() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// CanBecome reports whether an application in s may move to next.
// pending -> shortlisted -> accepted|rejected; pending may skip shortlisting.
func (s ApplicationStatus) CanBecome(next ApplicationStatus) bool {
	switch s {
	case ApplicationPending:
		return next == ApplicationShortlisted || next == ApplicationAccepted || next == ApplicationRejected
	case ApplicationShortlisted:
		return next == ApplicationAccepted || next == ApplicationRejected
	default:
		return false
	}
}

type Application struct {
	ID           uint
	InternshipID uint
	StudentID    uint
	CoverLetter  string
	Status       ApplicationStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// 一覧表示用 (読み取り専用)
	InternshipTitle string
	StudentName     string
}

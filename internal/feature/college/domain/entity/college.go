// Package entity defines the domain entities for the college feature.
package entity

import "time"

// College is managed by exactly one Admin account.
type College struct {
	ID             uint
	AdminUserID    uint
	Name           string
	Address        string
	Website        string
	ContactEmail   string
	IDProofFile    string
	AuthLetterFile string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LinkedStudent is a student row as seen by the college administrator.
type LinkedStudent struct {
	ID             uint    `json:"id"`
	UserID         uint    `json:"userId"`
	FullName       string  `json:"fullName"`
	Course         string  `json:"course"`
	GraduationYear int     `json:"graduationYear"`
	CGPA           float64 `json:"cgpa"`
}

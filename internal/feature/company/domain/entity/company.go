// Package entity defines the domain entities for the company feature.
package entity

import "time"

// Company is the profile of a Company account. One per user.
type Company struct {
	ID             uint
	UserID         uint
	CompanyName    string
	Industry       string
	Website        string
	Description    string
	LogoFile       string
	AuthLetterFile string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

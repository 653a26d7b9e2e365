// Package entity defines the domain entities for the student feature.
package entity

import "time"

// Student is the profile of a Student account.
type Student struct {
	ID             uint
	UserID         uint
	FullName       string
	Phone          string
	Course         string
	GraduationYear int
	CGPA           float64
	// CollegeID は未所属なら nil
	CollegeID     *uint
	PhotoFile     string
	SignatureFile string
	ResumeFile    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

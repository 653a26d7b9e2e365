package usecase

import "errors"

var (
	ErrInternshipNotFound   = errors.New("internship not found")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrNotOwner             = errors.New("internship belongs to another company")
	ErrInternshipClosed     = errors.New("internship is not accepting applications")
	ErrAlreadyApplied       = errors.New("already applied to this internship")
	ErrInvalidTransition    = errors.New("application status cannot be changed")
	ErrDeadlinePassed       = errors.New("deadline is in the past")
	ErrCompanyProfileNeeded = errors.New("company profile required")
	ErrStudentProfileNeeded = errors.New("student profile required")
)

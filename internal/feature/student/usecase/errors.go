package usecase

import "errors"

var (
	ErrStudentNotFound = errors.New("student profile not found")
	ErrCollegeNotFound = errors.New("college not found")
)

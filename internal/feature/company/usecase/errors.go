// Package usecase implements the company profile logic.
package usecase

import "errors"

// ErrCompanyNotFound is returned when the user has no company profile yet.
var ErrCompanyNotFound = errors.New("company profile not found")

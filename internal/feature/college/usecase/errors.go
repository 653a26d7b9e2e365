package usecase

import "errors"

var ErrCollegeNotFound = errors.New("college profile not found")

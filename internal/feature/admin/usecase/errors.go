package usecase

import "errors"

var ErrInvalidPassword = errors.New("password must be 8 to 72 bytes")

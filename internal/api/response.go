// Package api holds response bodies shared by every handler.
package api

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid token"`
}

// FieldError describes one violated field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse lists every field that failed validation.
type ValidationErrorResponse struct {
	Error []FieldError `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// ListResponse wraps collection results.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// NewList builds a ListResponse, returning an empty array rather than null.
func NewList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}

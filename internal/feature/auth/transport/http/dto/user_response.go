package dto

import (
	"time"

	"internship_backend/internal/feature/auth/domain/entity"
)

// UserRes is the public view of a user.
type UserRes struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	RoleID        uint      `json:"roleId"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewUserRes(u *entity.User) UserRes {
	return UserRes{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		RoleID:        uint(u.Role),
		Role:          u.Role.String(),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

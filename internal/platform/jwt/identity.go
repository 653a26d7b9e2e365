package jwtmw

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"internship_backend/internal/shared/role"
)

// ContextIdentity is the gin context key holding the *Identity of the caller.
const ContextIdentity = "identity"

// ErrIdentityNotFound is returned by resolvers when the subject no longer exists.
var ErrIdentityNotFound = errors.New("identity not found")

// Identity is the persisted caller attached to an authenticated request.
type Identity struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          role.Role `json:"roleId"`
	EmailVerified bool      `json:"emailVerified"`
}

// IdentityResolver loads the identity behind a token subject.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID uint) (*Identity, error)
}

// CurrentIdentity returns the identity attached by AuthRequired.
func CurrentIdentity(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok && id != nil
}

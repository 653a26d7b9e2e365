package jwtmw

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"internship_backend/internal/shared/role"
)

// Generator defines the interface for JWT token generation.
type Generator interface {
	// GenerateToken creates a signed access token for the given user.
	GenerateToken(userID uint, email string, r role.Role) (string, error)
	// TTL is the lifetime of issued tokens.
	TTL() time.Duration
}

type generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

var _ Generator = (*generator)(nil)

// GenerateToken creates a signed HS256 token with {sub, role, email, iat, exp}.
func (g *generator) GenerateToken(userID uint, email string, r role.Role) (string, error) {
	now := g.now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"role":  r.String(),
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(g.expiration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (g *generator) TTL() time.Duration {
	return g.expiration
}

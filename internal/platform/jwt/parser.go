package jwtmw

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified subset of the token payload.
type Claims struct {
	UserID uint
	Email  string
	Role   string
}

// TokenParser verifies a raw token string.
type TokenParser interface {
	ParseToken(raw string) (*Claims, error)
}

type parser struct {
	secret []byte
}

// NewParser returns a parser that accepts only HS256 tokens signed with secret.
func NewParser(secret string) *parser {
	return &parser{secret: []byte(secret)}
}

var _ TokenParser = (*parser)(nil)

func (p *parser) ParseToken(raw string) (*Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// HMAC 以外は拒否
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	// JWT numbers are decoded as float64
	sub, ok := mc["sub"].(float64)
	if !ok || sub <= 0 || sub > math.MaxUint32 || sub != math.Trunc(sub) {
		return nil, fmt.Errorf("%w: bad sub claim", ErrInvalidToken)
	}

	claims := &Claims{UserID: uint(sub)}
	claims.Email, _ = mc["email"].(string)
	claims.Role, _ = mc["role"].(string)
	return claims, nil
}

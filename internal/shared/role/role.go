// Package role defines the closed set of user roles.
package role

import (
	"fmt"
	"strings"
)

// Role identifies what a user is allowed to do. Its numeric value is also the
// primary key of the corresponding row in the roles lookup table.
type Role uint

const (
	Student Role = 1
	Company Role = 2
	// Admin is a college / placement administrator.
	Admin Role = 3
)

// All returns every role in seeding order.
func All() []Role {
	return []Role{Student, Company, Admin}
}

// String returns the canonical role name stored in the roles table.
func (r Role) String() string {
	switch r {
	case Student:
		return "Student"
	case Company:
		return "Company"
	case Admin:
		return "Admin"
	default:
		return fmt.Sprintf("Role(%d)", uint(r))
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case Student, Company, Admin:
		return true
	default:
		return false
	}
}

// Parse converts a role name (case-insensitive) into a Role.
func Parse(name string) (Role, error) {
	for _, r := range All() {
		if strings.EqualFold(r.String(), strings.TrimSpace(name)) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", name)
}

// FromID converts a roles table primary key into a Role.
func FromID(id uint) (Role, error) {
	r := Role(id)
	if !r.Valid() {
		return 0, fmt.Errorf("unknown role id %d", id)
	}
	return r, nil
}

// Set is an immutable set of roles used by access checks.
type Set map[Role]struct{}

// NewSet builds a Set from the given roles.
func NewSet(roles ...Role) Set {
	s := make(Set, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Contains reports whether r is in the set.
func (s Set) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

package role

import (
	"errors"
	"fmt"
)

// Role identifies a chat privilege tier. The set is closed: any value
// outside the five constants below is invalid.
type Role string

const (
	User        Role = "user"
	JuniorAdmin Role = "junior-admin"
	Admin       Role = "admin"
	SeniorAdmin Role = "senior-admin"
	Creator     Role = "creator"
)

// ErrUnknownRole is returned for any value outside the closed role set.
var ErrUnknownRole = errors.New("unknown role")

// All returns the roles in ascending privilege order.
func All() []Role {
	return []Role{User, JuniorAdmin, Admin, SeniorAdmin, Creator}
}

// Valid reports whether r is one of the five known roles.
func (r Role) Valid() bool {
	switch r {
	case User, JuniorAdmin, Admin, SeniorAdmin, Creator:
		return true
	}
	return false
}

// Parse converts a stored or user-supplied string into a Role.
func Parse(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Label returns the display name for a role.
func (r Role) Label() (string, error) {
	switch r {
	case User:
		return "User", nil
	case JuniorAdmin:
		return "Junior Admin", nil
	case Admin:
		return "Admin", nil
	case SeniorAdmin:
		return "Senior Admin", nil
	case Creator:
		return "Creator", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
}

// Rank maps a role to its position in the hierarchy (user=1 .. creator=5).
// Advisory only: authorization uses the pairwise predicates in this
// package, never a rank comparison, because admin powers are scoped
// rather than transitive.
func (r Role) Rank() int {
	switch r {
	case User:
		return 1
	case JuniorAdmin:
		return 2
	case Admin:
		return 3
	case SeniorAdmin:
		return 4
	case Creator:
		return 5
	}
	return 0
}

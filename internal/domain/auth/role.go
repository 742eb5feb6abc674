package auth

import (
	"fmt"
	"strings"
)

// Role represents an authorization level.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// roleRank defines the total order user < admin < superadmin.
// Unknown roles rank 0 and never satisfy a minimum.
var roleRank = map[Role]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// Roles returns every known role from lowest to highest.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleSuperAdmin}
}

// ParseRole converts text into a Role. Unknown values are an error.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Rank returns the position of r in the order, or 0 when r is unknown.
func (r Role) Rank() int { return roleRank[r] }

// AtLeast reports whether r is min or strictly above it.
func (r Role) AtLeast(minimum Role) bool {
	have, need := r.Rank(), minimum.Rank()
	return have > 0 && need > 0 && have >= need
}

func (r Role) String() string { return string(r) }

// UnmarshalText validates roles when decoding TOML, JSON map keys and env values.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) { return []byte(r), nil }

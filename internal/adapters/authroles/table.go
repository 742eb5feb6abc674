// Package authroles provides role policies: a static username table, a TOML-loaded
// variant, and directory-backed policies with optional caching.
package authroles

import (
	"context"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/ports"
)

var _ ports.RolePolicy = Table{}

// Table maps exact usernames to roles; every other username gets Default.
type Table struct {
	Entries map[string]domainauth.Role `toml:"roles"`
	Default domainauth.Role            `toml:"default"`
}

// DefaultTable is the built-in policy: the reserved usernames "superadmin" and
// "admin" map to their namesake roles and everyone else is a user.
func DefaultTable() Table {
	return Table{
		Entries: map[string]domainauth.Role{
			"superadmin": domainauth.RoleSuperAdmin,
			"admin":      domainauth.RoleAdmin,
		},
		Default: domainauth.RoleUser,
	}
}

// RoleFor implements ports.RolePolicy. It never fails.
func (t Table) RoleFor(_ context.Context, username string) (domainauth.Role, error) {
	return t.Lookup(username), nil
}

// Lookup returns the role for username without a context.
func (t Table) Lookup(username string) domainauth.Role {
	if r, ok := t.Entries[username]; ok {
		return r
	}
	if t.Default == "" {
		return domainauth.RoleUser
	}
	return t.Default
}

// Validate checks every role in the table.
func (t Table) Validate() error {
	if t.Default != "" && !t.Default.Valid() {
		return fmt.Errorf("default role %q is not a known role", t.Default)
	}
	for name, r := range t.Entries {
		if name == "" {
			return fmt.Errorf("empty username in role table")
		}
		if !r.Valid() {
			return fmt.Errorf("role %q for %q is not a known role", r, name)
		}
	}
	return nil
}

// LoadTable reads a TOML policy file:
//
//	default = "user"
//
//	[roles]
//	superadmin = "superadmin"
//	admin = "admin"
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read role policy: %w", err)
	}
	var t Table
	if err := toml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parse role policy: %w", err)
	}
	if t.Default == "" {
		t.Default = domainauth.RoleUser
	}
	if err := t.Validate(); err != nil {
		return Table{}, fmt.Errorf("role policy %s: %w", path, err)
	}
	return t, nil
}

package authroles

import (
	"context"
	"fmt"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/ports"
)

var _ ports.RolePolicy = (*DirectoryPolicy)(nil)

// DirectoryPolicy consults a durable role directory first and falls back to a
// static table for usernames the directory does not know.
type DirectoryPolicy struct {
	Directory ports.RoleDirectory
	Fallback  Table
}

// NewDirectoryPolicy wires a directory in front of the fallback table.
func NewDirectoryPolicy(dir ports.RoleDirectory, fallback Table) *DirectoryPolicy {
	return &DirectoryPolicy{Directory: dir, Fallback: fallback}
}

func (p *DirectoryPolicy) RoleFor(ctx context.Context, username string) (domainauth.Role, error) {
	role, found, err := p.Directory.Lookup(ctx, username)
	if err != nil {
		return "", fmt.Errorf("role directory lookup: %w", err)
	}
	if !found {
		return p.Fallback.Lookup(username), nil
	}
	if !role.Valid() {
		return "", fmt.Errorf("role directory returned unknown role %q for %q", role, username)
	}
	return role, nil
}

package ports

// Package ports defines interfaces (hexagonal ports) for identity and session behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
)

// SessionStore persists exactly one session record for one client.
//
// Get reports present=false with a nil error when nothing is stored or the stored
// value cannot be decoded. A non-nil error means the store itself could not be reached.
type SessionStore interface {
	Get(ctx context.Context) (rec domainauth.Identity, present bool, err error)
	Set(ctx context.Context, rec domainauth.Identity) error
	Clear(ctx context.Context) error
}

// RecordCodec converts a session record to and from its stored text form.
type RecordCodec interface {
	Encode(rec domainauth.Identity) (string, error)
	Decode(raw string) (domainauth.Identity, error)
}

// CredentialVerifier checks a username/secret pair.
// It returns domainauth.ErrCredentialsRejected for a pair it does not accept.
type CredentialVerifier interface {
	Verify(ctx context.Context, creds domainauth.Credentials) error
}

// RolePolicy derives the role for an authenticated username.
type RolePolicy interface {
	RoleFor(ctx context.Context, username string) (domainauth.Role, error)
}

// RoleDirectory is a durable username to role assignment table.
type RoleDirectory interface {
	Lookup(ctx context.Context, username string) (role domainauth.Role, found bool, err error)
}

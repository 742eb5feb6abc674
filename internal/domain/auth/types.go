package auth

// Package auth contains domain-level types for identity, roles and access gating.
// It is pure and free of framework/adapter concerns.

import (
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// MaxUsernameLength bounds usernames in runes so a record always fits in one cookie.
const MaxUsernameLength = 128

// ErrCredentialsRejected is returned by credential verifiers when a username/secret
// pair is not accepted. It is an ordinary outcome, not a fault.
var ErrCredentialsRejected = errors.New("credentials rejected")

// Identity is the authenticated principal. It is persisted 1:1 as the session record.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Valid reports whether the identity carries a username and a known role.
func (i Identity) Valid() bool {
	return strings.TrimSpace(i.Username) != "" && WellFormedUsername(i.Username) && i.Role.Valid()
}

// WellFormedUsername reports whether name is valid UTF-8 and at most
// MaxUsernameLength runes. Anything else would not survive the JSON record.
func WellFormedUsername(name string) bool {
	return utf8.ValidString(name) && utf8.RuneCountInString(name) <= MaxUsernameLength
}

// Credentials is the caller-supplied login input.
type Credentials struct {
	Username string
	Secret   string
}

// Missing reports whether either field is empty once surrounding whitespace is ignored.
func (c Credentials) Missing() bool {
	return strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Secret) == ""
}

// LogValue keeps the secret out of structured logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.Bool("secret_present", c.Secret != ""),
	)
}

// SessionState is the in-memory view held by an auth context.
// Identity is nil when nobody is signed in.
type SessionState struct {
	Identity    *Identity
	Initialized bool
}

// IsAuthenticated is the derived view identity != absent.
func (s SessionState) IsAuthenticated() bool { return s.Identity != nil }

// Role returns the current role or the empty role when signed out.
func (s SessionState) Role() Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

// Clone returns a copy that shares no memory with s.
func (s SessionState) Clone() SessionState {
	out := SessionState{Initialized: s.Initialized}
	if s.Identity != nil {
		id := *s.Identity
		out.Identity = &id
	}
	return out
}

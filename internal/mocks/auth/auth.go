package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialVerifier = (*MockCredentialVerifier)(nil)
	_ ports.SessionStore       = (*FlakySessionStore)(nil)
	_ ports.RolePolicy         = (*StaticRolePolicy)(nil)
	_ ports.RoleDirectory      = (*MemoryRoleDirectory)(nil)
)

// MockCredentialVerifier records calls and delegates to VerifyFunc when set.
// Without VerifyFunc it accepts every pair.
type MockCredentialVerifier struct {
	VerifyFunc func(ctx context.Context, creds domainauth.Credentials) error

	mu    sync.Mutex
	calls []domainauth.Credentials
}

func (m *MockCredentialVerifier) Verify(ctx context.Context, creds domainauth.Credentials) error {
	m.mu.Lock()
	m.calls = append(m.calls, creds)
	m.mu.Unlock()
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, creds)
	}
	return nil
}

// Calls returns the credentials seen so far.
func (m *MockCredentialVerifier) Calls() []domainauth.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domainauth.Credentials(nil), m.calls...)
}

// FlakySessionStore holds one record in memory and lets tests inject failures.
// When Block is true every call waits for ctx to finish, simulating a store that never answers.
type FlakySessionStore struct {
	GetErr   error
	SetErr   error
	ClearErr error
	Block    bool

	mu     sync.Mutex
	rec    *domainauth.Identity
	gets   int
	sets   int
	clears int
}

// NewFlakySessionStore returns an empty store, optionally seeded with one record.
func NewFlakySessionStore(seed *domainauth.Identity) *FlakySessionStore {
	s := &FlakySessionStore{}
	if seed != nil {
		cp := *seed
		s.rec = &cp
	}
	return s
}

func (s *FlakySessionStore) wait(ctx context.Context) error {
	if !s.Block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *FlakySessionStore) Get(ctx context.Context) (domainauth.Identity, bool, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()
	if err := s.wait(ctx); err != nil {
		return domainauth.Identity{}, false, err
	}
	if s.GetErr != nil {
		return domainauth.Identity{}, false, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return domainauth.Identity{}, false, nil
	}
	return *s.rec, true, nil
}

func (s *FlakySessionStore) Set(ctx context.Context, rec domainauth.Identity) error {
	s.mu.Lock()
	s.sets++
	s.mu.Unlock()
	if err := s.wait(ctx); err != nil {
		return err
	}
	if s.SetErr != nil {
		return s.SetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = &rec
	return nil
}

func (s *FlakySessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.clears++
	s.mu.Unlock()
	if err := s.wait(ctx); err != nil {
		return err
	}
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}

// Record returns the stored record, if any.
func (s *FlakySessionStore) Record() (domainauth.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return domainauth.Identity{}, false
	}
	return *s.rec, true
}

// Counts returns how many times Get, Set and Clear were called.
func (s *FlakySessionStore) Counts() (gets, sets, clears int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.sets, s.clears
}

// StaticRolePolicy maps usernames through a fixed map.
type StaticRolePolicy struct {
	Roles   map[string]domainauth.Role
	Default domainauth.Role
	Err     error
}

func (p StaticRolePolicy) RoleFor(_ context.Context, username string) (domainauth.Role, error) {
	if p.Err != nil {
		return "", p.Err
	}
	if r, ok := p.Roles[username]; ok {
		return r, nil
	}
	if p.Default == "" {
		return domainauth.RoleUser, nil
	}
	return p.Default, nil
}

// MemoryRoleDirectory is an in-memory role directory for unit tests.
type MemoryRoleDirectory struct {
	Err error

	mu      sync.Mutex
	entries map[string]domainauth.Role
	lookups int
}

// NewMemoryRoleDirectory creates a directory seeded with entries.
func NewMemoryRoleDirectory(entries map[string]domainauth.Role) *MemoryRoleDirectory {
	d := &MemoryRoleDirectory{entries: make(map[string]domainauth.Role, len(entries))}
	for k, v := range entries {
		d.entries[k] = v
	}
	return d
}

func (d *MemoryRoleDirectory) Lookup(_ context.Context, username string) (domainauth.Role, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++
	if d.Err != nil {
		return "", false, d.Err
	}
	r, ok := d.entries[username]
	return r, ok, nil
}

// Put assigns a role.
func (d *MemoryRoleDirectory) Put(username string, role domainauth.Role) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[username] = role
}

// Lookups returns the number of Lookup calls.
func (d *MemoryRoleDirectory) Lookups() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lookups
}

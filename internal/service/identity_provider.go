package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/ports"
)

// DefaultStoreTimeout bounds every session store and role policy call.
const DefaultStoreTimeout = 2 * time.Second

// IdentityProviderOptions groups dependencies for IdentityProvider.
type IdentityProviderOptions struct {
	Verifier     ports.CredentialVerifier
	Roles        ports.RolePolicy
	Store        ports.SessionStore
	StoreTimeout time.Duration
	Logger       *slog.Logger
}

// IdentityProvider validates credentials, derives a role and reads/writes the session store.
type IdentityProvider struct {
	verifier ports.CredentialVerifier
	roles    ports.RolePolicy
	store    ports.SessionStore
	timeout  time.Duration
	logger   *slog.Logger
}

// NewIdentityProvider constructs a new IdentityProvider.
func NewIdentityProvider(opts IdentityProviderOptions) (*IdentityProvider, error) {
	switch {
	case opts.Verifier == nil:
		return nil, errors.New("credential verifier is required")
	case opts.Roles == nil:
		return nil, errors.New("role policy is required")
	case opts.Store == nil:
		return nil, errors.New("session store is required")
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &IdentityProvider{
		verifier: opts.Verifier,
		roles:    opts.Roles,
		store:    opts.Store,
		timeout:  opts.StoreTimeout,
		logger:   opts.Logger.With("component", "identity_provider"),
	}, nil
}

// Authenticate checks creds, derives the role and writes the session record.
// Nothing is written unless every step succeeds.
func (p *IdentityProvider) Authenticate(ctx context.Context, creds domainauth.Credentials) (domainauth.Identity, error) {
	if creds.Missing() {
		return domainauth.Identity{}, fmt.Errorf("%w: username and secret are required", ErrInvalidCredentials)
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if !domainauth.WellFormedUsername(creds.Username) {
		return domainauth.Identity{}, fmt.Errorf("%w: malformed username", ErrInvalidCredentials)
	}

	if err := p.verifier.Verify(ctx, creds); err != nil {
		if errors.Is(err, domainauth.ErrCredentialsRejected) {
			return domainauth.Identity{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return domainauth.Identity{}, fmt.Errorf("%w: %w", ErrVerifierUnavailable, err)
	}

	role, err := p.roleFor(ctx, creds.Username)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("%w: role lookup: %w", ErrStoreUnavailable, err)
	}

	id := domainauth.Identity{Username: creds.Username, Role: role}
	storeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.store.Set(storeCtx, id); err != nil {
		return domainauth.Identity{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return id, nil
}

func (p *IdentityProvider) roleFor(ctx context.Context, username string) (domainauth.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	role, err := p.roles.RoleFor(ctx, username)
	if err != nil {
		return "", err
	}
	if !role.Valid() {
		return "", fmt.Errorf("policy returned unknown role %q", role)
	}
	return role, nil
}

// Restore reads the stored record once. Store failures and invalid records read as absent.
func (p *IdentityProvider) Restore(ctx context.Context) (domainauth.Identity, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	id, ok, err := p.store.Get(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "session store read failed; treating as signed out", "error", err)
		return domainauth.Identity{}, false
	}
	if !ok || !id.Valid() {
		return domainauth.Identity{}, false
	}
	return id, true
}

// Forget clears the stored record.
func (p *IdentityProvider) Forget(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the credential verification mode.
type AuthMode string

const (
	// AuthModeStub accepts any non-empty secret (or a shared one). Development only.
	AuthModeStub AuthMode = "stub"
	// AuthModeOIDC verifies credentials against an OIDC provider with the password grant.
	AuthModeOIDC AuthMode = "oidc"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "stub", "oidc":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: stub, oidc)", v)
	}
}

const defaultStoreTimeout = 2 * time.Second

// OIDCConfig contains OIDC provider configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Scope        string `env:"SCOPE"          envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	// UsernameClaim is a JMESPath expression over the ID token claims.
	UsernameClaim string `env:"USERNAME_CLAIM" envDefault:"preferred_username"`
}

// StubConfig controls the development verifier.
type StubConfig struct {
	// SharedSecret, when set, must be supplied by every sign-in.
	SharedSecret string `env:"SHARED_SECRET"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which credential verifier to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"stub"`

	// StoreTimeout bounds every session store and role lookup during sign-in.
	StoreTimeout time.Duration `env:"AUTH_STORE_TIMEOUT" envDefault:"2s"`

	// RolePolicyFile is an optional TOML username-to-role table. Empty uses the built-in table.
	RolePolicyFile string `env:"AUTH_ROLE_POLICY_FILE"`

	// RoleDirectory consults the role_assignments table before the policy table.
	RoleDirectory bool `env:"AUTH_ROLE_DIRECTORY_ENABLED" envDefault:"false"`

	// RoleCacheTTL caches directory lookups in Redis. Zero disables the cache.
	RoleCacheTTL time.Duration `env:"AUTH_ROLE_CACHE_TTL" envDefault:"1m"`

	OIDC OIDCConfig `envPrefix:"AUTH_OIDC_"`
	Stub StubConfig `envPrefix:"AUTH_STUB_"`
}

// Sanitize applies guardrails to auth configuration values.
func (c *AuthConfig) Sanitize() {
	if c.Mode == "" {
		c.Mode = AuthModeStub
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = defaultStoreTimeout
	}
	if c.RoleCacheTTL < 0 {
		c.RoleCacheTTL = 0
	}
	c.RolePolicyFile = strings.TrimSpace(c.RolePolicyFile)
	c.OIDC.DiscoveryURL = strings.TrimSpace(c.OIDC.DiscoveryURL)
	if c.OIDC.UsernameClaim = strings.TrimSpace(c.OIDC.UsernameClaim); c.OIDC.UsernameClaim == "" {
		c.OIDC.UsernameClaim = "preferred_username"
	}
}

// Validate checks that the selected mode is fully configured.
func (c *AuthConfig) Validate() error {
	if c.Mode != AuthModeOIDC {
		return nil
	}
	var errs []error
	if c.OIDC.ClientID == "" {
		errs = append(errs, errors.New("AUTH_OIDC_CLIENT_ID is required when AUTH_MODE=oidc"))
	}
	if c.OIDC.DiscoveryURL == "" {
		errs = append(errs, errors.New("AUTH_OIDC_DISCOVERY_URL is required when AUTH_MODE=oidc"))
	}
	return errors.Join(errs...)
}

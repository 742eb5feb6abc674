package config

import (
	"errors"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication and role policy configuration
//   - session.go: Session cookie configuration
//   - database.go: Database and cache configuration
//   - http.go: HTTP server configuration
//   - observability.go: Metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Session cookie configuration
	Session SessionConfig `envPrefix:"SESSION_"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Observability configuration
	Observability ObservabilityConfig

	// PortalctlStateFile is where portalctl keeps its session record.
	// Empty means the per-user config directory.
	PortalctlStateFile string `env:"PORTALCTL_STATE_FILE"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Session.Sanitize()
	c.Redis.Sanitize()
	c.Observability.Sanitize()
	c.PortalctlStateFile = strings.TrimSpace(c.PortalctlStateFile)

	c.detectDevMode()
}

// Validate reports configuration that cannot be started with. Call it after Sanitize.
func (c *AppConfig) Validate() error {
	return errors.Join(
		c.HTTP.Validate(),
		c.Auth.Validate(),
	)
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// RoleDirectoryEnabled reports whether role lookups go to Postgres.
func (c *AppConfig) RoleDirectoryEnabled() bool {
	return c.Auth.RoleDirectory
}

// RoleCacheEnabled reports whether directory lookups are cached in Redis.
func (c *AppConfig) RoleCacheEnabled() bool {
	return c.Auth.RoleDirectory && c.Redis.Enabled && c.Auth.RoleCacheTTL > 0
}

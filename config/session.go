package config

import (
	"strings"
	"time"
)

const defaultSessionCookieName = "portal_session"

// SessionConfig controls the session cookie.
type SessionConfig struct {
	CookieName string `env:"COOKIE_NAME" envDefault:"portal_session"`

	// MaxAge of zero makes a browser-session cookie.
	MaxAge time.Duration `env:"MAX_AGE" envDefault:"12h"`

	// EncryptionKey seals the cookie with AES-GCM. A 64-character hex string is
	// used as the raw key; anything else is hashed. Required for production.
	EncryptionKey string `env:"ENCRYPTION_KEY"`
}

// Sanitize applies guardrails to session configuration values.
func (c *SessionConfig) Sanitize() {
	if c.CookieName = strings.TrimSpace(c.CookieName); c.CookieName == "" {
		c.CookieName = defaultSessionCookieName
	}
	if c.MaxAge < 0 {
		c.MaxAge = 0
	}
}

// Sealed reports whether cookies will be encrypted.
func (c *SessionConfig) Sealed() bool {
	return c.EncryptionKey != ""
}

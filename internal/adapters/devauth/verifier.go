// Package devauth provides a config-driven CredentialVerifier for local development
// and demonstrations. It performs no real credential verification.
package devauth

import (
	"context"
	"crypto/subtle"
	"strings"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/ports"
)

// Config controls the dev verifier.
type Config struct {
	// SharedSecret, when set, must be supplied by every caller. When empty any
	// non-empty secret is accepted.
	SharedSecret string
}

var _ ports.CredentialVerifier = (*Verifier)(nil)

// Verifier accepts any username with a non-empty secret.
type Verifier struct {
	shared []byte
}

// NewVerifier constructs a dev verifier from Config.
func NewVerifier(cfg Config) *Verifier {
	v := &Verifier{}
	if cfg.SharedSecret != "" {
		v.shared = []byte(cfg.SharedSecret)
	}
	return v
}

// Verifies reports whether the verifier checks secrets at all.
func (v *Verifier) Verifies() bool { return len(v.shared) > 0 }

func (v *Verifier) Verify(_ context.Context, creds domainauth.Credentials) error {
	if strings.TrimSpace(creds.Username) == "" || strings.TrimSpace(creds.Secret) == "" {
		return domainauth.ErrCredentialsRejected
	}
	if len(v.shared) > 0 && subtle.ConstantTimeCompare([]byte(creds.Secret), v.shared) != 1 {
		return domainauth.ErrCredentialsRejected
	}
	return nil
}

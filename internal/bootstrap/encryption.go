package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/target/programme-portal/config"
	"github.com/target/programme-portal/internal/adapters/sessioncodec"
	"github.com/target/programme-portal/internal/data/cryptoutil"
)

// sessionPurpose binds sealed session records so they cannot be replayed as other sealed values.
const sessionPurpose = "portal-session-v1"

// BuildSessionCodec returns the cookie codec. With no key configured records are
// only encoded, which is acceptable for local development and logged loudly.
func BuildSessionCodec(cfg config.SessionConfig, logger *slog.Logger) (*sessioncodec.Codec, error) {
	if !cfg.Sealed() {
		if logger != nil {
			logger.Warn("SESSION_ENCRYPTION_KEY is empty; session cookies are not encrypted")
		}
		return sessioncodec.New(cryptoutil.PlainSealer{}), nil
	}

	sealer, err := cryptoutil.NewAESGCMSealer(cryptoutil.DeriveKey(cfg.EncryptionKey), sessionPurpose)
	if err != nil {
		return nil, fmt.Errorf("session sealer: %w", err)
	}
	return sessioncodec.New(sealer), nil
}

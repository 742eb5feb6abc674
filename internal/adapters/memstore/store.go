// Package memstore is an in-process session store used by tests and local tooling.
package memstore

import (
	"context"
	"log/slog"
	"sync"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/ports"
)

var _ ports.SessionStore = (*Store)(nil)

// Store keeps the encoded record in memory so decode failures behave like a real backend.
type Store struct {
	codec  ports.RecordCodec
	logger *slog.Logger

	mu  sync.RWMutex
	raw string
	set bool
}

// New returns an empty store.
func New(codec ports.RecordCodec, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{codec: codec, logger: logger}
}

func (s *Store) Get(ctx context.Context) (domainauth.Identity, bool, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Identity{}, false, err
	}
	s.mu.RLock()
	raw, ok := s.raw, s.set
	s.mu.RUnlock()
	if !ok {
		return domainauth.Identity{}, false, nil
	}
	rec, err := s.codec.Decode(raw)
	if err != nil {
		s.logger.DebugContext(ctx, "discarding unreadable session record", "error", err)
		return domainauth.Identity{}, false, nil
	}
	return rec, true, nil
}

func (s *Store) Set(ctx context.Context, rec domainauth.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := s.codec.Encode(rec)
	if err != nil {
		return err
	}
	s.PutRaw(raw)
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw, s.set = "", false
	return nil
}

// PutRaw stores an already-encoded value without validation.
func (s *Store) PutRaw(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw, s.set = raw, true
}

// Raw returns the stored encoded value.
func (s *Store) Raw() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw, s.set
}

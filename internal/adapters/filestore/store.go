// Package filestore keeps the session record in a local file for command-line clients.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/ports"
)

var _ ports.SessionStore = (*Store)(nil)

// Store persists one record at Path. Writes go to a temp file in the same
// directory and are renamed into place so readers never see a partial record.
type Store struct {
	path   string
	codec  ports.RecordCodec
	logger *slog.Logger

	mu sync.Mutex
}

// New returns a store rooted at path. The parent directory is created on first write.
func New(path string, codec ports.RecordCodec, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("filestore: path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, codec: codec, logger: logger}, nil
}

// DefaultPath returns the per-user state file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "programme-portal", "session"), nil
}

// Path returns the file location.
func (s *Store) Path() string { return s.path }

func (s *Store) Get(ctx context.Context) (domainauth.Identity, bool, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Identity{}, false, err
	}
	s.mu.Lock()
	b, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return domainauth.Identity{}, false, nil
	}
	if err != nil {
		return domainauth.Identity{}, false, fmt.Errorf("read session file: %w", err)
	}
	rec, err := s.codec.Decode(string(b))
	if err != nil {
		s.logger.DebugContext(ctx, "discarding unreadable session file", "path", s.path, "error", err)
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
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAtomic([]byte(raw))
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (s *Store) writeAtomic(b []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

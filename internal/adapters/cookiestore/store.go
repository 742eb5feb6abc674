// Package cookiestore keeps the session record in a single browser cookie.
// A Store is bound to one request/response pair.
package cookiestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/ports"
)

// DefaultName is the well-known cookie key for the session record.
const DefaultName = "portal_session"

// maxCookieBytes is the practical per-cookie limit browsers enforce.
const maxCookieBytes = 4096

// ErrTooLarge is returned by Set when the encoded record does not fit in a cookie.
var ErrTooLarge = errors.New("session record exceeds cookie size limit")

// Options control the cookie attributes.
type Options struct {
	Name   string
	Domain string
	// MaxAge of zero makes a browser-session cookie.
	MaxAge time.Duration
	// ForceSecure marks the cookie Secure even when the request arrived over plain HTTP.
	ForceSecure bool
}

var _ ports.SessionStore = (*Store)(nil)

// Store implements ports.SessionStore over one request's cookie jar. Writes are
// recorded locally as well, so a Get after Set on the same Store sees the write.
type Store struct {
	w      http.ResponseWriter
	r      *http.Request
	codec  ports.RecordCodec
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	written bool
	value   string
}

// New binds a store to a request and its response writer.
func New(w http.ResponseWriter, r *http.Request, codec ports.RecordCodec, opts Options, logger *slog.Logger) *Store {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{w: w, r: r, codec: codec, opts: opts, logger: logger}
}

func (s *Store) Get(ctx context.Context) (domainauth.Identity, bool, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Identity{}, false, err
	}
	raw, ok := s.raw()
	if !ok || raw == "" {
		return domainauth.Identity{}, false, nil
	}
	rec, err := s.codec.Decode(raw)
	if err != nil {
		s.logger.DebugContext(ctx, "discarding unreadable session cookie", "cookie", s.opts.Name, "error", err)
		return domainauth.Identity{}, false, nil
	}
	return rec, true, nil
}

func (s *Store) Set(ctx context.Context, rec domainauth.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := s.codec.Encode(rec)
	if err != nil {
		return err
	}
	if len(s.opts.Name)+len(value) > maxCookieBytes {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, len(value))
	}
	c := s.cookie(value)
	if s.opts.MaxAge > 0 {
		c.MaxAge = int(s.opts.MaxAge.Seconds())
	}
	http.SetCookie(s.w, c)
	s.remember(value)
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := s.cookie("")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0).UTC()
	http.SetCookie(s.w, c)
	s.remember("")
	return nil
}

func (s *Store) raw() (string, bool) {
	s.mu.Lock()
	if s.written {
		defer s.mu.Unlock()
		return s.value, true
	}
	s.mu.Unlock()
	c, err := s.r.Cookie(s.opts.Name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

func (s *Store) remember(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = true
	s.value = value
}

// cookie mirrors the attributes used for both setting and deleting so browsers
// match the same cookie.
func (s *Store) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     s.opts.Name,
		Value:    value,
		Path:     "/",
		Domain:   s.opts.Domain,
		HttpOnly: true,
		Secure:   s.opts.ForceSecure || IsSecureRequest(s.r),
		SameSite: http.SameSiteLaxMode,
	}
}

// IsSecureRequest reports whether the request arrived over TLS, directly or via a proxy.
func IsSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

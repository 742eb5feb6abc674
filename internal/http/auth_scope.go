package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/programme-portal/internal/adapters/cookiestore"
	"github.com/target/programme-portal/internal/observability/statsd"
	"github.com/target/programme-portal/internal/ports"
	"github.com/target/programme-portal/internal/service"
)

// SessionScopeConfig groups what every request-scoped auth context needs.
type SessionScopeConfig struct {
	Codec        ports.RecordCodec
	Cookie       cookiestore.Options
	Verifier     ports.CredentialVerifier
	Roles        ports.RolePolicy
	StoreTimeout time.Duration
	Metrics      statsd.Sink
	Logger       *slog.Logger
}

// SessionScope provisions one AuthContext per request, backed by the
// request's session cookie. The server keeps no session state between requests.
type SessionScope struct {
	cfg   SessionScopeConfig
	audit service.Observer
}

// NewSessionScope validates cfg.
func NewSessionScope(cfg SessionScopeConfig) (*SessionScope, error) {
	switch {
	case cfg.Codec == nil:
		return nil, errors.New("session codec is required")
	case cfg.Verifier == nil:
		return nil, errors.New("credential verifier is required")
	case cfg.Roles == nil:
		return nil, errors.New("role policy is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &SessionScope{cfg: cfg, audit: service.AuditObserver(cfg.Logger)}, nil
}

// Open builds an uninitialized AuthContext for the request.
func (s *SessionScope) Open(w http.ResponseWriter, r *http.Request) (*service.AuthContext, error) {
	store := cookiestore.New(w, r, s.cfg.Codec, s.cfg.Cookie, s.cfg.Logger)
	provider, err := service.NewIdentityProvider(service.IdentityProviderOptions{
		Verifier:     s.cfg.Verifier,
		Roles:        s.cfg.Roles,
		Store:        store,
		StoreTimeout: s.cfg.StoreTimeout,
		Logger:       s.cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	return service.NewAuthContext(service.AuthContextOptions{
		Provider:  provider,
		Logger:    s.cfg.Logger,
		Metrics:   s.cfg.Metrics,
		Observers: []service.Observer{s.audit},
	}), nil
}

// Middleware provisions and initializes the AuthContext before calling next.
func (s *SessionScope) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, err := s.Open(w, r)
		if err != nil {
			s.cfg.Logger.ErrorContext(r.Context(), "auth context setup failed", "error", err)
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error"})
			return
		}
		ac.Initialize(r.Context())
		next.ServeHTTP(w, r.WithContext(service.WithAuthContext(r.Context(), ac)))
	})
}

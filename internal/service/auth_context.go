package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/observability/metrics"
	"github.com/target/programme-portal/internal/observability/statsd"
)

// Observer is called after every state change with the previous and the new state.
// Observers run synchronously on the mutating goroutine and must not call Login or Logout.
type Observer func(prev, next domainauth.SessionState)

// AuthContextOptions groups dependencies for AuthContext.
type AuthContextOptions struct {
	Provider  *IdentityProvider
	Logger    *slog.Logger
	Metrics   statsd.Sink
	Observers []Observer
}

type subscription struct {
	id uint64
	fn Observer
}

// AuthContext is the single source of truth for who the current caller is,
// for one client scope (one HTTP request or one CLI invocation).
type AuthContext struct {
	provider *IdentityProvider
	logger   *slog.Logger
	metrics  statsd.Sink

	once sync.Once
	opMu sync.Mutex // serializes Initialize, Login and Logout

	mu    sync.RWMutex
	state domainauth.SessionState

	obsMu     sync.Mutex
	observers []subscription
	nextID    uint64
}

// NewAuthContext creates an uninitialized AuthContext.
func NewAuthContext(opts AuthContextOptions) *AuthContext {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &AuthContext{
		provider: opts.Provider,
		logger:   logger.With("component", "auth_context"),
		metrics:  opts.Metrics,
	}
	for _, o := range opts.Observers {
		a.Subscribe(o)
	}
	return a
}

// Initialize restores the stored identity. Only the first call reads the store;
// later calls return the current state unchanged.
func (a *AuthContext) Initialize(ctx context.Context) domainauth.SessionState {
	a.once.Do(func() {
		a.opMu.Lock()
		defer a.opMu.Unlock()

		id, ok := a.provider.Restore(ctx)
		a.apply(func(s *domainauth.SessionState) {
			if ok {
				s.Identity = &id
			}
			s.Initialized = true
		})
	})
	return a.State()
}

// Login authenticates and, on success, replaces the current identity.
// Ordinary failures wrap ErrLoginFailed and leave the state unchanged.
func (a *AuthContext) Login(ctx context.Context, username, secret string) error {
	a.Initialize(ctx)

	a.opMu.Lock()
	defer a.opMu.Unlock()

	start := time.Now()
	id, err := a.provider.Authenticate(ctx, domainauth.Credentials{Username: username, Secret: secret})
	if err != nil {
		result := metrics.ResultError
		if errors.Is(err, ErrInvalidCredentials) {
			result = metrics.ResultRejected
		}
		metrics.EmitLogin(a.metrics, metrics.LoginMetric{Result: result, Duration: time.Since(start), Err: err})
		a.logger.InfoContext(ctx, "login failed", "username", username, "error", err)
		return err
	}

	a.apply(func(s *domainauth.SessionState) { s.Identity = &id })
	metrics.EmitLogin(a.metrics, metrics.LoginMetric{
		Result:   metrics.ResultSuccess,
		Role:     id.Role.String(),
		Duration: time.Since(start),
	})
	return nil
}

// Logout clears the identity and the store. It always succeeds; a store
// failure is logged.
func (a *AuthContext) Logout(ctx context.Context) {
	a.Initialize(ctx)

	a.opMu.Lock()
	defer a.opMu.Unlock()

	if err := a.provider.Forget(ctx); err != nil {
		a.logger.WarnContext(ctx, "logout could not clear session store", "error", err)
	}
	a.apply(func(s *domainauth.SessionState) { s.Identity = nil })
	metrics.EmitLogout(a.metrics)
}

// State returns a snapshot of the session state.
func (a *AuthContext) State() domainauth.SessionState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Clone()
}

// Identity returns the current identity, if any.
func (a *AuthContext) Identity() (domainauth.Identity, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state.Identity == nil {
		return domainauth.Identity{}, false
	}
	return *a.state.Identity, true
}

// IsAuthenticated reports whether someone is signed in.
func (a *AuthContext) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Identity != nil
}

// Check evaluates gate against the current state.
func (a *AuthContext) Check(gate domainauth.Gate) domainauth.Decision {
	return gate.Evaluate(a.State())
}

// Subscribe registers fn and returns a function that removes it.
func (a *AuthContext) Subscribe(fn Observer) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	a.obsMu.Lock()
	a.nextID++
	id := a.nextID
	a.observers = append(a.observers, subscription{id: id, fn: fn})
	a.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.obsMu.Lock()
			defer a.obsMu.Unlock()
			for i, s := range a.observers {
				if s.id == id {
					a.observers = append(a.observers[:i], a.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// apply mutates the state under the write lock, then notifies observers
// outside it when anything observable changed. Callers hold opMu.
func (a *AuthContext) apply(mutate func(*domainauth.SessionState)) {
	a.mu.Lock()
	prev := a.state.Clone()
	mutate(&a.state)
	next := a.state.Clone()
	a.mu.Unlock()

	if sameState(prev, next) {
		return
	}
	a.obsMu.Lock()
	subs := append([]subscription(nil), a.observers...)
	a.obsMu.Unlock()
	for _, s := range subs {
		s.fn(prev, next)
	}
}

func sameState(a, b domainauth.SessionState) bool {
	if a.Initialized != b.Initialized {
		return false
	}
	switch {
	case a.Identity == nil && b.Identity == nil:
		return true
	case a.Identity == nil || b.Identity == nil:
		return false
	default:
		return *a.Identity == *b.Identity
	}
}

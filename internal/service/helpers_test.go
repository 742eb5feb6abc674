package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/target/programme-portal/internal/adapters/authroles"
	"github.com/target/programme-portal/internal/adapters/devauth"
	"github.com/target/programme-portal/internal/adapters/memstore"
	"github.com/target/programme-portal/internal/adapters/sessioncodec"
	"github.com/target/programme-portal/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMemStore() *memstore.Store {
	return memstore.New(sessioncodec.New(nil), discardLogger())
}

func newProvider(t *testing.T, store ports.SessionStore) *IdentityProvider {
	t.Helper()
	p, err := NewIdentityProvider(IdentityProviderOptions{
		Verifier: devauth.NewVerifier(devauth.Config{}),
		Roles:    authroles.DefaultTable(),
		Store:    store,
		Logger:   discardLogger(),
	})
	require.NoError(t, err)
	return p
}

// newProcess models one client process lifetime over a shared store.
func newProcess(t *testing.T, store ports.SessionStore, observers ...Observer) *AuthContext {
	t.Helper()
	return NewAuthContext(AuthContextOptions{
		Provider:  newProvider(t, store),
		Logger:    discardLogger(),
		Observers: observers,
	})
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/mocks"
	mockauth "github.com/target/programme-portal/internal/mocks/auth"
	"go.uber.org/mock/gomock"
)

func TestAuthContext_EmptyStoreInitializesSignedOut(t *testing.T) {
	ac := newProcess(t, newMemStore())

	state := ac.Initialize(context.Background())
	assert.True(t, state.Initialized)
	assert.Nil(t, state.Identity)
	assert.False(t, ac.IsAuthenticated())

	d := ac.Check(domainauth.NewGate(domainauth.RoleUser))
	assert.Equal(t, domainauth.GateDenied, d.State)
	assert.Equal(t, domainauth.DenyUnauthenticated, d.Reason)
}

func TestAuthContext_PendingBeforeInitialize(t *testing.T) {
	store := mockauth.NewFlakySessionStore(&domainauth.Identity{Username: "superadmin", Role: domainauth.RoleSuperAdmin})
	ac := newProcess(t, store)

	for _, minimum := range domainauth.Roles() {
		for range 3 {
			d := ac.Check(domainauth.NewGate(minimum))
			assert.Equal(t, domainauth.GatePending, d.State)
			assert.Nil(t, d.Identity)
		}
	}
	gets, _, _ := store.Counts()
	assert.Zero(t, gets)
}

func TestAuthContext_InitializeReadsStoreOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	store.EXPECT().Get(gomock.Any()).
		Return(domainauth.Identity{Username: "admin", Role: domainauth.RoleAdmin}, true, nil).
		Times(1)

	ac := newProcess(t, store)
	first := ac.Initialize(context.Background())
	second := ac.Initialize(context.Background())

	require.NotNil(t, first.Identity)
	assert.Equal(t, first, second)
}

func TestAuthContext_ConcurrentInitializeReadsOnce(t *testing.T) {
	store := mockauth.NewFlakySessionStore(&domainauth.Identity{Username: "alice", Role: domainauth.RoleUser})
	ac := newProcess(t, store)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := ac.Initialize(context.Background())
			assert.True(t, s.Initialized)
		}()
	}
	wg.Wait()

	gets, _, _ := store.Counts()
	assert.Equal(t, 1, gets)
}

func TestAuthContext_ReinitializeKeepsLiveSession(t *testing.T) {
	store := newMemStore()
	ac := newProcess(t, store)
	ac.Initialize(context.Background())
	require.NoError(t, ac.Login(context.Background(), "admin", "x"))

	// A stale record written behind our back must not replace the live identity.
	require.NoError(t, store.Set(context.Background(), domainauth.Identity{Username: "bob", Role: domainauth.RoleUser}))
	state := ac.Initialize(context.Background())

	require.NotNil(t, state.Identity)
	assert.Equal(t, "admin", state.Identity.Username)
}

func TestAuthContext_LoginAdminScenario(t *testing.T) {
	store := newMemStore()
	ac := newProcess(t, store)
	ac.Initialize(context.Background())

	require.NoError(t, ac.Login(context.Background(), "admin", "x"))

	raw, ok := store.Raw()
	require.True(t, ok)
	assert.JSONEq(t, `{"username":"admin","role":"admin"}`, raw)

	assert.Equal(t, domainauth.GateAdmitted, ac.Check(domainauth.NewGate(domainauth.RoleAdmin)).State)
	d := ac.Check(domainauth.NewGate(domainauth.RoleSuperAdmin))
	assert.Equal(t, domainauth.GateDenied, d.State)
	assert.Equal(t, domainauth.DenyInsufficientRole, d.Reason)
}

func TestAuthContext_LoginWithoutInitialize(t *testing.T) {
	ac := newProcess(t, newMemStore())
	require.NoError(t, ac.Login(context.Background(), "alice", "pw"))

	state := ac.State()
	assert.True(t, state.Initialized)
	require.NotNil(t, state.Identity)
	assert.Equal(t, domainauth.RoleUser, state.Identity.Role)
}

func TestAuthContext_FailedLoginLeavesStateUnchanged(t *testing.T) {
	store := newMemStore()
	ac := newProcess(t, store)
	require.NoError(t, ac.Login(context.Background(), "admin", "x"))

	var notified int
	ac.Subscribe(func(_, _ domainauth.SessionState) { notified++ })

	err := ac.Login(context.Background(), "superadmin", "")
	require.ErrorIs(t, err, ErrLoginFailed)

	id, ok := ac.Identity()
	require.True(t, ok)
	assert.Equal(t, domainauth.Identity{Username: "admin", Role: domainauth.RoleAdmin}, id)
	assert.Zero(t, notified)

	rec, present, err := store.Get(context.Background())
	require.NoError(t, err)
	require.True(t, present)
	assert.Equal(t, "admin", rec.Username)
}

func TestAuthContext_StoreUnavailableLoginFails(t *testing.T) {
	store := mockauth.NewFlakySessionStore(nil)
	store.SetErr = errors.New("quota exceeded")
	ac := newProcess(t, store)
	ac.Initialize(context.Background())

	err := ac.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.False(t, ac.IsAuthenticated())
}

func TestAuthContext_LogoutIsIdempotent(t *testing.T) {
	store := newMemStore()
	ac := newProcess(t, store)
	require.NoError(t, ac.Login(context.Background(), "alice", "pw"))

	ac.Logout(context.Background())
	afterOne := ac.State()
	_, storedOne := store.Raw()

	ac.Logout(context.Background())
	afterTwo := ac.State()
	_, storedTwo := store.Raw()

	assert.Equal(t, afterOne, afterTwo)
	assert.Nil(t, afterTwo.Identity)
	assert.False(t, storedOne)
	assert.False(t, storedTwo)
}

func TestAuthContext_LogoutSucceedsWhenStoreFails(t *testing.T) {
	store := mockauth.NewFlakySessionStore(&domainauth.Identity{Username: "alice", Role: domainauth.RoleUser})
	ac := newProcess(t, store)
	ac.Initialize(context.Background())
	require.True(t, ac.IsAuthenticated())

	store.ClearErr = errors.New("read-only filesystem")
	ac.Logout(context.Background())
	assert.False(t, ac.IsAuthenticated())
}

func TestAuthContext_RoundTripAcrossProcesses(t *testing.T) {
	store := newMemStore()

	first := newProcess(t, store)
	first.Initialize(context.Background())
	require.NoError(t, first.Login(context.Background(), "superadmin", "s3cret"))
	want, _ := first.Identity()

	second := newProcess(t, store)
	state := second.Initialize(context.Background())
	require.NotNil(t, state.Identity)
	assert.Equal(t, want, *state.Identity)
}

func TestAuthContext_LogoutThenNewProcessIsSignedOut(t *testing.T) {
	store := newMemStore()

	first := newProcess(t, store)
	require.NoError(t, first.Login(context.Background(), "alice", "pw"))
	first.Logout(context.Background())

	second := newProcess(t, store)
	second.Initialize(context.Background())
	assert.Equal(t, domainauth.GateDenied, second.Check(domainauth.NewGate(domainauth.RoleUser)).State)
}

func TestAuthContext_CorruptStoreStartsSignedOut(t *testing.T) {
	store := newMemStore()
	store.PutRaw("{not json")

	ac := newProcess(t, store)
	state := ac.Initialize(context.Background())
	assert.True(t, state.Initialized)
	assert.Nil(t, state.Identity)
}

func TestAuthContext_ObserversSeeChangesBeforeReturn(t *testing.T) {
	ac := newProcess(t, newMemStore())

	var seen []domainauth.SessionState
	unsubscribe := ac.Subscribe(func(_, next domainauth.SessionState) {
		seen = append(seen, next)
	})

	ac.Initialize(context.Background())
	require.Len(t, seen, 1)
	assert.True(t, seen[0].Initialized)

	require.NoError(t, ac.Login(context.Background(), "admin", "x"))
	require.Len(t, seen, 2)
	require.NotNil(t, seen[1].Identity)
	assert.Equal(t, domainauth.RoleAdmin, seen[1].Identity.Role)

	ac.Logout(context.Background())
	require.Len(t, seen, 3)
	assert.Nil(t, seen[2].Identity)

	// Already signed out: no change, no notification.
	ac.Logout(context.Background())
	assert.Len(t, seen, 3)

	unsubscribe()
	unsubscribe()
	require.NoError(t, ac.Login(context.Background(), "alice", "pw"))
	assert.Len(t, seen, 3)
}

func TestAuthContext_SnapshotsAreIsolated(t *testing.T) {
	ac := newProcess(t, newMemStore())
	require.NoError(t, ac.Login(context.Background(), "admin", "x"))

	snap := ac.State()
	snap.Identity.Role = domainauth.RoleSuperAdmin

	id, _ := ac.Identity()
	assert.Equal(t, domainauth.RoleAdmin, id.Role)
}

func TestAuthContext_ConcurrentReadersNeverSeeTornIdentity(t *testing.T) {
	ac := newProcess(t, newMemStore())
	ac.Initialize(context.Background())

	valid := map[domainauth.Identity]bool{
		{Username: "admin", Role: domainauth.RoleAdmin}:           true,
		{Username: "superadmin", Role: domainauth.RoleSuperAdmin}: true,
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if id, ok := ac.Identity(); ok && !valid[id] {
					t.Errorf("torn identity observed: %+v", id)
					return
				}
			}
		}()
	}

	for i := range 50 {
		name := "admin"
		if i%2 == 1 {
			name = "superadmin"
		}
		require.NoError(t, ac.Login(context.Background(), name, "x"))
	}
	close(stop)
	wg.Wait()
}

func TestMustAuthContext(t *testing.T) {
	assert.PanicsWithValue(t, ErrNoAuthContext, func() {
		MustAuthContext(context.Background())
	})

	ac := newProcess(t, newMemStore())
	ctx := WithAuthContext(context.Background(), ac)
	assert.Same(t, ac, MustAuthContext(ctx))

	got, ok := AuthContextFrom(ctx)
	assert.True(t, ok)
	assert.Same(t, ac, got)

	_, ok = AuthContextFrom(WithAuthContext(context.Background(), nil))
	assert.False(t, ok)
}

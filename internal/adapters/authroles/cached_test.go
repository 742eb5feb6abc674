package authroles

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/programme-portal/internal/domain/auth"
	mocks "github.com/target/programme-portal/internal/mocks/auth"
)

type memCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.data[key], nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	delete(c.data, key)
	return ok, nil
}

func TestCachedPolicy_CachesUpstreamAnswer(t *testing.T) {
	dir := mocks.NewMemoryRoleDirectory(map[string]domainauth.Role{"officer": domainauth.RoleAdmin})
	cache := newMemCache()
	p := NewCachedPolicy(CachedPolicyOptions{
		Next:  NewDirectoryPolicy(dir, DefaultTable()),
		Cache: cache,
		TTL:   30 * time.Second,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r, err := p.RoleFor(ctx, "officer")
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleAdmin, r)
	}
	assert.Equal(t, 1, dir.Lookups())
	assert.Equal(t, []byte("admin"), cache.data["portal:role:officer"])
	assert.Equal(t, 30*time.Second, cache.ttls["portal:role:officer"])

	require.NoError(t, p.Invalidate(ctx, "officer"))
	dir.Put("officer", domainauth.RoleSuperAdmin)
	r, err := p.RoleFor(ctx, "officer")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleSuperAdmin, r)
	assert.Equal(t, 2, dir.Lookups())
}

func TestCachedPolicy_CacheFailureFallsThrough(t *testing.T) {
	cache := newMemCache()
	cache.getErr = errors.New("redis down")
	p := NewCachedPolicy(CachedPolicyOptions{Next: DefaultTable(), Cache: cache})

	r, err := p.RoleFor(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, r)
}

func TestCachedPolicy_IgnoresGarbageEntries(t *testing.T) {
	cache := newMemCache()
	cache.data["portal:role:admin"] = []byte("owner")
	p := NewCachedPolicy(CachedPolicyOptions{Next: DefaultTable(), Cache: cache})

	r, err := p.RoleFor(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, r)
}

func TestCachedPolicy_UpstreamErrorNotCached(t *testing.T) {
	dir := mocks.NewMemoryRoleDirectory(nil)
	dir.Err = errors.New("db down")
	cache := newMemCache()
	p := NewCachedPolicy(CachedPolicyOptions{Next: NewDirectoryPolicy(dir, DefaultTable()), Cache: cache})

	_, err := p.RoleFor(context.Background(), "alice")
	require.Error(t, err)
	assert.Empty(t, cache.data)
}

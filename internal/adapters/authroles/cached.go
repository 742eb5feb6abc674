package authroles

import (
	"context"
	"log/slog"
	"time"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
	"github.com/target/programme-portal/internal/ports"
	"golang.org/x/sync/singleflight"
)

// Cache is the byte cache used by CachedPolicy. data.RedisCacheRepo implements it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
}

const defaultCachePrefix = "portal:role:"

var _ ports.RolePolicy = (*CachedPolicy)(nil)

// CachedPolicy caches another policy's answers. Concurrent misses for the same
// username share one upstream lookup. Cache failures fall through to the upstream policy.
type CachedPolicy struct {
	next   ports.RolePolicy
	cache  Cache
	ttl    time.Duration
	prefix string
	logger *slog.Logger
	group  singleflight.Group
}

// CachedPolicyOptions configures NewCachedPolicy.
type CachedPolicyOptions struct {
	Next   ports.RolePolicy
	Cache  Cache
	TTL    time.Duration
	Prefix string
	Logger *slog.Logger
}

// NewCachedPolicy wraps opts.Next with a cache.
func NewCachedPolicy(opts CachedPolicyOptions) *CachedPolicy {
	if opts.TTL <= 0 {
		opts.TTL = time.Minute
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultCachePrefix
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &CachedPolicy{
		next:   opts.Next,
		cache:  opts.Cache,
		ttl:    opts.TTL,
		prefix: opts.Prefix,
		logger: opts.Logger.With("component", "role_cache"),
	}
}

func (p *CachedPolicy) RoleFor(ctx context.Context, username string) (domainauth.Role, error) {
	key := p.prefix + username
	if b, err := p.cache.Get(ctx, key); err != nil {
		p.logger.WarnContext(ctx, "role cache read failed", "error", err)
	} else if len(b) > 0 {
		if r, parseErr := domainauth.ParseRole(string(b)); parseErr == nil {
			return r, nil
		}
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		r, lookupErr := p.next.RoleFor(ctx, username)
		if lookupErr != nil {
			return domainauth.Role(""), lookupErr
		}
		if setErr := p.cache.Set(ctx, key, []byte(r), p.ttl); setErr != nil {
			p.logger.WarnContext(ctx, "role cache write failed", "error", setErr)
		}
		return r, nil
	})
	if err != nil {
		return "", err
	}
	return v.(domainauth.Role), nil
}

// Invalidate drops the cached role for username.
func (p *CachedPolicy) Invalidate(ctx context.Context, username string) error {
	_, err := p.cache.Delete(ctx, p.prefix+username)
	return err
}

package service

import "context"

type authContextKey struct{}

// WithAuthContext provisions ac for everything that runs under ctx.
func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, ac)
}

// AuthContextFrom returns the provisioned auth context, if any.
func AuthContextFrom(ctx context.Context) (*AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey{}).(*AuthContext)
	return ac, ok && ac != nil
}

// MustAuthContext returns the provisioned auth context and panics with
// ErrNoAuthContext when there is none.
func MustAuthContext(ctx context.Context) *AuthContext {
	ac, ok := AuthContextFrom(ctx)
	if !ok {
		panic(ErrNoAuthContext)
	}
	return ac
}

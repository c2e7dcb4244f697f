package principal

import "context"

type contextKey struct{ name string }

var principalContextKey = &contextKey{name: "principal"}

// WithPrincipal stores p in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// FromContext returns the principal stored in the context.
// The boolean is false for requests without one or with an anonymous principal.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(Principal)
	if !ok || p.Anonymous() {
		return Principal{}, false
	}
	return p, true
}

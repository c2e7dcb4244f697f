package guard

import (
	"errors"
	"net/http"

	"github.com/rbmarquez/doctorq/pkg/principal"
	"github.com/rbmarquez/doctorq/pkg/rbac"
)

// ErrorHandler writes the response for a rejected request. err is
// ErrUnauthenticated or ErrForbidden.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareOption configures RequireGroup and RequirePermission.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	redirect string
	onError  ErrorHandler
}

// WithRedirect sends denied requests to url with 303 See Other instead of 403.
// Unauthenticated requests still get the error handler.
func WithRedirect(url string) MiddlewareOption {
	return func(c *middlewareConfig) { c.redirect = url }
}

// WithErrorHandler replaces the default plain-text 401/403 responses.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.onError = h
		}
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusForbidden
	if errors.Is(err, ErrUnauthenticated) {
		status = http.StatusUnauthorized
	}
	http.Error(w, http.StatusText(status), status)
}

// RequireGroup lets requests through only when the principal may enter group.
// The resolved permission set is stored in the request context.
func RequireGroup(g *Guard, group rbac.Group, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	return gate(g, func(set *rbac.PermissionSet) bool {
		return rbac.HasGroupAccess(set, group)
	}, opts)
}

// RequirePermission lets requests through only when the principal holds check.
// The resolved permission set is stored in the request context.
func RequirePermission(g *Guard, check rbac.Check, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	return gate(g, func(set *rbac.PermissionSet) bool {
		return rbac.Allows(set, check)
	}, opts)
}

func gate(g *Guard, allow func(*rbac.PermissionSet) bool, opts []MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{onError: defaultErrorHandler}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principal.FromContext(r.Context())
			if !ok {
				cfg.onError(w, r, ErrUnauthenticated)
				return
			}

			set := g.PermissionSet(r.Context(), p)
			if !allow(set) {
				if cfg.redirect != "" {
					http.Redirect(w, r, cfg.redirect, http.StatusSeeOther)
					return
				}
				cfg.onError(w, r, ErrForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(rbac.WithPermissionSet(r.Context(), set)))
		})
	}
}

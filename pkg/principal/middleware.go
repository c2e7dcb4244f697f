package principal

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rbmarquez/doctorq/pkg/logger"
)

// TokenExtractorFunc pulls a token from a request. It returns ErrNoToken when
// the request carries none.
type TokenExtractorFunc func(r *http.Request) (string, error)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	extractors   []TokenExtractorFunc
	skip         func(r *http.Request) bool
	unauthorized func(w http.ResponseWriter, r *http.Request, err error)
	logger       *slog.Logger
}

// WithExtractors sets the token sources, tried in order. Defaults to the bearer header.
func WithExtractors(extractors ...TokenExtractorFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.extractors = extractors
	}
}

// WithSkip bypasses token handling for matching requests.
func WithSkip(fn func(r *http.Request) bool) MiddlewareOption {
	return func(c *middlewareConfig) { c.skip = fn }
}

// WithUnauthorizedHandler replaces the plain 401 response for invalid tokens.
func WithUnauthorizedHandler(fn func(w http.ResponseWriter, r *http.Request, err error)) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.unauthorized = fn
		}
	}
}

func WithMiddlewareLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Middleware puts the principal of a valid token into the request context.
// Requests without a token pass through anonymous; invalid or expired tokens
// are rejected with 401.
func Middleware(codec *Codec, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{
		extractors: []TokenExtractorFunc{BearerTokenExtractor},
		logger:     logger.Discard(),
		unauthorized: func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.skip != nil && cfg.skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := extract(r, cfg.extractors)
			if errors.Is(err, ErrNoToken) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				cfg.unauthorized(w, r, err)
				return
			}

			p, err := codec.Principal(token)
			if err != nil {
				cfg.logger.DebugContext(r.Context(), "rejecting principal token", logger.Error(err))
				cfg.unauthorized(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func extract(r *http.Request, extractors []TokenExtractorFunc) (string, error) {
	for _, ex := range extractors {
		token, err := ex(r)
		if errors.Is(err, ErrNoToken) {
			continue
		}
		return token, err
	}
	return "", ErrNoToken
}

// BearerTokenExtractor reads "Authorization: Bearer <token>".
func BearerTokenExtractor(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", ErrNoToken
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// CookieTokenExtractor reads the token from the named cookie.
func CookieTokenExtractor(name string) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			return "", ErrNoToken
		}
		return c.Value, nil
	}
}

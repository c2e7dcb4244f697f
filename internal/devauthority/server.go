package devauthority

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rbmarquez/doctorq/pkg/httpserver"
	"github.com/rbmarquez/doctorq/pkg/logger"
	"github.com/rbmarquez/doctorq/pkg/requestid"
)

// Option configures the router.
type Option func(*options)

type options struct {
	token  string
	logger *slog.Logger
	probes []httpserver.Probe
}

// WithToken requires "Authorization: Bearer <token>" on permission requests.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithProbes makes /healthz a readiness check over probes.
func WithProbes(probes ...httpserver.Probe) Option {
	return func(o *options) { o.probes = append(o.probes, probes...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewRouter serves fixtures in the permission authority wire format.
func NewRouter(f *Fixtures, opts ...Option) http.Handler {
	o := options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware, middleware.Recoverer, requestLogger(o.logger))
	r.Get("/healthz", httpserver.HealthCheckHandler(o.logger, o.probes...))

	r.Group(func(r chi.Router) {
		if o.token != "" {
			r.Use(requireToken(o.token))
		}
		r.Get("/permissions/users/{userID}/permissions", permissionsHandler(f))
	})
	return r
}

func permissionsHandler(f *Fixtures) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		payload, ok := f.Lookup(userID)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

func requireToken(token string) func(http.Handler) http.Handler {
	want := []byte("Bearer " + token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(strings.TrimSpace(r.Header.Get("Authorization")))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.DebugContext(r.Context(), "request served",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				logger.Duration(time.Since(start)),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

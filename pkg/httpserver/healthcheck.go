package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rbmarquez/doctorq/pkg/logger"
)

// Probe checks one dependency.
type Probe func(context.Context) error

// HealthCheckHandler answers liveness and readiness probes. Without probes it
// reports ALIVE. With probes it reports READY when all pass and NOT_READY
// with status 503 otherwise.
func HealthCheckHandler(log *slog.Logger, probes ...Probe) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if len(probes) == 0 {
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}
		_, _ = w.Write([]byte("READY"))
	}
}

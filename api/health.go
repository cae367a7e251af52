package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const readyTimeout = 5 * time.Second

// FragmentCounter reports how many fragments are indexed.
// *knowledge.Store satisfies it.
type FragmentCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Pinger checks database connectivity. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// health is the liveness probe. Returns 200 as long as the process serves,
// plus the configuration flags so operators can spot a misconfigured
// deployment at a glance.
func health(flags map[string]bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{"status": "ok"}
		for k, v := range flags {
			body[k] = v
		}
		writeJSON(w, http.StatusOK, body)
	}
}

// readiness reports whether the service can answer queries: the database
// responds and the fragment index is non-empty.
func readiness(pinger Pinger, counter FragmentCounter, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if pinger != nil {
			if err := pinger.Ping(ctx); err != nil {
				logger.Warn("readiness: database unreachable", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"reason": "database unreachable",
				})
				return
			}
		}

		var fragments int64
		if counter != nil {
			count, err := counter.Count(ctx)
			if err != nil {
				logger.Warn("readiness: fragment count failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"reason": "knowledge index unreachable",
				})
				return
			}
			fragments = count
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"fragments": fragments,
		})
	})
}

package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lesson-bot/logger"
	"lesson-bot/types"
)

// SnapshotSource exposes the current parsed schedule.
type SnapshotSource interface {
	Snapshot() *types.Snapshot
}

type health struct {
	Status     string    `json:"status"`
	Generation string    `json:"generation,omitempty"`
	FetchedAt  time.Time `json:"fetched_at,omitempty"`
	Pages      int       `json:"pages"`
}

// NewRouter serves /healthz and /metrics. gatherer defaults to the global registry.
func NewRouter(src SnapshotSource, gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		h := health{Status: "empty"}
		if snap := src.Snapshot(); snap != nil {
			h = health{Status: "ok", Generation: snap.Generation, FetchedAt: snap.FetchedAt, Pages: len(snap.Days)}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(h)
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// Serve runs the ops HTTP server until ctx is canceled.
func Serve(ctx context.Context, addr string, handler http.Handler, log logger.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("ops server shutdown: %v", err)
		}
		cancel()
	}()
	log.Infof("ops server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

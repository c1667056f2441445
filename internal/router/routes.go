package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tinoosan/nzbget-exporter/internal/auth"
)

// Pinger reports readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New wires /metrics, /healthz and /readyz. token, when non-empty, is
// required as a bearer token on /metrics.
func New(logger *slog.Logger, g prometheus.Gatherer, ready Pinger, token string) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(logger))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Error("write healthz response", "err", err)
		}
	}).Methods("GET")

	r.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := ready.Ping(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ready")); err != nil {
			logger.Error("write readyz response", "err", err)
		}
	}).Methods("GET")

	metrics := promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelError),
	})
	r.Handle("/metrics", auth.Bearer(token)(metrics)).Methods("GET")

	return r
}

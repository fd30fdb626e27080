// Package metrics exposes the daemon's prometheus instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Ticks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopull_ticks_total",
		Help: "Number of reconciliation ticks executed.",
	})

	TickErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopull_tick_errors_total",
		Help: "Per-tick errors by taxonomy kind.",
	}, []string{"kind"})

	Updates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopull_updates_total",
		Help: "Fast-forward update attempts by result.",
	}, []string{"result"})

	TimeSinceDivergence = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autopull_time_since_last_divergence_seconds",
		Help: "Seconds the working copy has been continuously in sync.",
	})

	ConsecutiveFailures = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "autopull_consecutive_comparison_failures",
		Help: "Comparator failures since the last successful tick.",
	})
)

// Serve exposes the default registry on addr under /metrics. It blocks until
// the listener fails.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// Package telemetry provides Prometheus instrumentation for the honeypot
// gateway.
package telemetry

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TurnsTotal counts handled turns by outcome ("ok" or "recovered").
	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "baitline",
			Name:      "turns_total",
			Help:      "Total conversation turns handled, by outcome.",
		},
		[]string{"outcome"},
	)

	// TurnDuration observes pipeline latency per turn.
	TurnDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "baitline",
		Name:      "turn_duration_seconds",
		Help:      "Turn pipeline duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	// ScamModeActivations counts sessions whose scam mode switched on.
	ScamModeActivations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "baitline",
		Name:      "scam_mode_activations_total",
		Help:      "Total sessions that entered scam mode.",
	})

	// EvidenceExtracted counts recorded evidence by category.
	EvidenceExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "baitline",
			Name:      "evidence_extracted_total",
			Help:      "Total evidence records added, by category.",
		},
		[]string{"category"},
	)

	// ReportsDispatched counts dossier deliveries by result.
	ReportsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "baitline",
			Name:      "reports_dispatched_total",
			Help:      "Total dossier dispatch attempts, by result.",
		},
		[]string{"result"},
	)

	// ActiveSessions tracks sessions currently held in the store.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "baitline",
		Name:      "active_sessions",
		Help:      "Number of sessions currently in the store.",
	})
)

func init() {
	prometheus.MustRegister(
		TurnsTotal,
		TurnDuration,
		ScamModeActivations,
		EvidenceExtracted,
		ReportsDispatched,
		ActiveSessions,
	)
}

// Serve exposes /metrics on its own listener so scrapes never contend with
// honeypot traffic. Blocks; run in a goroutine.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("[STARTUP] Metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("[WARN] Metrics server stopped: %v", err)
	}
}

package incidents

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "incidentfeed"

var (
	sourceFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetch_duration_seconds",
			Help:      "Time to load incidents from the source",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	sourceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "fetches_total",
			Help:      "Total incident loads by result",
		},
		[]string{"result"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Incident cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	actionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actions",
			Name:      "total",
			Help:      "Simulated incident actions by type and result",
		},
		[]string{"action", "result"},
	)
)

func recordFetch(result string, duration time.Duration) {
	sourceFetches.WithLabelValues(result).Inc()
	sourceFetchDuration.Observe(duration.Seconds())
}

func recordCacheLookup(outcome string) {
	cacheLookups.WithLabelValues(outcome).Inc()
}

func recordAction(action ActionType, result string) {
	actionsCompleted.WithLabelValues(string(action), result).Inc()
}

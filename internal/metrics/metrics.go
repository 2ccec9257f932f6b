// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "qualification_planner"

// Computation outcomes
const (
	OutcomeOK          = "ok"
	OutcomeNoSelection = "no_selection"
	OutcomeError       = "error"
)

var (
	registerOnce sync.Once

	searches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Total number of qualification searches by cache result",
	}, []string{"cache"})
	computations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "computations_total",
		Help:      "Total number of staffing computations by outcome",
	}, []string{"outcome"})
	verifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Total number of per-qualification checks by result",
	}, []string{"satisfied"})
	operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Histogram of search, compute and verify durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // ~0.5ms up to ~1s
	}, []string{"type"})
	catalogReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_reloads_total",
		Help:      "Total number of catalog reload attempts by result",
	}, []string{"result"})

	catalogSizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_qualifications",
		Help:      "Number of qualifications in the active catalog",
	})
	staffGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_total_staff",
		Help:      "Total staff of the most recent successful computation",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(searches, computations, verifications, operationDuration,
			catalogReloads, catalogSizeGauge, staffGauge)
	})
}

// IncSearch counts a search; hit reports whether the result came from cache.
func IncSearch(hit bool) {
	label := "miss"
	if hit {
		label = "hit"
	}
	searches.WithLabelValues(label).Inc()
}

func IncComputation(outcome string) { computations.WithLabelValues(outcome).Inc() }

func IncVerification(satisfied bool) {
	label := "false"
	if satisfied {
		label = "true"
	}
	verifications.WithLabelValues(label).Inc()
}

func ObserveOperationDuration(opType string, d time.Duration) {
	operationDuration.WithLabelValues(opType).Observe(d.Seconds())
}

// IncCatalogReload counts a reload attempt.
func IncCatalogReload(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	catalogReloads.WithLabelValues(result).Inc()
}

// Gauges
func SetCatalogSize(n int)    { catalogSizeGauge.Set(float64(n)) }
func SetLastTotalStaff(n int) { staffGauge.Set(float64(n)) }

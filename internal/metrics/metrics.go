// Package metrics holds the Prometheus metrics exported by wikitree.
// They are registered on the default registry and served by `wikitree serve`.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// resolutionsTotal counts resolver calls by outcome.
	// Labels: entity_type, outcome (cache_hit, resolved, failed)
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wikitree",
		Subsystem: "resolver",
		Name:      "resolutions_total",
		Help:      "Entity resolutions by entity type and outcome",
	}, []string{"entity_type", "outcome"})

	// disambiguationDropsTotal counts candidates dropped as disambiguation-like
	disambiguationDropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wikitree",
		Subsystem: "resolver",
		Name:      "disambiguation_drops_total",
		Help:      "Candidates dropped because they are instances of a disambiguation-like class",
	})

	// simplificationsTotal counts simplifier runs.
	// Labels: simplifier, outcome (ok, failed)
	simplificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wikitree",
		Subsystem: "simplify",
		Name:      "simplifications_total",
		Help:      "Node simplifications by simplifier and outcome",
	}, []string{"simplifier", "outcome"})

	// apiRequestsTotal counts knowledge-base API requests.
	// Labels: endpoint (search, entities, sparql), status (ok, error, retry)
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wikitree",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Knowledge-base API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	// apiLatencySeconds measures API request latency including retries
	apiLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wikitree",
		Subsystem: "api",
		Name:      "latency_seconds",
		Help:      "Knowledge-base API latency including retries",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	// requestsTotal counts handled module requests.
	// Labels: outcome (answered, empty, failed)
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wikitree",
		Subsystem: "pipeline",
		Name:      "requests_total",
		Help:      "Handled requests by outcome",
	}, []string{"outcome"})
)

// RecordResolution records the outcome of one resolver call
func RecordResolution(entityType, outcome string) {
	resolutionsTotal.WithLabelValues(entityType, outcome).Inc()
}

// RecordDisambiguationDrop records a candidate removed by the disambiguation filter
func RecordDisambiguationDrop() {
	disambiguationDropsTotal.Inc()
}

// RecordSimplification records one simplifier run
func RecordSimplification(simplifier string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	simplificationsTotal.WithLabelValues(simplifier, outcome).Inc()
}

// RecordAPIRequest records one API call and its latency
func RecordAPIRequest(endpoint, status string, elapsed time.Duration) {
	apiRequestsTotal.WithLabelValues(endpoint, status).Inc()
	if status != "retry" {
		apiLatencySeconds.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	}
}

// RecordRequest records a handled request
func RecordRequest(outcome string) {
	requestsTotal.WithLabelValues(outcome).Inc()
}

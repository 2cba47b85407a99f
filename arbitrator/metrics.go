package arbitrator

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks the volume and cost of the combinatorial search.
type Metrics struct {
	searchDuration *prometheus.HistogramVec
	candidateLoops *prometheus.CounterVec
	validLoops     prometheus.Counter
	filteredLoops  prometheus.Counter
}

// NewMetrics creates and registers the arbitrator metrics on the given
// registerer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "arbsim",
			Subsystem: "arbitrator",
			Name:      "search_duration_seconds",
			Help:      "Wall time of one GetLoops invocation.",
			Buckets:   prometheus.DefBuckets,
		}, nil),
		candidateLoops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arbsim",
			Subsystem: "arbitrator",
			Name:      "candidate_loops_total",
			Help:      "Permutations attempted, by outcome (valid, invalid).",
		}, []string{"outcome"}),
		validLoops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arbsim",
			Subsystem: "arbitrator",
			Name:      "returned_loops_total",
			Help:      "Loops that survived validation and the initial-asset filter.",
		}),
		filteredLoops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arbsim",
			Subsystem: "arbitrator",
			Name:      "filtered_loops_total",
			Help:      "Valid loops discarded because their initial asset was not permitted.",
		}),
	}
	registry.MustRegister(m.searchDuration, m.candidateLoops, m.validLoops, m.filteredLoops)
	return m
}

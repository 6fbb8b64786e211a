package metrics

import "github.com/prometheus/client_golang/prometheus"

// Matching engine Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foundermatch",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foundermatch",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foundermatch",
			Name:      "embedding_retries_total",
			Help:      "Total embedding retry attempts",
		},
		[]string{"provider"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foundermatch",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RankingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "foundermatch",
			Name:      "ranking_duration_seconds",
			Help:      "Candidate ranking duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	CandidatesRanked = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "foundermatch",
			Name:      "candidates_ranked",
			Help:      "Candidates surviving ranking per request",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	IntroTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foundermatch",
			Name:      "introduction_transitions_total",
			Help:      "Introduction lifecycle transitions",
		},
		[]string{"from", "to"},
	)

	GateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foundermatch",
			Name:      "gate_decisions_total",
			Help:      "Autonomy gate decisions",
		},
		[]string{"mode", "decision"},
	)

	OutcomesRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foundermatch",
			Name:      "outcomes_recorded_total",
			Help:      "Outcomes recorded by type",
		},
		[]string{"type"},
	)

	SweepProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foundermatch",
			Name:      "sweep_processed_total",
			Help:      "Records processed by lifecycle sweeps",
		},
		[]string{"sweep", "result"},
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers engine metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingRetriesTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(RankingDuration)
	prometheus.MustRegister(CandidatesRanked)
	prometheus.MustRegister(IntroTransitionsTotal)
	prometheus.MustRegister(GateDecisionsTotal)
	prometheus.MustRegister(OutcomesRecordedTotal)
	prometheus.MustRegister(SweepProcessedTotal)
	engineMetricsRegistered = true
}

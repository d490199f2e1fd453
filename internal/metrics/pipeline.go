package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "moviereco"

// Query pipeline metrics.
var (
	// QueryCacheTotal counts query cache lookups by result ("hit" / "miss" / "error").
	QueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_total",
			Help:      "Query cache lookups by result",
		},
		[]string{"result"},
	)

	// RetrievalPathTotal counts resolutions by retrieval path ("genre" / "similar").
	RetrievalPathTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_path_total",
			Help:      "Resolved queries by retrieval path",
		},
		[]string{"path", "genre"},
	)

	RetrievalCandidates = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_candidates",
			Help:      "Number of candidate movies per resolution",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 150},
		},
		[]string{"path"},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"model", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_request_duration_seconds",
			Help:      "Chat completion duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	// BreakerState reports circuit breaker state per outbound client (0 closed, 1 half-open, 2 open).
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)

	OutboundRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbound_retries_total",
			Help:      "Retried outbound calls",
		},
		[]string{"name"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers query pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		QueryCacheTotal,
		RetrievalPathTotal,
		RetrievalCandidates,
		GenerationRequestsTotal,
		GenerationRequestDuration,
		BreakerState,
		OutboundRetriesTotal,
	)
	pipelineMetricsRegistered = true
}

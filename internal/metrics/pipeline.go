package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractqa",
			Name:      "search_requests_total",
			Help:      "Total number of search pipeline runs",
		},
		[]string{"scope", "status"}, // scope: "single" / "multi"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "contractqa",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search pipeline duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.25, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"scope"},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractqa",
			Name:      "result_cache_total",
			Help:      "Result cache hits, misses and bypasses",
		},
		[]string{"result"}, // "hit" / "miss" / "bypass"
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractqa",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding gateway requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "contractqa",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding gateway request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractqa",
			Name:      "embedding_cache_total",
			Help:      "Query embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	CompletionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractqa",
			Name:      "completion_requests_total",
			Help:      "Total number of LLM completion requests",
		},
		[]string{"model", "status"},
	)

	CompletionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "contractqa",
			Name:      "completion_request_duration_seconds",
			Help:      "LLM completion request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	CompletionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractqa",
			Name:      "completion_tokens_total",
			Help:      "Total LLM tokens consumed",
		},
		[]string{"model", "type"}, // type: "prompt" / "completion" / "total"
	)
)

// RegisterPipelineMetrics registers pipeline metrics with the default registry.
// Called explicitly from main (no init()).
func RegisterPipelineMetrics() {
	prometheus.MustRegister(
		SearchRequestsTotal,
		SearchDuration,
		ResultCacheTotal,
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingCacheTotal,
		CompletionRequestsTotal,
		CompletionRequestDuration,
		CompletionTokensTotal,
	)
}

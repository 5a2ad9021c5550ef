package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline Prometheus metrics.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oriole",
			Name:      "llm_requests_total",
			Help:      "Total number of LLM completion requests",
		},
		[]string{"model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oriole",
			Name:      "llm_request_duration_seconds",
			Help:      "LLM completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oriole",
			Name:      "llm_tokens_total",
			Help:      "Total LLM tokens consumed",
		},
		[]string{"model", "type"}, // type: "prompt" / "completion"
	)

	RerankRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oriole",
			Name:      "rerank_requests_total",
			Help:      "Total number of rerank requests",
		},
		[]string{"model", "status"},
	)

	RerankRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "oriole",
			Name:      "rerank_request_duration_seconds",
			Help:      "Rerank request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	AskIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "oriole",
			Name:      "ask_iterations",
			Help:      "Planning rounds per ask request",
			Buckets:   []float64{1, 2, 3, 4, 5, 6},
		},
	)

	SearchStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "oriole",
			Name:      "search_steps_total",
			Help:      "Total executed plan steps",
		},
		[]string{"status"}, // "success" / "skipped" / "error"
	)

	FusionCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "oriole",
			Name:      "fusion_candidates",
			Help:      "Fused candidate count per iteration",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers pipeline metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(LLMTokensTotal)
	prometheus.MustRegister(RerankRequestsTotal)
	prometheus.MustRegister(RerankRequestDuration)
	prometheus.MustRegister(AskIterations)
	prometheus.MustRegister(SearchStepsTotal)
	prometheus.MustRegister(FusionCandidates)
	retrievalMetricsRegistered = true
}

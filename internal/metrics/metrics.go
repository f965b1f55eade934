package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use through a nil pointer; every recorder is then a no-op.
type Metrics struct {
	Turns             *prometheus.CounterVec
	TurnLatency       prometheus.Histogram
	LLMCalls          *prometheus.CounterVec
	Extractions       *prometheus.CounterVec
	EmbeddingRequests *prometheus.CounterVec
	SearchResults     *prometheus.HistogramVec
	IndexedDocuments  *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	HTTPLatency       *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Turns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "counselor_turns_total",
			Help: "Counseling turns handled, by outcome",
		}, []string{"outcome"}),
		TurnLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "counselor_turn_duration_seconds",
			Help:    "Wall time of a counseling turn",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		LLMCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "counselor_llm_calls_total",
			Help: "Completion calls by purpose and result",
		}, []string{"purpose", "result"}),
		Extractions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "counselor_extractions_total",
			Help: "Structured extraction outcomes",
		}, []string{"kind", "status"}),
		EmbeddingRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "counselor_embedding_requests_total",
			Help: "Embedding lookups by source",
		}, []string{"source"}), // cache|provider|error
		SearchResults: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "counselor_similarity_results",
			Help:    "Documents returned by similarity search",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
		}, []string{"collection"}),
		IndexedDocuments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "counselor_indexed_documents_total",
			Help: "Documents indexed by collection and result",
		}, []string{"collection", "result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "counselor_http_requests_total",
			Help: "HTTP requests by route, method and status class",
		}, []string{"route", "method", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "counselor_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *Metrics) ObserveTurn(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(outcome).Inc()
	m.TurnLatency.Observe(d.Seconds())
}

func (m *Metrics) LLMCall(purpose string, err error) {
	if m == nil {
		return
	}
	m.LLMCalls.WithLabelValues(purpose, result(err)).Inc()
}

func (m *Metrics) Extraction(kind, status string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) Embedding(source string) {
	if m == nil {
		return
	}
	m.EmbeddingRequests.WithLabelValues(source).Inc()
}

func (m *Metrics) Search(collection string, n int) {
	if m == nil {
		return
	}
	m.SearchResults.WithLabelValues(collection).Observe(float64(n))
}

func (m *Metrics) Indexed(collection string, err error) {
	if m == nil {
		return
	}
	m.IndexedDocuments.WithLabelValues(collection, result(err)).Inc()
}

// ObserveHTTP uses the route template, never the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, method, statusClass(status)).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lumee"

// Recorder owns the Prometheus collectors exported by the assistant. Each
// Recorder has its own registry so tests can build as many as they need.
type Recorder struct {
	registry         *prometheus.Registry
	chatRequests     *prometheus.CounterVec
	toolCalls        *prometheus.CounterVec
	upstreamFailures *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	llmTokens        *prometheus.CounterVec
}

// NewRecorder registers the collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests grouped by outcome.",
		}, []string{"outcome"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Data tools executed on behalf of the LLM.",
		}, []string{"tool"}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_failures_total",
			Help:      "External data source calls that degraded to absent data.",
		}, []string{"source"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Latency of external data source calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens consumed by LLM calls.",
		}, []string{"kind"}),
	}
	reg.MustRegister(r.chatRequests, r.toolCalls, r.upstreamFailures, r.upstreamLatency, r.llmTokens)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ChatRequest(outcome string) {
	if r == nil {
		return
	}
	r.chatRequests.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ToolCall(tool string) {
	if r == nil {
		return
	}
	r.toolCalls.WithLabelValues(tool).Inc()
}

func (r *Recorder) UpstreamFailure(source string) {
	if r == nil {
		return
	}
	r.upstreamFailures.WithLabelValues(source).Inc()
}

func (r *Recorder) ObserveUpstream(source string, seconds float64) {
	if r == nil {
		return
	}
	r.upstreamLatency.WithLabelValues(source).Observe(seconds)
}

// Tokens records a usage block reported by the LLM.
func (r *Recorder) Tokens(u TokenUsage) {
	if r == nil || u.IsZero() {
		return
	}
	r.llmTokens.WithLabelValues("prompt").Add(float64(u.PromptTokens))
	r.llmTokens.WithLabelValues("completion").Add(float64(u.CompletionTokens))
}

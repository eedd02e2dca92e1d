package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zela-ai/zela/internal/relay"
)

// Compile-time interface check.
var _ relay.Metrics = (*Metrics)(nil)

// Metrics exposes relay and gateway counters on a dedicated Prometheus
// registry. It satisfies relay.Metrics.
type Metrics struct {
	registry *prometheus.Registry

	events   *prometheus.CounterVec
	replies  prometheus.Counter
	failures *prometheus.CounterVec
	rejected prometheus.Counter
}

// NewMetrics creates a Metrics with all collectors registered.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zela",
			Name:      "events_total",
			Help:      "Inbound chat events handled, by kind.",
		}, []string{"kind"}),
		replies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "zela",
			Name:      "replies_total",
			Help:      "Replies delivered to the chat.",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zela",
			Name:      "generation_failures_total",
			Help:      "Generations that exhausted all retry attempts, by selected model.",
		}, []string{"model"}),
		rejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "zela",
			Name:      "webhook_rejected_total",
			Help:      "Webhook deliveries rejected for a bad secret token.",
		}),
	}
}

// EventHandled counts one inbound event.
func (m *Metrics) EventHandled(kind string) { m.events.WithLabelValues(kind).Inc() }

// ReplySent counts one delivered reply.
func (m *Metrics) ReplySent() { m.replies.Inc() }

// GenerationFailed counts one exhausted generation.
func (m *Metrics) GenerationFailed(modelKey string) { m.failures.WithLabelValues(modelKey).Inc() }

// WebhookRejected counts one unauthorized delivery.
func (m *Metrics) WebhookRejected() { m.rejected.Inc() }

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

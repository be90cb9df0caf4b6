package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on their own registry so tests can
// build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	MessagesSent       prometheus.Counter
	MessagesMarkedRead prometheus.Counter
	ReadDeferred       prometheus.Counter
	EventsFailed       *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prestachat_messages_sent_total",
			Help: "Messages appended to conversations.",
		}),
		MessagesMarkedRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prestachat_messages_marked_read_total",
			Help: "Messages flipped from unread to read.",
		}),
		ReadDeferred: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prestachat_read_deferred_total",
			Help: "Mark-read updates handed to the background queue after a failure.",
		}),
		EventsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prestachat_events_failed_total",
			Help: "Domain events that could not be published.",
		}, []string{"type"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prestachat_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.MessagesSent,
		m.MessagesMarkedRead,
		m.ReadDeferred,
		m.EventsFailed,
		m.RequestDuration,
	)
	return m
}

func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	m.RequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// Handler serves the registry for Prometheus scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

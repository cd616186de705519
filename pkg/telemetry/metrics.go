package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics porte un registre dédié (pas le registre global) : un par process, un par test.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	postsCreated *prometheus.CounterVec
	likesToggled *prometheus.CounterVec
	comments     prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Tracks the number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Tracks the latencies for HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		postsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Number of posts created, by kind of first media.",
		}, []string{"kind"}),
		likesToggled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "post_likes_toggled_total",
			Help: "Number of like toggles, by resulting action.",
		}, []string{"action"}),
		comments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "post_comments_total",
			Help: "Number of comments appended.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.postsCreated,
		m.likesToggled,
		m.comments,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(route, method, status string, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(route, method, status).Inc()
	m.requestDuration.WithLabelValues(route, method, status).Observe(elapsed.Seconds())
}

// PostCreated : kind = type du premier média, "post" si texte seul.
func (m *Metrics) PostCreated(kind string) {
	m.postsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) LikeToggled(liked bool) {
	action := "unlike"
	if liked {
		action = "like"
	}
	m.likesToggled.WithLabelValues(action).Inc()
}

func (m *Metrics) Commented() {
	m.comments.Inc()
}

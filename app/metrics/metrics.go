// Package metrics collects and exposes Prometheus metrics for the blog.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what request handling and services report to.
type Recorder interface {
	ObserveRequest(route, method string, status int, duration time.Duration)
	CommentCreated()
	ShareAttempted(sent bool)
	RateLimited(route string)
}

// Collector records blog metrics on a Prometheus registry.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	commentsCreated prometheus.Counter
	shares          *prometheus.CounterVec
	rateLimited     *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		commentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_comments_created_total",
			Help: "Comments stored.",
		}),
		shares: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_shares_total",
			Help: "Share emails by outcome.",
		}, []string{"result"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.commentsCreated,
		c.shares,
		c.rateLimited,
	)
	return c
}

// ObserveRequest records one served request.
func (c *Collector) ObserveRequest(route, method string, status int, duration time.Duration) {
	c.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// CommentCreated counts a stored comment.
func (c *Collector) CommentCreated() {
	c.commentsCreated.Inc()
}

// ShareAttempted counts a share email by outcome.
func (c *Collector) ShareAttempted(sent bool) {
	result := "sent"
	if !sent {
		result = "failed"
	}
	c.shares.WithLabelValues(result).Inc()
}

// RateLimited counts a rejected request.
func (c *Collector) RateLimited(route string) {
	c.rateLimited.WithLabelValues(route).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveRequest(string, string, int, time.Duration) {}
func (Nop) CommentCreated() {}
func (Nop) ShareAttempted(bool) {}
func (Nop) RateLimited(string) {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)

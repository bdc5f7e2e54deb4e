// Package metrics exposes pipeline counters and store latencies to
// Prometheus. A *Collector satisfies the observer interfaces of the
// session, authn and web packages.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	Namespace string
	Buckets   []float64
	// Registry defaults to a fresh registry with the Go and process
	// collectors registered.
	Registry *prometheus.Registry
}

type Option func(*Config)

// WithNamespace replaces the "avian" metric prefix. An empty ns is ignored.
func WithNamespace(ns string) Option {
	return func(c *Config) {
		if ns != "" {
			c.Namespace = ns
		}
	}
}

func WithRegistry(r *prometheus.Registry) Option { return func(c *Config) { c.Registry = r } }

type Collector struct {
	registry *prometheus.Registry

	logins       *prometheus.CounterVec
	intercepted  *prometheus.CounterVec
	fallbacks    prometheus.Counter
	storeOps     *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec
}

func New(opts ...Option) *Collector {
	cfg := Config{
		Namespace: "avian",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
		cfg.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(cfg.Registry)

	return &Collector{
		registry: cfg.Registry,
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by strategy and result.",
		}, []string{"strategy", "result"}),
		intercepted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "intercepted_errors_total",
			Help:      "Requests answered by the error interceptor, by error kind.",
		}, []string{"kind"}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "fallback_redirects_total",
			Help:      "Unmatched requests redirected home.",
		}),
		storeOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "session_store",
			Name:      "operations_total",
			Help:      "Session store calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		storeLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "session_store",
			Name:      "operation_duration_seconds",
			Help:      "Session store call latency.",
			Buckets:   cfg.Buckets,
		}, []string{"op"}),
	}
}

func (c *Collector) ObserveLogin(strategy, result string) {
	c.logins.WithLabelValues(strategy, result).Inc()
}

func (c *Collector) ObserveIntercepted(kind string) {
	c.intercepted.WithLabelValues(kind).Inc()
}

func (c *Collector) ObserveFallback() { c.fallbacks.Inc() }

func (c *Collector) ObserveStoreOp(op string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.storeOps.WithLabelValues(op, outcome).Inc()
	c.storeLatency.WithLabelValues(op).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

package devserver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics of the dev server.
type Metrics struct {
	registry         *prometheus.Registry
	requestsTotal    *prometheus.CounterVec
	resolutionMisses prometheus.Counter
	transformsTotal  *prometheus.CounterVec
	livereloadConns  prometheus.Gauge
}

// NewMetrics creates and registers the dev server metrics on a private
// registry, so repeated server starts in one process never collide.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "floe_http_requests_total",
				Help: "Total number of dev server requests",
			},
			[]string{"status"},
		),
		resolutionMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "floe_resolution_misses_total",
				Help: "Requests no mounted file could satisfy",
			},
		),
		transformsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "floe_transforms_total",
				Help: "Files transformed on the fly, by plugin",
			},
			[]string{"plugin"},
		),
		livereloadConns: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "floe_livereload_connections",
				Help: "Connected livereload clients",
			},
		),
		registry: registry,
	}
}

// Handler returns the fiber handler exposing the metrics endpoint.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

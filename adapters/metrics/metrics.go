// Package metrics provides Prometheus metrics collection for mailcraft.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/artpar/mailcraft/ports"
)

const namespace = "mailcraft"

// Collector holds all Prometheus metrics for mailcraft.
type Collector struct {
	// HTTP metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Builder metrics
	OperationsTotal *prometheus.CounterVec
	DocumentsOpen   prometheus.Gauge

	// Export metrics
	ExportsTotal   *prometheus.CounterVec
	ExportBytes    prometheus.Histogram
	ColorFallbacks prometheus.Counter

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a collector registered with the default Prometheus registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Builder operations by name and result",
			},
			[]string{"op", "result"},
		),
		DocumentsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "documents_open",
				Help:      "Number of documents held in the workspace",
			},
		),
		ExportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Total number of export compilations by result",
			},
			[]string{"result"},
		),
		ExportBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_bytes",
				Help:      "Size of compiled export markup in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
			},
		),
		ColorFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "color_fallbacks_total",
				Help:      "Table backgrounds replaced by the fallback color",
			},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// Operation counts one builder operation.
func (c *Collector) Operation(op, result string) {
	c.OperationsTotal.WithLabelValues(op, result).Inc()
}

// Export records one compilation.
func (c *Collector) Export(result string, bytes int, colorFallbacks int) {
	c.ExportsTotal.WithLabelValues(result).Inc()
	if result == ResultOK {
		c.ExportBytes.Observe(float64(bytes))
	}
	if colorFallbacks > 0 {
		c.ColorFallbacks.Add(float64(colorFallbacks))
	}
}

// SetDocumentsOpen sets the number of open documents.
func (c *Collector) SetDocumentsOpen(n int) {
	c.DocumentsOpen.Set(float64(n))
}

// Result labels.
const (
	ResultOK        = "ok"
	ResultUnchanged = "unchanged"
	ResultError     = "error"
)

// Nop discards all builder metrics.
type Nop struct{}

func (Nop) Operation(string, string) {}
func (Nop) Export(string, int, int) {}
func (Nop) SetDocumentsOpen(int) {}

// Ensure interface compliance.
var (
	_ ports.BuilderMetrics = (*Collector)(nil)
	_ ports.BuilderMetrics = Nop{}
)

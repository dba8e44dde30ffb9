package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics contains the Prometheus collectors exported by a monitor.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	HealthStatus    prometheus.Gauge
	UptimeSeconds   prometheus.GaugeFunc
}

// newMetrics creates the collector set. uptime supplies the value for
// the uptime gauge on each scrape.
func newMetrics(uptime func() float64) *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fndocs",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"handler", "method", "code"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fndocs",
				Subsystem: "http",
				Name:      "errors_total",
				Help:      "Total number of HTTP requests that ended in a server error",
			},
			[]string{"handler"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fndocs",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"handler"},
		),

		HealthStatus: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "fndocs",
				Subsystem: "health",
				Name:      "status",
				Help:      "Health status (0=unhealthy, 1=starting, 2=healthy)",
			},
		),

		UptimeSeconds: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "fndocs",
				Subsystem: "server",
				Name:      "uptime_seconds",
				Help:      "Seconds since the instance started",
			},
			uptime,
		),
	}
}

// register registers all collectors plus the Go runtime and process
// collectors on the given registry.
func (m *Metrics) register(reg *prometheus.Registry) {
	reg.MustRegister(
		m.RequestsTotal,
		m.ErrorsTotal,
		m.RequestDuration,
		m.HealthStatus,
		m.UptimeSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Package monitoring tracks request counters, health status, and
// server runtime information for a documentation-serving function app.
// Counters are process-local: on serverless platforms each warm
// instance reports its own numbers, and a cold start resets them.
//
// Prometheus collectors mirror the counters for hosts that scrape; the
// plain snapshot API serves hosts that poll an info endpoint instead.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Health status values reported by a monitor.
const (
	StatusHealthy   = "healthy"
	StatusStarting  = "starting"
	StatusUnhealthy = "unhealthy"
)

// startingWindow is how long after start an instance with no traffic
// reports "starting" instead of "healthy".
const startingWindow = 60 * time.Second

// unhealthyErrorRate marks the instance unhealthy when exceeded.
const unhealthyErrorRate = 0.10

// Snapshot is a point-in-time copy of the monitor counters.
type Snapshot struct {
	Requests  uint64  `json:"requests"`
	Errors    uint64  `json:"errors"`
	ErrorRate float64 `json:"error_rate"`
}

// ServerInfo describes one running instance.
type ServerInfo struct {
	InstanceID    string   `json:"instance_id"`
	StartedAt     string   `json:"started_at"`
	UptimeSeconds float64  `json:"uptime_seconds"`
	GoVersion     string   `json:"go_version"`
	NumGoroutine  int      `json:"num_goroutine"`
	Status        string   `json:"status"`
	Counters      Snapshot `json:"counters"`
}

// Monitor tracks request and error counts for one instance. The zero
// value is not usable; construct with NewMonitor.
type Monitor struct {
	mu       sync.Mutex
	requests uint64
	errors   uint64

	instanceID string
	startedAt  time.Time
	now        func() time.Time

	metrics  *Metrics
	registry *prometheus.Registry
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock overrides the monitor's time source for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// NewMonitor creates a monitor with a fresh Prometheus registry and a
// unique instance id.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		instanceID: uuid.NewString(),
		now:        time.Now,
		registry:   prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.startedAt = m.now()

	m.metrics = newMetrics(func() float64 {
		return m.now().Sub(m.startedAt).Seconds()
	})
	m.metrics.register(m.registry)

	return m
}

// IncRequests records one served request.
func (m *Monitor) IncRequests() {
	m.mu.Lock()
	m.requests++
	m.mu.Unlock()
}

// IncErrors records one failed request.
func (m *Monitor) IncErrors() {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()
}

// GetStats returns a copy of the current counters.
func (m *Monitor) GetStats() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Monitor) snapshotLocked() Snapshot {
	snap := Snapshot{Requests: m.requests, Errors: m.errors}
	if snap.Requests > 0 {
		snap.ErrorRate = float64(snap.Errors) / float64(snap.Requests)
	}
	return snap
}

// Status derives the instance health from uptime and the error rate:
// an error rate above 10% is unhealthy, an instance younger than a
// minute is starting, everything else is healthy.
func (m *Monitor) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshotLocked()
	status := StatusHealthy
	switch {
	case snap.Requests > 0 && snap.ErrorRate > unhealthyErrorRate:
		status = StatusUnhealthy
	case m.now().Sub(m.startedAt) < startingWindow:
		status = StatusStarting
	}

	m.metrics.HealthStatus.Set(healthGaugeValue(status))
	return status
}

func healthGaugeValue(status string) float64 {
	switch status {
	case StatusHealthy:
		return 2
	case StatusStarting:
		return 1
	}
	return 0
}

// Info returns the instance description served by InfoHandler.
func (m *Monitor) Info() ServerInfo {
	status := m.Status()

	m.mu.Lock()
	defer m.mu.Unlock()

	return ServerInfo{
		InstanceID:    m.instanceID,
		StartedAt:     m.startedAt.UTC().Format(time.RFC3339),
		UptimeSeconds: m.now().Sub(m.startedAt).Seconds(),
		GoVersion:     runtime.Version(),
		NumGoroutine:  runtime.NumGoroutine(),
		Status:        status,
		Counters:      m.snapshotLocked(),
	}
}

// Registry exposes the monitor's Prometheus registry for hosts that
// register additional collectors.
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// MetricsHandler serves the Prometheus exposition endpoint.
func (m *Monitor) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InfoHandler serves the instance description as JSON.
func (m *Monitor) InfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data, err := json.MarshalIndent(m.Info(), "", "  ")
		if err != nil {
			http.Error(w, "failed to serialize server info", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// statusRecorder captures the response status for the middleware.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware wraps a handler with request counting, error counting on
// 5xx responses, and duration observation under the given handler name.
func (m *Monitor) Middleware(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := m.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		m.IncRequests()
		m.metrics.RequestsTotal.WithLabelValues(name, r.Method, strconv.Itoa(rec.status)).Inc()
		m.metrics.RequestDuration.WithLabelValues(name).Observe(m.now().Sub(start).Seconds())

		if rec.status >= http.StatusInternalServerError {
			m.IncErrors()
			m.metrics.ErrorsTotal.WithLabelValues(name).Inc()
		}
	}
}

// String identifies the instance in logs.
func (m *Monitor) String() string {
	return fmt.Sprintf("monitor(instance=%s)", m.instanceID)
}

package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Status     string  `json:"status"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// HealthReport aggregates the monitor status with dependency checks.
// The overall status is the worst of the monitor's own status and the
// check outcomes.
type HealthReport struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// HealthChecker runs named dependency checks on top of a monitor's
// counter-derived status.
type HealthChecker struct {
	mu      sync.Mutex
	monitor *Monitor
	checks  map[string]CheckFunc
	order   []string
}

// NewHealthChecker creates a checker over the given monitor.
func NewHealthChecker(monitor *Monitor) *HealthChecker {
	return &HealthChecker{
		monitor: monitor,
		checks:  make(map[string]CheckFunc),
	}
}

// AddCheck registers a named check. Re-registering a name replaces the
// earlier check.
func (h *HealthChecker) AddCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.checks[name]; !exists {
		h.order = append(h.order, name)
	}
	h.checks[name] = check
}

// Run executes all checks and aggregates the report.
func (h *HealthChecker) Run(ctx context.Context) HealthReport {
	h.mu.Lock()
	names := make([]string, len(h.order))
	copy(names, h.order)
	checks := make(map[string]CheckFunc, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.Unlock()

	report := HealthReport{Status: h.monitor.Status()}
	if len(names) == 0 {
		return report
	}

	report.Checks = make(map[string]CheckResult, len(names))
	for _, name := range names {
		start := time.Now()
		err := checks[name](ctx)
		result := CheckResult{
			Status:     StatusHealthy,
			DurationMS: float64(time.Since(start).Microseconds()) / 1000,
		}
		if err != nil {
			result.Status = StatusUnhealthy
			result.Error = err.Error()
			report.Status = StatusUnhealthy
		}
		report.Checks[name] = result
	}

	return report
}

// Handler serves the aggregated health report: 200 for healthy or
// starting instances, 503 for unhealthy ones.
func (h *HealthChecker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := h.Run(r.Context())

		status := http.StatusOK
		if report.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			http.Error(w, "failed to serialize health report", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(data)
	}
}

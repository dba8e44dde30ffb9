package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// healthyMonitor returns a monitor past its starting window.
func healthyMonitor() *Monitor {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now, advance := fakeClock(start)
	m := NewMonitor(WithClock(now))
	advance(2 * time.Minute)
	return m
}

func TestHealthCheckerRun(t *testing.T) {
	t.Run("no checks reports monitor status", func(t *testing.T) {
		h := NewHealthChecker(healthyMonitor())
		report := h.Run(context.Background())
		assert.Equal(t, StatusHealthy, report.Status)
		assert.Empty(t, report.Checks)
	})

	t.Run("passing checks", func(t *testing.T) {
		h := NewHealthChecker(healthyMonitor())
		h.AddCheck("registry", func(context.Context) error { return nil })
		h.AddCheck("cache", func(context.Context) error { return nil })

		report := h.Run(context.Background())
		assert.Equal(t, StatusHealthy, report.Status)
		require.Len(t, report.Checks, 2)
		assert.Equal(t, StatusHealthy, report.Checks["registry"].Status)
		assert.Equal(t, StatusHealthy, report.Checks["cache"].Status)
	})

	t.Run("failing check marks the report unhealthy", func(t *testing.T) {
		h := NewHealthChecker(healthyMonitor())
		h.AddCheck("registry", func(context.Context) error { return nil })
		h.AddCheck("storage", func(context.Context) error {
			return errors.New("connection refused")
		})

		report := h.Run(context.Background())
		assert.Equal(t, StatusUnhealthy, report.Status)
		assert.Equal(t, StatusHealthy, report.Checks["registry"].Status)
		assert.Equal(t, StatusUnhealthy, report.Checks["storage"].Status)
		assert.Equal(t, "connection refused", report.Checks["storage"].Error)
	})

	t.Run("re-registering a name replaces the check", func(t *testing.T) {
		h := NewHealthChecker(healthyMonitor())
		h.AddCheck("dep", func(context.Context) error { return errors.New("old") })
		h.AddCheck("dep", func(context.Context) error { return nil })

		report := h.Run(context.Background())
		assert.Equal(t, StatusHealthy, report.Status)
	})
}

func TestHealthCheckerHandler(t *testing.T) {
	t.Run("healthy returns 200", func(t *testing.T) {
		h := NewHealthChecker(healthyMonitor())

		rec := httptest.NewRecorder()
		h.Handler()(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var report HealthReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, StatusHealthy, report.Status)
	})

	t.Run("starting returns 200", func(t *testing.T) {
		h := NewHealthChecker(NewMonitor())

		rec := httptest.NewRecorder()
		h.Handler()(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unhealthy returns 503", func(t *testing.T) {
		h := NewHealthChecker(healthyMonitor())
		h.AddCheck("storage", func(context.Context) error {
			return errors.New("down")
		})

		rec := httptest.NewRecorder()
		h.Handler()(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matches(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(metric *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, lp := range metric.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
			found++
		}
	}
	return found == len(labels)
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Login(LoginSuccess)
	m.Login(LoginInvalid)
	m.Login(LoginInvalid)
	m.SidebarToggle("collapse")
	m.Submission("income", nil)
	m.Submission("income", errors.New("broker down"))
	m.CacheLookup(true)
	m.RateLimited()
	m.ObserveRequest("/login", http.MethodPost, 303, 12*time.Millisecond)

	assert.Equal(t, 1.0, counterValue(t, m, "parishfinance_logins_total", map[string]string{"outcome": "success"}))
	assert.Equal(t, 2.0, counterValue(t, m, "parishfinance_logins_total", map[string]string{"outcome": "invalid"}))
	assert.Equal(t, 1.0, counterValue(t, m, "parishfinance_sidebar_toggles_total", map[string]string{"control": "collapse"}))
	assert.Equal(t, 1.0, counterValue(t, m, "parishfinance_submissions_total", map[string]string{"kind": "income", "outcome": "failed"}))
	assert.Equal(t, 1.0, counterValue(t, m, "parishfinance_cache_lookups_total", map[string]string{"result": "hit"}))
	assert.Equal(t, 1.0, counterValue(t, m, "parishfinance_rate_limited_total", nil))
	assert.Equal(t, 1.0, counterValue(t, m, "parishfinance_http_requests_total", map[string]string{"route": "/login", "status": "303"}))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Login(LoginSuccess)
		m.ObserveRequest("/", http.MethodGet, 200, time.Millisecond)
		m.RateLimited()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Login(LoginFailed)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `parishfinance_logins_total{outcome="failed"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

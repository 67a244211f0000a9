package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnrubin/discord-logbot/internal/domain"
)

func TestMetricsCountersAndExposition(t *testing.T) {
	m := NewMetrics()

	m.RecordEvent(domain.ClassComplete, "ok")
	m.RecordEvent(domain.ClassComplete, "ok")
	m.RecordEvent(domain.ClassRetract, "error")
	m.RecordFetch("ok", 120*time.Millisecond)
	m.RecordStoreOperation("insert", "conflict", time.Millisecond)
	m.RecordHTTPRequest("/", http.MethodGet, http.StatusOK, 5*time.Millisecond)
	m.RecordRateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues("complete", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues("retract", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperationsTotal.WithLabelValues("insert", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsLimited))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `logbot_edit_events_total{classification="complete",status="ok"} 2`)
	assert.Contains(t, string(body), "logbot_image_fetch_duration_seconds_bucket")
}

func TestInstancesDoNotShareRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.RecordRateLimited()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.HTTPRequestsLimited))
}

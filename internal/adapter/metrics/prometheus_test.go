package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codeprep.net/internal/domain"
)

func TestObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.ObserveRun("python", true, true, 20*time.Millisecond)
	m.ObserveRun("python", true, true, 30*time.Millisecond)
	m.ObserveRun("python", false, false, time.Second)
	m.ObserveCase("python", domain.StatusWrongAnswer, 5*time.Millisecond)
	m.ObserveSubmission("cpp", domain.StatusAccepted)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("python", "quick", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("python", "full", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.casesTotal.WithLabelValues("python", "Wrong Answer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissionTotal.WithLabelValues("cpp", "Accepted")))

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "codeprep_grading_test_runs_total"))
}

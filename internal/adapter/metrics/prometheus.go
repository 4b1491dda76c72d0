package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/domain"
)

const (
	namespace = "codeprep"
	subsystem = "grading"
)

var _ primary.Metrics = (*PrometheusMetrics)(nil)

type PrometheusMetrics struct {
	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	casesTotal      *prometheus.CounterVec
	caseDuration    *prometheus.HistogramVec
	submissionTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers the grading collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "test_runs_total",
			Help:      "Total number of quick and full test runs.",
		}, []string{"language", "mode", "passed"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "test_run_duration_seconds",
			Help:      "Wall time of whole test runs in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"language", "mode"}),
		casesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "test_cases_total",
			Help:      "Total number of executed test cases by verdict.",
		}, []string{"language", "status"}),
		caseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "test_case_duration_seconds",
			Help:      "Engine latency of single test cases in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"language"}),
		submissionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "submissions_total",
			Help:      "Total number of graded submissions by status.",
		}, []string{"language", "status"}),
	}
	reg.MustRegister(m.runsTotal, m.runDuration, m.casesTotal, m.caseDuration, m.submissionTotal)
	return m
}

func mode(quick bool) string {
	if quick {
		return "quick"
	}
	return "full"
}

func (m *PrometheusMetrics) ObserveRun(language string, quick bool, passed bool, elapsed time.Duration) {
	m.runsTotal.WithLabelValues(language, mode(quick), strconv.FormatBool(passed)).Inc()
	m.runDuration.WithLabelValues(language, mode(quick)).Observe(elapsed.Seconds())
}

func (m *PrometheusMetrics) ObserveCase(language string, status domain.Status, elapsed time.Duration) {
	m.casesTotal.WithLabelValues(language, string(status)).Inc()
	m.caseDuration.WithLabelValues(language).Observe(elapsed.Seconds())
}

func (m *PrometheusMetrics) ObserveSubmission(language string, status domain.Status) {
	m.submissionTotal.WithLabelValues(language, string(status)).Inc()
}

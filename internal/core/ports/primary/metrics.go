package primary

import (
	"time"

	"gitlab.com/codeprep.net/internal/domain"
)

// Metrics receives grading observations
type Metrics interface {
	ObserveRun(language string, quick bool, passed bool, elapsed time.Duration)
	ObserveCase(language string, status domain.Status, elapsed time.Duration)
	ObserveSubmission(language string, status domain.Status)
}

// NopMetrics discards every observation
type NopMetrics struct{}

func (NopMetrics) ObserveRun(string, bool, bool, time.Duration)     {}
func (NopMetrics) ObserveCase(string, domain.Status, time.Duration) {}
func (NopMetrics) ObserveSubmission(string, domain.Status)          {}

package testrun

import (
	"context"

	"gitlab.com/codeprep.net/internal/domain"
)

// ITestRunService grades code against a problem's test cases
type ITestRunService interface {
	// RunQuickTest runs only the quick cases under the short timeout
	RunQuickTest(ctx context.Context, userID, problemID, code, language string) (*domain.ExecutionResult, error)

	// RunFullTest runs every case under the long timeout
	RunFullTest(ctx context.Context, userID, problemID, code, language string) (*domain.ExecutionResult, error)
}

package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/domain"
)

// TestCaseRepository stores the test cases of every problem
type TestCaseRepository interface {
	// ListByProblem returns quick cases first, then the rest, each group by creation time
	ListByProblem(ctx context.Context, problemID string, filter domain.TestCaseFilter) ([]*domain.TestCase, error)

	Get(ctx context.Context, id uuid.UUID) (*domain.TestCase, error)
	Create(ctx context.Context, testCase *domain.TestCase) error
	CreateBatch(ctx context.Context, testCases []*domain.TestCase) error
	Update(ctx context.Context, testCase *domain.TestCase) error
	Delete(ctx context.Context, id uuid.UUID) error
}

package testcase

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/domain"
)

// ITestCaseService manages the test cases of problems
type ITestCaseService interface {
	Create(ctx context.Context, problemID string, in domain.TestCaseInput) (*domain.TestCase, error)
	CreateBatch(ctx context.Context, problemID string, in []domain.TestCaseInput) ([]*domain.TestCase, error)
	Update(ctx context.Context, id uuid.UUID, in domain.TestCaseInput) (*domain.TestCase, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.TestCase, error)

	// ListForProblem returns every case unredacted, for authors
	ListForProblem(ctx context.Context, problemID string) ([]*domain.TestCase, error)

	// ListVisible returns the quick cases as a solver may see them
	ListVisible(ctx context.Context, problemID string) ([]domain.TestCase, error)
}

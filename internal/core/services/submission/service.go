package submission

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/domain"
)

type ISubmissionService interface {
	// Submit grades code with a full test run and stores the verdict
	Submit(ctx context.Context, userID, problemID, code, language string) (*domain.Submission, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	ListByUser(ctx context.Context, userID string, filter domain.SubmissionFilter) ([]*domain.Submission, error)
	StatsByUser(ctx context.Context, userID string) (*domain.SubmissionStats, error)
}

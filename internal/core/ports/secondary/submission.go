package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/domain"
)

type SubmissionRepository interface {
	Save(ctx context.Context, submission *domain.Submission) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	// ListByUser returns newest first
	ListByUser(ctx context.Context, userID string, filter domain.SubmissionFilter) ([]*domain.Submission, error)
	ListAllByUser(ctx context.Context, userID string) ([]*domain.Submission, error)
}

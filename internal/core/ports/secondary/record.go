package secondary

import (
	"context"

	"gitlab.com/codeprep.net/internal/domain"
)

// ExecutionRecordRepository is the append-only run history
type ExecutionRecordRepository interface {
	// Append assigns ID and CreatedAt and stores the record
	Append(ctx context.Context, record *domain.ExecutionRecord) (*domain.ExecutionRecord, error)

	StatsByUser(ctx context.Context, userID string) (*domain.ExecutionStats, error)
	StatsByProblem(ctx context.Context, problemID string) (*domain.ExecutionStats, error)

	// ListByUser and ListByProblem return newest first
	ListByUser(ctx context.Context, userID string, filter domain.RecordFilter) ([]*domain.ExecutionRecord, error)
	ListByProblem(ctx context.Context, problemID string, page domain.Page) ([]*domain.ExecutionRecord, error)

	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteByProblem(ctx context.Context, problemID string) (int64, error)
}

// ExecutionEventPublisher announces appended records to other services
type ExecutionEventPublisher interface {
	PublishRecorded(ctx context.Context, record *domain.ExecutionRecord) error
	Close() error
}

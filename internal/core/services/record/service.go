package record

import (
	"context"

	"gitlab.com/codeprep.net/internal/domain"
)

// IRecordService exposes the run history and its statistics
type IRecordService interface {
	ListByUser(ctx context.Context, userID string, filter domain.RecordFilter) ([]*domain.ExecutionRecord, error)
	ListByProblem(ctx context.Context, problemID string, page domain.Page) ([]*domain.ExecutionRecord, error)
	StatsByUser(ctx context.Context, userID string) (*domain.ExecutionStats, error)
	StatsByProblem(ctx context.Context, problemID string) (*domain.ExecutionStats, error)

	// PurgeByUser and PurgeByProblem are the only paths that remove records
	PurgeByUser(ctx context.Context, userID string) (int64, error)
	PurgeByProblem(ctx context.Context, problemID string) (int64, error)
}

package record

import (
	"context"
	"fmt"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ IRecordService = (*RecordService)(nil)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type RecordService struct {
	records secondary.ExecutionRecordRepository
	logger  primary.Logger
}

func NewRecordService(records secondary.ExecutionRecordRepository, logger primary.Logger) *RecordService {
	return &RecordService{records: records, logger: logger}
}

func requireID(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", errs.ErrInvalidArgument, name)
	}
	return nil
}

func (s *RecordService) ListByUser(ctx context.Context, userID string, filter domain.RecordFilter) ([]*domain.ExecutionRecord, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	filter.Page = filter.Page.Normalize(defaultPageSize, maxPageSize)
	records, err := s.records.ListByUser(ctx, userID, filter)
	if err != nil {
		s.logger.Error("Failed to list user records", "userId", userID, "error", err)
		return nil, fmt.Errorf("%w: failed to list records: %w", errs.ErrStore, err)
	}
	return records, nil
}

func (s *RecordService) ListByProblem(ctx context.Context, problemID string, page domain.Page) ([]*domain.ExecutionRecord, error) {
	if err := requireID("problem id", problemID); err != nil {
		return nil, err
	}
	records, err := s.records.ListByProblem(ctx, problemID, page.Normalize(defaultPageSize, maxPageSize))
	if err != nil {
		s.logger.Error("Failed to list problem records", "problemId", problemID, "error", err)
		return nil, fmt.Errorf("%w: failed to list records: %w", errs.ErrStore, err)
	}
	return records, nil
}

func (s *RecordService) StatsByUser(ctx context.Context, userID string) (*domain.ExecutionStats, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	stats, err := s.records.StatsByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to compute user stats", "userId", userID, "error", err)
		return nil, fmt.Errorf("%w: failed to compute stats: %w", errs.ErrStore, err)
	}
	return stats, nil
}

func (s *RecordService) StatsByProblem(ctx context.Context, problemID string) (*domain.ExecutionStats, error) {
	if err := requireID("problem id", problemID); err != nil {
		return nil, err
	}
	stats, err := s.records.StatsByProblem(ctx, problemID)
	if err != nil {
		s.logger.Error("Failed to compute problem stats", "problemId", problemID, "error", err)
		return nil, fmt.Errorf("%w: failed to compute stats: %w", errs.ErrStore, err)
	}
	return stats, nil
}

func (s *RecordService) PurgeByUser(ctx context.Context, userID string) (int64, error) {
	if err := requireID("user id", userID); err != nil {
		return 0, err
	}
	n, err := s.records.DeleteByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to purge user records", "userId", userID, "error", err)
		return 0, fmt.Errorf("%w: failed to purge records: %w", errs.ErrStore, err)
	}
	s.logger.Warn("Purged execution records", "userId", userID, "count", n)
	return n, nil
}

func (s *RecordService) PurgeByProblem(ctx context.Context, problemID string) (int64, error) {
	if err := requireID("problem id", problemID); err != nil {
		return 0, err
	}
	n, err := s.records.DeleteByProblem(ctx, problemID)
	if err != nil {
		s.logger.Error("Failed to purge problem records", "problemId", problemID, "error", err)
		return 0, fmt.Errorf("%w: failed to purge records: %w", errs.ErrStore, err)
	}
	s.logger.Warn("Purged execution records", "problemId", problemID, "count", n)
	return n, nil
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

var _ secondary.ExecutionRecordRepository = (*ExecutionRecordRepository)(nil)

type ExecutionRecordRepository struct {
	mu      sync.RWMutex
	records []*domain.ExecutionRecord
	now     func() time.Time
}

func NewExecutionRecordRepository() *ExecutionRecordRepository {
	return &ExecutionRecordRepository{now: func() time.Time { return time.Now().UTC() }}
}

func (r *ExecutionRecordRepository) Append(_ context.Context, record *domain.ExecutionRecord) (*domain.ExecutionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *record
	c.ID = uuid.New()
	c.CreatedAt = r.now()
	r.records = append(r.records, &c)
	out := c
	return &out, nil
}

func (r *ExecutionRecordRepository) filter(keep func(*domain.ExecutionRecord) bool) []*domain.ExecutionRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.ExecutionRecord
	for _, rec := range r.records {
		if keep(rec) {
			c := *rec
			out = append(out, &c)
		}
	}
	return out
}

func (r *ExecutionRecordRepository) StatsByUser(_ context.Context, userID string) (*domain.ExecutionStats, error) {
	stats := domain.ComputeExecutionStats(r.filter(func(rec *domain.ExecutionRecord) bool {
		return rec.UserID == userID
	}))
	return &stats, nil
}

func (r *ExecutionRecordRepository) StatsByProblem(_ context.Context, problemID string) (*domain.ExecutionStats, error) {
	stats := domain.ComputeExecutionStats(r.filter(func(rec *domain.ExecutionRecord) bool {
		return rec.ProblemID == problemID
	}))
	return &stats, nil
}

func (r *ExecutionRecordRepository) ListByUser(_ context.Context, userID string, filter domain.RecordFilter) ([]*domain.ExecutionRecord, error) {
	out := r.filter(func(rec *domain.ExecutionRecord) bool {
		return rec.UserID == userID && (filter.ProblemID == "" || rec.ProblemID == filter.ProblemID)
	})
	return newestFirst(out, filter.Page), nil
}

func (r *ExecutionRecordRepository) ListByProblem(_ context.Context, problemID string, page domain.Page) ([]*domain.ExecutionRecord, error) {
	out := r.filter(func(rec *domain.ExecutionRecord) bool {
		return rec.ProblemID == problemID
	})
	return newestFirst(out, page), nil
}

func (r *ExecutionRecordRepository) DeleteByUser(_ context.Context, userID string) (int64, error) {
	return r.delete(func(rec *domain.ExecutionRecord) bool { return rec.UserID == userID }), nil
}

func (r *ExecutionRecordRepository) DeleteByProblem(_ context.Context, problemID string) (int64, error) {
	return r.delete(func(rec *domain.ExecutionRecord) bool { return rec.ProblemID == problemID }), nil
}

func (r *ExecutionRecordRepository) delete(match func(*domain.ExecutionRecord) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	var n int64
	for _, rec := range r.records {
		if match(rec) {
			n++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return n
}

// newestFirst sorts by creation time descending, later appends first on ties.
func newestFirst(records []*domain.ExecutionRecord, page domain.Page) []*domain.ExecutionRecord {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return paginate(records, page)
}

func paginate[T any](items []T, page domain.Page) []T {
	if page.Offset >= len(items) {
		return []T{}
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

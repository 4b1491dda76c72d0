package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

var _ secondary.SubmissionRepository = (*SubmissionRepository)(nil)

type SubmissionRepository struct {
	mu          sync.RWMutex
	submissions []*domain.Submission
}

func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{}
}

// Save inserts or replaces by ID
func (r *SubmissionRepository) Save(_ context.Context, submission *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *submission
	for i, s := range r.submissions {
		if s.ID == submission.ID {
			r.submissions[i] = &c
			return nil
		}
	}
	r.submissions = append(r.submissions, &c)
	return nil
}

func (r *SubmissionRepository) Get(_ context.Context, id uuid.UUID) (*domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.submissions {
		if s.ID == id {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (r *SubmissionRepository) ListByUser(ctx context.Context, userID string, filter domain.SubmissionFilter) ([]*domain.Submission, error) {
	all, _ := r.ListAllByUser(ctx, userID)
	out := all[:0]
	for _, s := range all {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.ProblemID != "" && s.ProblemID != filter.ProblemID {
			continue
		}
		out = append(out, s)
	}
	return paginate(out, filter.Page), nil
}

// ListAllByUser returns every submission of the user, newest first
func (r *SubmissionRepository) ListAllByUser(_ context.Context, userID string) ([]*domain.Submission, error) {
	r.mu.RLock()
	var out []*domain.Submission
	for i := len(r.submissions) - 1; i >= 0; i-- {
		if s := r.submissions[i]; s.UserID == userID {
			c := *s
			out = append(out, &c)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

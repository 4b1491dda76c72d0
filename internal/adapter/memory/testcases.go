// Package memory holds in-process repositories used for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ secondary.TestCaseRepository = (*TestCaseRepository)(nil)

type TestCaseRepository struct {
	mu    sync.RWMutex
	cases []*domain.TestCase
}

func NewTestCaseRepository() *TestCaseRepository {
	return &TestCaseRepository{}
}

func (r *TestCaseRepository) ListByProblem(_ context.Context, problemID string, filter domain.TestCaseFilter) ([]*domain.TestCase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.TestCase
	for _, tc := range r.cases {
		if tc.ProblemID != problemID {
			continue
		}
		if filter.QuickOnly && !tc.IsQuickTest {
			continue
		}
		if filter.FullOnly && tc.IsQuickTest {
			continue
		}
		c := *tc
		out = append(out, &c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RunsBefore(out[j])
	})
	return out, nil
}

func (r *TestCaseRepository) Get(_ context.Context, id uuid.UUID) (*domain.TestCase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, tc := range r.cases {
		if tc.ID == id {
			c := *tc
			return &c, nil
		}
	}
	return nil, nil
}

func (r *TestCaseRepository) Create(ctx context.Context, testCase *domain.TestCase) error {
	return r.CreateBatch(ctx, []*domain.TestCase{testCase})
}

func (r *TestCaseRepository) CreateBatch(_ context.Context, testCases []*domain.TestCase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, tc := range testCases {
		if tc.ID == uuid.Nil {
			tc.ID = domain.NewTestCaseID()
		}
		if tc.CreatedAt.IsZero() {
			tc.CreatedAt = now
		}
		if tc.UpdatedAt.IsZero() {
			tc.UpdatedAt = tc.CreatedAt
		}
		c := *tc
		r.cases = append(r.cases, &c)
	}
	return nil
}

func (r *TestCaseRepository) Update(_ context.Context, testCase *domain.TestCase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, tc := range r.cases {
		if tc.ID == testCase.ID {
			testCase.CreatedAt = tc.CreatedAt
			testCase.UpdatedAt = time.Now().UTC()
			c := *testCase
			r.cases[i] = &c
			return nil
		}
	}
	return errs.ErrNotFound
}

func (r *TestCaseRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, tc := range r.cases {
		if tc.ID == id {
			r.cases = append(r.cases[:i], r.cases[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

package testcase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ ITestCaseService = (*TestCaseService)(nil)

type TestCaseService struct {
	repo   secondary.TestCaseRepository
	logger primary.Logger
}

func NewTestCaseService(repo secondary.TestCaseRepository, logger primary.Logger) *TestCaseService {
	return &TestCaseService{repo: repo, logger: logger}
}

func validate(problemID string, in domain.TestCaseInput) error {
	if problemID == "" {
		return fmt.Errorf("%w: problem id is required", errs.ErrInvalidArgument)
	}
	if in.ExpectedOutput == "" {
		return fmt.Errorf("%w: expected output is required", errs.ErrInvalidArgument)
	}
	return nil
}

func build(problemID string, in domain.TestCaseInput) *domain.TestCase {
	tc := domain.NewTestCase(problemID, in.Input, in.ExpectedOutput, in.IsHidden, in.IsQuickTest)
	tc.Description = in.Description
	return tc
}

func (s *TestCaseService) Create(ctx context.Context, problemID string, in domain.TestCaseInput) (*domain.TestCase, error) {
	if err := validate(problemID, in); err != nil {
		return nil, err
	}
	tc := build(problemID, in)
	if err := s.repo.Create(ctx, tc); err != nil {
		s.logger.Error("Failed to create test case", "problemId", problemID, "error", err)
		return nil, fmt.Errorf("%w: failed to create test case: %w", errs.ErrStore, err)
	}
	s.logger.Info("Created test case", "testCaseId", tc.ID, "problemId", problemID)
	return tc, nil
}

func (s *TestCaseService) CreateBatch(ctx context.Context, problemID string, in []domain.TestCaseInput) ([]*domain.TestCase, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: no test cases given", errs.ErrInvalidArgument)
	}
	cases := make([]*domain.TestCase, 0, len(in))
	for i, item := range in {
		if err := validate(problemID, item); err != nil {
			return nil, fmt.Errorf("test case #%d: %w", i, err)
		}
		cases = append(cases, build(problemID, item))
	}
	if err := s.repo.CreateBatch(ctx, cases); err != nil {
		s.logger.Error("Failed to create test cases", "problemId", problemID, "count", len(cases), "error", err)
		return nil, fmt.Errorf("%w: failed to create test cases: %w", errs.ErrStore, err)
	}
	return cases, nil
}

func (s *TestCaseService) Get(ctx context.Context, id uuid.UUID) (*domain.TestCase, error) {
	tc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get test case: %w", errs.ErrStore, err)
	}
	if tc == nil {
		return nil, fmt.Errorf("test case %s: %w", id, errs.ErrNotFound)
	}
	return tc, nil
}

func (s *TestCaseService) Update(ctx context.Context, id uuid.UUID, in domain.TestCaseInput) (*domain.TestCase, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validate(existing.ProblemID, in); err != nil {
		return nil, err
	}

	existing.Input = in.Input
	existing.ExpectedOutput = in.ExpectedOutput
	existing.Description = in.Description
	existing.IsHidden = in.IsHidden
	existing.IsQuickTest = in.IsQuickTest
	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to update test case", "testCaseId", id, "error", err)
		return nil, fmt.Errorf("%w: failed to update test case: %w", errs.ErrStore, err)
	}
	return existing, nil
}

func (s *TestCaseService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("test case %s: %w", id, errs.ErrNotFound)
		}
		s.logger.Error("Failed to delete test case", "testCaseId", id, "error", err)
		return fmt.Errorf("%w: failed to delete test case: %w", errs.ErrStore, err)
	}
	s.logger.Info("Deleted test case", "testCaseId", id)
	return nil
}

func (s *TestCaseService) ListForProblem(ctx context.Context, problemID string) ([]*domain.TestCase, error) {
	cases, err := s.repo.ListByProblem(ctx, problemID, domain.TestCaseFilter{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list test cases: %w", errs.ErrStore, err)
	}
	return cases, nil
}

func (s *TestCaseService) ListVisible(ctx context.Context, problemID string) ([]domain.TestCase, error) {
	cases, err := s.repo.ListByProblem(ctx, problemID, domain.TestCaseFilter{QuickOnly: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list test cases: %w", errs.ErrStore, err)
	}
	out := make([]domain.TestCase, 0, len(cases))
	for _, tc := range cases {
		out = append(out, tc.Redacted())
	}
	return out, nil
}

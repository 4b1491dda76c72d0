package submission

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/core/services/testrun"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ ISubmissionService = (*SubmissionService)(nil)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	recentCount     = 5
)

// Languages accepted for submissions. The engine may support fewer.
var submissionLanguages = []string{"python", "javascript", "java", "cpp", "c", "go", "rust", "typescript"}

type SubmissionService struct {
	runner      testrun.ITestRunService
	submissions secondary.SubmissionRepository
	metrics     primary.Metrics
	logger      primary.Logger
}

func NewSubmissionService(
	runner testrun.ITestRunService,
	submissions secondary.SubmissionRepository,
	metrics primary.Metrics,
	logger primary.Logger,
) *SubmissionService {
	if metrics == nil {
		metrics = primary.NopMetrics{}
	}
	return &SubmissionService{
		runner:      runner,
		submissions: submissions,
		metrics:     metrics,
		logger:      logger,
	}
}

func (s *SubmissionService) Submit(ctx context.Context, userID, problemID, code, language string) (*domain.Submission, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if problemID == "" {
		return nil, fmt.Errorf("%w: problem id is required", errs.ErrInvalidArgument)
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: code is required", errs.ErrInvalidArgument)
	}
	if !slices.Contains(submissionLanguages, language) {
		return nil, fmt.Errorf("%w: language must be one of: %s", errs.ErrUnsupportedLanguage, strings.Join(submissionLanguages, ", "))
	}

	sub := domain.NewSubmission(userID, code, language, problemID)
	result, err := s.runner.RunFullTest(ctx, userID, problemID, code, language)
	switch {
	case errors.Is(err, errs.ErrInvalidCode):
		sub.Status = domain.StatusCompileError
		s.logger.Info("Submission rejected by validator", "userId", userID, "problemId", problemID, "reason", err.Error())
	case err != nil:
		return nil, err
	default:
		sub.Grade(result)
	}

	if err := s.submissions.Save(ctx, sub); err != nil {
		s.logger.Error("Failed to save submission", "submissionId", sub.ID, "error", err)
		return nil, fmt.Errorf("%w: failed to save submission: %w", errs.ErrStore, err)
	}
	s.metrics.ObserveSubmission(language, sub.Status)
	s.logger.Info("Submission graded",
		"submissionId", sub.ID,
		"userId", userID,
		"problemId", problemID,
		"status", sub.Status,
		"passed", sub.TestCasesPassed,
		"total", sub.TotalTestCases,
	)
	return sub, nil
}

func (s *SubmissionService) Get(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	sub, err := s.submissions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get submission: %w", errs.ErrStore, err)
	}
	if sub == nil {
		return nil, fmt.Errorf("submission %s: %w", id, errs.ErrNotFound)
	}
	return sub, nil
}

func (s *SubmissionService) ListByUser(ctx context.Context, userID string, filter domain.SubmissionFilter) ([]*domain.Submission, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", errs.ErrInvalidArgument)
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", errs.ErrInvalidArgument, filter.Status)
	}
	filter.Page = filter.Page.Normalize(defaultPageSize, maxPageSize)
	subs, err := s.submissions.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list submissions: %w", errs.ErrStore, err)
	}
	return subs, nil
}

func (s *SubmissionService) StatsByUser(ctx context.Context, userID string) (*domain.SubmissionStats, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", errs.ErrInvalidArgument)
	}
	all, err := s.submissions.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load submissions: %w", errs.ErrStore, err)
	}

	stats := &domain.SubmissionStats{
		TotalSubmissions:     len(all),
		LanguageDistribution: make(map[string]int),
		RecentSubmissions:    []*domain.Submission{},
	}
	solved := make(map[string]struct{})
	for _, sub := range all {
		stats.LanguageDistribution[sub.Language]++
		if sub.Status == domain.StatusAccepted {
			stats.AcceptedSubmissions++
			solved[sub.ProblemID] = struct{}{}
		}
	}
	stats.ProblemsSolved = len(solved)
	if stats.TotalSubmissions > 0 {
		rate := float64(stats.AcceptedSubmissions) / float64(stats.TotalSubmissions) * 100
		stats.SuccessRate = math.Round(rate*100) / 100
	}

	recent, err := s.submissions.ListByUser(ctx, userID, domain.SubmissionFilter{Page: domain.Page{Limit: recentCount}})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list recent submissions: %w", errs.ErrStore, err)
	}
	if recent != nil {
		stats.RecentSubmissions = recent
	}
	return stats, nil
}

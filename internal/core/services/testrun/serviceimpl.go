package testrun

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/core/services/comparator"
	"gitlab.com/codeprep.net/internal/core/services/engine"
	"gitlab.com/codeprep.net/internal/core/services/validator"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ ITestRunService = (*TestRunService)(nil)

const (
	DefaultQuickTimeout = 3000 * time.Millisecond
	DefaultFullTimeout  = 10000 * time.Millisecond

	outputMismatch = "Output mismatch"
	internalError  = "Execution failed due to an internal error"
)

type Options struct {
	QuickTimeout time.Duration
	FullTimeout  time.Duration
	// Parallelism caps concurrently running cases of one run
	Parallelism int
}

type TestRunService struct {
	validator validator.ICodeValidator
	engine    engine.IExecutionEngine
	testCases secondary.TestCaseRepository
	records   secondary.ExecutionRecordRepository
	publisher secondary.ExecutionEventPublisher
	metrics   primary.Metrics
	logger    primary.Logger
	opts      Options
}

func NewTestRunService(
	codeValidator validator.ICodeValidator,
	executionEngine engine.IExecutionEngine,
	testCases secondary.TestCaseRepository,
	records secondary.ExecutionRecordRepository,
	publisher secondary.ExecutionEventPublisher,
	metrics primary.Metrics,
	logger primary.Logger,
	opts Options,
) *TestRunService {
	if opts.QuickTimeout <= 0 {
		opts.QuickTimeout = DefaultQuickTimeout
	}
	if opts.FullTimeout <= 0 {
		opts.FullTimeout = DefaultFullTimeout
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	if metrics == nil {
		metrics = primary.NopMetrics{}
	}
	return &TestRunService{
		validator: codeValidator,
		engine:    executionEngine,
		testCases: testCases,
		records:   records,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		opts:      opts,
	}
}

func (s *TestRunService) RunQuickTest(ctx context.Context, userID, problemID, code, language string) (*domain.ExecutionResult, error) {
	return s.run(ctx, userID, problemID, code, language, true)
}

func (s *TestRunService) RunFullTest(ctx context.Context, userID, problemID, code, language string) (*domain.ExecutionResult, error) {
	return s.run(ctx, userID, problemID, code, language, false)
}

func (s *TestRunService) run(ctx context.Context, userID, problemID, code, language string, quick bool) (*domain.ExecutionResult, error) {
	if v := s.validator.Validate(code, language); !v.Valid {
		s.logger.Info("Rejected code", "userId", userID, "problemId", problemID, "reason", v.Error)
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCode, v.Error)
	}

	langID, ok := s.engine.Resolve(language)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedLanguage, language)
	}

	cases, err := s.testCases.ListByProblem(ctx, problemID, domain.TestCaseFilter{QuickOnly: quick})
	if err != nil {
		s.logger.Error("Failed to fetch test cases", "problemId", problemID, "error", err)
		return nil, fmt.Errorf("%w: failed to fetch test cases: %w", errs.ErrStore, err)
	}

	timeout := s.opts.FullTimeout
	if quick {
		timeout = s.opts.QuickTimeout
	}

	s.logger.Debug("Running test cases",
		"userId", userID,
		"problemId", problemID,
		"language", langID,
		"quick", quick,
		"cases", len(cases))

	start := time.Now()
	results := make([]domain.TestCaseResult, len(cases))

	var g errgroup.Group
	g.SetLimit(s.opts.Parallelism)
	for i, tc := range cases {
		i, tc := i, tc
		g.Go(func() error {
			results[i] = s.runCase(ctx, tc, code, langID, timeout)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	result := domain.NewExecutionResult(results, elapsed.Milliseconds(), quick)

	record, err := s.records.Append(ctx, domain.NewExecutionRecord(userID, problemID, code, langID, result))
	if err != nil {
		s.logger.Error("Failed to append execution record", "userId", userID, "problemId", problemID, "error", err)
		return nil, fmt.Errorf("%w: failed to append execution record: %w", errs.ErrStore, err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRecorded(ctx, record); err != nil {
			s.logger.Warn("Failed to publish execution event", "recordId", record.ID, "error", err)
		}
	}
	s.metrics.ObserveRun(langID, quick, result.Passed, elapsed)

	s.logger.Info("Test run finished",
		"recordId", record.ID,
		"problemId", problemID,
		"quick", quick,
		"passed", result.PassedCount,
		"total", result.TotalCount)

	for i := range result.Results {
		if result.Results[i].IsHidden {
			result.Results[i].Input = ""
			result.Results[i].ExpectedOutput = ""
		}
	}
	return result, nil
}

func (s *TestRunService) runCase(ctx context.Context, tc *domain.TestCase, code, langID string, timeout time.Duration) domain.TestCaseResult {
	res := domain.TestCaseResult{
		TestCaseID:     tc.ID,
		Input:          tc.Input,
		ExpectedOutput: tc.ExpectedOutput,
		IsHidden:       tc.IsHidden,
	}

	start := time.Now()
	out, err := s.engine.Run(ctx, code, tc.Input, langID, timeout)
	elapsed := time.Since(start)
	res.ExecutionTimeMs = elapsed.Milliseconds()

	switch {
	case errors.Is(err, errs.ErrExecutionTimeout):
		res.Status = domain.StatusTimeLimitExceeded
		res.ErrorMessage = err.Error()
	case err != nil:
		// handler errors carry host paths and daemon messages
		if ctx.Err() == nil {
			s.logger.Error("Handler failed", "testCaseId", tc.ID, "language", langID, "error", err)
		}
		res.Status = domain.StatusRuntimeError
		res.ErrorMessage = internalError
	case out.Verdict != "":
		res.ActualOutput = out.Stdout
		res.MemoryUsageMB = out.MemoryMB
		res.Status = out.Verdict
		res.ErrorMessage = out.Detail
		if res.ErrorMessage == "" {
			res.ErrorMessage = string(out.Verdict)
		}
	default:
		res.ActualOutput = out.Stdout
		res.MemoryUsageMB = out.MemoryMB
		res.Passed = comparator.Matches(out.Stdout, tc.ExpectedOutput)
		res.Status = domain.StatusAccepted
		if !res.Passed {
			res.Status = domain.StatusWrongAnswer
			res.ErrorMessage = outputMismatch
		}
	}

	s.metrics.ObserveCase(langID, res.Status, elapsed)
	return res
}

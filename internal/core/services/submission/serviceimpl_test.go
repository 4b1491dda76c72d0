package submission

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codeprep.net/internal/adapter/logging"
	"gitlab.com/codeprep.net/internal/adapter/memory"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

type stubRunner struct {
	result *domain.ExecutionResult
	err    error
	calls  int
}

func (r *stubRunner) RunQuickTest(context.Context, string, string, string, string) (*domain.ExecutionResult, error) {
	return nil, errors.New("not used")
}

func (r *stubRunner) RunFullTest(context.Context, string, string, string, string) (*domain.ExecutionResult, error) {
	r.calls++
	return r.result, r.err
}

type countingMetrics struct {
	last  domain.Status
	count int
}

func (m *countingMetrics) ObserveRun(string, bool, bool, time.Duration)     {}
func (m *countingMetrics) ObserveCase(string, domain.Status, time.Duration) {}
func (m *countingMetrics) ObserveSubmission(_ string, status domain.Status) {
	m.last = status
	m.count++
}

func newService(runner *stubRunner) (*SubmissionService, *memory.SubmissionRepository, *countingMetrics) {
	repo := memory.NewSubmissionRepository()
	metrics := &countingMetrics{}
	return NewSubmissionService(runner, repo, metrics, logging.NewNopLogger()), repo, metrics
}

func resultOf(statuses ...domain.Status) *domain.ExecutionResult {
	results := make([]domain.TestCaseResult, len(statuses))
	for i, st := range statuses {
		results[i] = domain.TestCaseResult{
			TestCaseID:    uuid.New(),
			Status:        st,
			Passed:        st == domain.StatusAccepted,
			MemoryUsageMB: float64(i + 1),
		}
	}
	return domain.NewExecutionResult(results, 42, false)
}

func TestSubmitAccepted(t *testing.T) {
	runner := &stubRunner{result: resultOf(domain.StatusAccepted, domain.StatusAccepted)}
	svc, repo, metrics := newService(runner)

	sub, err := svc.Submit(context.Background(), "u1", "p1", "print(1)", "Python")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, sub.Status)
	assert.Equal(t, "python", sub.Language)
	assert.Equal(t, 2, sub.TestCasesPassed)
	assert.Equal(t, 2, sub.TotalTestCases)
	require.NotNil(t, sub.ExecutionTimeMs)
	assert.Equal(t, int64(42), *sub.ExecutionTimeMs)
	require.NotNil(t, sub.MemoryUsageMB)
	assert.Equal(t, 2.0, *sub.MemoryUsageMB)

	stored, err := repo.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusAccepted, stored.Status)
	assert.Equal(t, 1, metrics.count)
	assert.Equal(t, domain.StatusAccepted, metrics.last)
}

func TestSubmitTakesFirstFailureVerdict(t *testing.T) {
	tests := []struct {
		name     string
		statuses []domain.Status
		want     domain.Status
	}{
		{"wrong answer", []domain.Status{domain.StatusAccepted, domain.StatusWrongAnswer}, domain.StatusWrongAnswer},
		{"timeout first", []domain.Status{domain.StatusTimeLimitExceeded, domain.StatusRuntimeError}, domain.StatusTimeLimitExceeded},
		{"runtime error", []domain.Status{domain.StatusAccepted, domain.StatusRuntimeError}, domain.StatusRuntimeError},
		{"memory", []domain.Status{domain.StatusMemoryLimitExceeded}, domain.StatusMemoryLimitExceeded},
		{"non terminal falls back", []domain.Status{domain.StatusPending}, domain.StatusWrongAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newService(&stubRunner{result: resultOf(tt.statuses...)})
			sub, err := svc.Submit(context.Background(), "u1", "p1", "code", "cpp")
			require.NoError(t, err)
			assert.Equal(t, tt.want, sub.Status)
		})
	}
}

func TestSubmitInvalidCodeIsCompileError(t *testing.T) {
	runner := &stubRunner{err: fmt.Errorf("%w: Dangerous operation detected: eval", errs.ErrInvalidCode)}
	svc, repo, _ := newService(runner)

	sub, err := svc.Submit(context.Background(), "u1", "p1", "eval('1')", "python")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompileError, sub.Status)
	assert.Zero(t, sub.TestCasesPassed)
	assert.Nil(t, sub.ExecutionTimeMs)

	stored, _ := repo.Get(context.Background(), sub.ID)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusCompileError, stored.Status)
}

func TestSubmitRejects(t *testing.T) {
	runner := &stubRunner{result: resultOf(domain.StatusAccepted)}
	svc, _, _ := newService(runner)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "u1", "p1", "code", "cobol")
	assert.True(t, errors.Is(err, errs.ErrUnsupportedLanguage))

	_, err = svc.Submit(ctx, "u1", "", "code", "python")
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))

	_, err = svc.Submit(ctx, "u1", "p1", "   ", "python")
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
	assert.Zero(t, runner.calls)

	runner.err = fmt.Errorf("%w: go", errs.ErrUnsupportedLanguage)
	_, err = svc.Submit(ctx, "u1", "p1", "code", "go")
	assert.True(t, errors.Is(err, errs.ErrUnsupportedLanguage))
}

func TestGetMissing(t *testing.T) {
	svc, _, _ := newService(&stubRunner{})
	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestListAndStats(t *testing.T) {
	svc, repo, _ := newService(&stubRunner{})
	ctx := context.Background()
	base := time.Now().UTC()

	seed := []struct {
		problem, lang string
		status        domain.Status
	}{
		{"p1", "python", domain.StatusWrongAnswer},
		{"p1", "python", domain.StatusAccepted},
		{"p2", "cpp", domain.StatusAccepted},
		{"p1", "java", domain.StatusAccepted},
		{"p3", "python", domain.StatusRuntimeError},
		{"p3", "python", domain.StatusTimeLimitExceeded},
	}
	for i, s := range seed {
		sub := domain.NewSubmission("u1", "code", s.lang, s.problem)
		sub.Status = s.status
		sub.SubmittedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Save(ctx, sub))
	}
	require.NoError(t, repo.Save(ctx, domain.NewSubmission("u2", "code", "go", "p1")))

	stats, err := svc.StatsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalSubmissions)
	assert.Equal(t, 3, stats.AcceptedSubmissions)
	assert.Equal(t, 50.0, stats.SuccessRate)
	assert.Equal(t, 2, stats.ProblemsSolved)
	assert.Equal(t, map[string]int{"python": 4, "cpp": 1, "java": 1}, stats.LanguageDistribution)
	require.Len(t, stats.RecentSubmissions, 5)
	assert.Equal(t, domain.StatusTimeLimitExceeded, stats.RecentSubmissions[0].Status)

	accepted, err := svc.ListByUser(ctx, "u1", domain.SubmissionFilter{Status: domain.StatusAccepted})
	require.NoError(t, err)
	require.Len(t, accepted, 3)
	assert.Equal(t, "java", accepted[0].Language)

	p1, err := svc.ListByUser(ctx, "u1", domain.SubmissionFilter{ProblemID: "p1", Page: domain.Page{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	require.Len(t, p1, 1)
	assert.Equal(t, domain.StatusAccepted, p1[0].Status)
	assert.Equal(t, "python", p1[0].Language)

	_, err = svc.ListByUser(ctx, "u1", domain.SubmissionFilter{Status: "Bogus"})
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))

	empty, err := svc.StatsByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, empty.SuccessRate)
	assert.NotNil(t, empty.RecentSubmissions)
}

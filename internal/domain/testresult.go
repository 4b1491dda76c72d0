package domain

import (
	"github.com/google/uuid"
)

// Status represents the verdict of a single test case or a whole submission
type Status string

const (
	StatusPending             Status = "Pending"
	StatusAccepted            Status = "Accepted"
	StatusWrongAnswer         Status = "Wrong Answer"
	StatusTimeLimitExceeded   Status = "Time Limit Exceeded"
	StatusRuntimeError        Status = "Runtime Error"
	StatusCompileError        Status = "Compile Error"
	StatusMemoryLimitExceeded Status = "Memory Limit Exceeded"
	StatusOutputLimitExceeded Status = "Output Limit Exceeded"
	StatusPresentationError   Status = "Presentation Error"
)

var terminalStatuses = map[Status]bool{
	StatusAccepted:            true,
	StatusWrongAnswer:         true,
	StatusTimeLimitExceeded:   true,
	StatusRuntimeError:        true,
	StatusCompileError:        true,
	StatusMemoryLimitExceeded: true,
	StatusOutputLimitExceeded: true,
	StatusPresentationError:   true,
}

// IsTerminal reports whether s is one of the final grading verdicts.
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid reports whether s belongs to the submission status vocabulary.
func (s Status) IsValid() bool {
	return s == StatusPending || terminalStatuses[s]
}

// HandlerOutput is what a language handler produces for one input
type HandlerOutput struct {
	Stdout   string
	MemoryMB float64
	// Verdict is set by handlers that detect a failure class themselves
	// (compile error, memory or output limit). Empty means the program ran.
	Verdict Status
	Detail  string
}

// TestCaseResult represents the result of a single test case execution
type TestCaseResult struct {
	TestCaseID      uuid.UUID `json:"test_case_id"`
	Passed          bool      `json:"passed"`
	Status          Status    `json:"status"`
	Input           string    `json:"input"`
	ExpectedOutput  string    `json:"expected_output"`
	ActualOutput    string    `json:"actual_output"`
	ExecutionTimeMs int64     `json:"execution_time_ms"`
	MemoryUsageMB   float64   `json:"memory_usage_mb"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	IsHidden        bool      `json:"is_hidden"`
}

// ExecutionResult represents the result of code execution against test cases
type ExecutionResult struct {
	Passed          bool             `json:"passed"`
	PassedCount     int              `json:"passed_count"`
	TotalCount      int              `json:"total_count"`
	Results         []TestCaseResult `json:"results"`
	ExecutionTimeMs int64            `json:"execution_time_ms"`
	MemoryUsageMB   float64          `json:"memory_usage_mb"`
	IsQuickTest     bool             `json:"is_quick_test"`
}

// NewExecutionResult aggregates ordered per-case results.
func NewExecutionResult(results []TestCaseResult, elapsedMs int64, isQuickTest bool) *ExecutionResult {
	res := &ExecutionResult{
		Results:         results,
		TotalCount:      len(results),
		ExecutionTimeMs: elapsedMs,
		IsQuickTest:     isQuickTest,
	}
	if res.Results == nil {
		res.Results = []TestCaseResult{}
	}
	for _, r := range results {
		if r.Passed {
			res.PassedCount++
		}
		if r.MemoryUsageMB > res.MemoryUsageMB {
			res.MemoryUsageMB = r.MemoryUsageMB
		}
	}
	res.Passed = res.PassedCount == res.TotalCount
	return res
}

// FirstFailure returns the first failing result in order, or nil.
func (r *ExecutionResult) FirstFailure() *TestCaseResult {
	for i := range r.Results {
		if !r.Results[i].Passed {
			return &r.Results[i]
		}
	}
	return nil
}

// ValidationResult is the outcome of the static code check
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

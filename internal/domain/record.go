package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionRecord is one row of the run history. Rows are never updated.
type ExecutionRecord struct {
	ID              uuid.UUID `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	ProblemID       string    `db:"problem_id" json:"problem_id"`
	Code            string    `db:"code" json:"code"`
	Language        string    `db:"language" json:"language"`
	Passed          bool      `db:"passed" json:"passed"`
	PassedCount     int       `db:"passed_count" json:"passed_count"`
	TotalCount      int       `db:"total_count" json:"total_count"`
	ExecutionTimeMs int64     `db:"execution_time_ms" json:"execution_time_ms"`
	MemoryUsageMB   float64   `db:"memory_usage_mb" json:"memory_usage_mb"`
	IsQuickTest     bool      `db:"is_quick_test" json:"is_quick_test"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type ExecutionRecordTable struct {
	ID              string
	UserID          string
	ProblemID       string
	Code            string
	Language        string
	Passed          string
	PassedCount     string
	TotalCount      string
	ExecutionTimeMs string
	MemoryUsageMB   string
	IsQuickTest     string
	CreatedAt       string
}

func GetExecutionRecordTable() ExecutionRecordTable {
	return ExecutionRecordTable{
		ID:              "id",
		UserID:          "user_id",
		ProblemID:       "problem_id",
		Code:            "code",
		Language:        "language",
		Passed:          "passed",
		PassedCount:     "passed_count",
		TotalCount:      "total_count",
		ExecutionTimeMs: "execution_time_ms",
		MemoryUsageMB:   "memory_usage_mb",
		IsQuickTest:     "is_quick_test",
		CreatedAt:       "created_at",
	}
}

func (ExecutionRecordTable) TableName() string {
	return "execution_records"
}

// NewExecutionRecord builds the history row for a finished run.
// ID and CreatedAt are assigned by the store on append.
func NewExecutionRecord(userID, problemID, code, language string, result *ExecutionResult) *ExecutionRecord {
	return &ExecutionRecord{
		UserID:          userID,
		ProblemID:       problemID,
		Code:            code,
		Language:        language,
		Passed:          result.Passed,
		PassedCount:     result.PassedCount,
		TotalCount:      result.TotalCount,
		ExecutionTimeMs: result.ExecutionTimeMs,
		MemoryUsageMB:   result.MemoryUsageMB,
		IsQuickTest:     result.IsQuickTest,
	}
}

// ExecutionStats aggregates records of one user or one problem
type ExecutionStats struct {
	TotalExecutions        int     `db:"total_executions" json:"total_executions"`
	PassedExecutions       int     `db:"passed_executions" json:"passed_executions"`
	QuickTestExecutions    int     `db:"quick_test_executions" json:"quick_test_executions"`
	FullTestExecutions     int     `db:"full_test_executions" json:"full_test_executions"`
	AverageExecutionTimeMs float64 `db:"average_execution_time_ms" json:"average_execution_time_ms"`
	AverageMemoryUsageMB   float64 `db:"average_memory_usage_mb" json:"average_memory_usage_mb"`
}

// ComputeExecutionStats is the full-scan aggregation used by stores that
// cannot push it down to a query.
func ComputeExecutionStats(records []*ExecutionRecord) ExecutionStats {
	var stats ExecutionStats
	var totalTime int64
	var totalMem float64
	for _, r := range records {
		stats.TotalExecutions++
		if r.Passed {
			stats.PassedExecutions++
		}
		if r.IsQuickTest {
			stats.QuickTestExecutions++
		} else {
			stats.FullTestExecutions++
		}
		totalTime += r.ExecutionTimeMs
		totalMem += r.MemoryUsageMB
	}
	if stats.TotalExecutions > 0 {
		stats.AverageExecutionTimeMs = float64(totalTime) / float64(stats.TotalExecutions)
		stats.AverageMemoryUsageMB = totalMem / float64(stats.TotalExecutions)
	}
	return stats
}

// Page is a limit/offset window
type Page struct {
	Limit  int
	Offset int
}

// Normalize applies def when the limit is unset and clamps to max.
func (p Page) Normalize(def, max int) Page {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if max > 0 && p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// RecordFilter narrows per-user history listing
type RecordFilter struct {
	ProblemID string
	Page
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Submission is a user's graded attempt at a problem
type Submission struct {
	ID              uuid.UUID `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	ProblemID       string    `db:"problem_id" json:"problem_id"`
	Code            string    `db:"code" json:"code"`
	Language        string    `db:"language" json:"language"`
	Status          Status    `db:"status" json:"status"`
	ExecutionTimeMs *int64    `db:"execution_time_ms" json:"execution_time_ms,omitempty"`
	MemoryUsageMB   *float64  `db:"memory_usage_mb" json:"memory_usage_mb,omitempty"`
	TestCasesPassed int       `db:"test_cases_passed" json:"test_cases_passed"`
	TotalTestCases  int       `db:"total_test_cases" json:"total_test_cases"`
	SubmittedAt     time.Time `db:"submitted_at" json:"submitted_at"`
}

type SubmissionTable struct {
	ID              string
	UserID          string
	ProblemID       string
	Code            string
	Language        string
	Status          string
	ExecutionTimeMs string
	MemoryUsageMB   string
	TestCasesPassed string
	TotalTestCases  string
	SubmittedAt     string
}

func GetSubmissionTable() SubmissionTable {
	return SubmissionTable{
		ID:              "id",
		UserID:          "user_id",
		ProblemID:       "problem_id",
		Code:            "code",
		Language:        "language",
		Status:          "status",
		ExecutionTimeMs: "execution_time_ms",
		MemoryUsageMB:   "memory_usage_mb",
		TestCasesPassed: "test_cases_passed",
		TotalTestCases:  "total_test_cases",
		SubmittedAt:     "submitted_at",
	}
}

func (SubmissionTable) TableName() string {
	return "submissions"
}

// NewSubmission creates a new submission
func NewSubmission(userID, code, language, problemID string) *Submission {
	return &Submission{
		ID:          uuid.New(),
		UserID:      userID,
		Code:        code,
		Language:    language,
		ProblemID:   problemID,
		Status:      StatusPending,
		SubmittedAt: time.Now().UTC(),
	}
}

// Grade copies the outcome of a full run into the submission.
func (s *Submission) Grade(result *ExecutionResult) {
	s.TestCasesPassed = result.PassedCount
	s.TotalTestCases = result.TotalCount
	elapsed := result.ExecutionTimeMs
	mem := result.MemoryUsageMB
	s.ExecutionTimeMs = &elapsed
	s.MemoryUsageMB = &mem
	if result.Passed {
		s.Status = StatusAccepted
		return
	}
	s.Status = StatusWrongAnswer
	if failed := result.FirstFailure(); failed != nil && failed.Status.IsTerminal() {
		s.Status = failed.Status
	}
}

// SubmissionFilter narrows per-user submission listing
type SubmissionFilter struct {
	Status    Status
	ProblemID string
	Page
}

// SubmissionStats summarises a user's submissions
type SubmissionStats struct {
	TotalSubmissions     int            `json:"total_submissions"`
	AcceptedSubmissions  int            `json:"accepted_submissions"`
	SuccessRate          float64        `json:"success_rate"`
	ProblemsSolved       int            `json:"problems_solved"`
	LanguageDistribution map[string]int `json:"language_distribution"`
	RecentSubmissions    []*Submission  `json:"recent_submissions"`
}

package domain

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// TestCase represents a test case for code execution
type TestCase struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProblemID      string    `db:"problem_id" json:"problem_id"`
	Input          string    `db:"input" json:"input"`
	ExpectedOutput string    `db:"expected_output" json:"expected_output"`
	Description    *string   `db:"description" json:"description,omitempty"`
	IsHidden       bool      `db:"is_hidden" json:"is_hidden"`
	IsQuickTest    bool      `db:"is_quick_test" json:"is_quick_test"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Redacted returns a copy that is safe to send to a client.
// Hidden cases lose their input and expected output.
func (t TestCase) Redacted() TestCase {
	if t.IsHidden {
		t.Input = ""
		t.ExpectedOutput = ""
	}
	return t
}

type TestCaseTable struct {
	ID             string
	ProblemID      string
	Input          string
	ExpectedOutput string
	Description    string
	IsHidden       string
	IsQuickTest    string
	CreatedAt      string
	UpdatedAt      string
}

func GetTestCaseTable() TestCaseTable {
	return TestCaseTable{
		ID:             "id",
		ProblemID:      "problem_id",
		Input:          "input",
		ExpectedOutput: "expected_output",
		Description:    "description",
		IsHidden:       "is_hidden",
		IsQuickTest:    "is_quick_test",
		CreatedAt:      "created_at",
		UpdatedAt:      "updated_at",
	}
}

func (TestCaseTable) TableName() string {
	return "test_cases"
}

// TestCaseFilter narrows ListByProblem. Setting both flags yields nothing.
type TestCaseFilter struct {
	QuickOnly bool
	FullOnly  bool
}

// NewTestCaseID returns a time-ordered id. Ids made by one process sort in
// creation order even when their timestamps are equal.
func NewTestCaseID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// RunsBefore is the execution order: quick cases first, then creation time,
// then id.
func (t *TestCase) RunsBefore(o *TestCase) bool {
	if t.IsQuickTest != o.IsQuickTest {
		return t.IsQuickTest
	}
	if !t.CreatedAt.Equal(o.CreatedAt) {
		return t.CreatedAt.Before(o.CreatedAt)
	}
	return bytes.Compare(t.ID[:], o.ID[:]) < 0
}

// NewTestCase creates a new test case owned by problemID
func NewTestCase(problemID, input, expectedOutput string, isHidden, isQuickTest bool) *TestCase {
	now := time.Now().UTC()
	return &TestCase{
		ID:             NewTestCaseID(),
		ProblemID:      problemID,
		Input:          input,
		ExpectedOutput: expectedOutput,
		IsHidden:       isHidden,
		IsQuickTest:    isQuickTest,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// TestCaseInput is the writable part of a test case
type TestCaseInput struct {
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expected_output"`
	Description    *string `json:"description,omitempty"`
	IsHidden       bool    `json:"is_hidden"`
	IsQuickTest    bool    `json:"is_quick_test"`
}

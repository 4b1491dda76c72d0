package testcaserepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/codeprep.net/internal/adapter/sqldb"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	querybuilder "gitlab.com/codeprep.net/internal/utils"
)

var _ secondary.TestCaseRepository = &testCaseRepo{}

type testCaseRepo struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

func New(db *sqlx.DB, logger primary.Logger, schema string) secondary.TestCaseRepository {
	return &testCaseRepo{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

func columns() []string {
	tbl := domain.GetTestCaseTable()
	return []string{
		tbl.ID, tbl.ProblemID, tbl.Input, tbl.ExpectedOutput, tbl.Description,
		tbl.IsHidden, tbl.IsQuickTest, tbl.CreatedAt, tbl.UpdatedAt,
	}
}

func values(tc *domain.TestCase) []interface{} {
	return []interface{}{
		tc.ID, tc.ProblemID, tc.Input, tc.ExpectedOutput, tc.Description,
		tc.IsHidden, tc.IsQuickTest, tc.CreatedAt, tc.UpdatedAt,
	}
}

func (r testCaseRepo) ListByProblem(ctx context.Context, problemID string, filter domain.TestCaseFilter) ([]*domain.TestCase, error) {
	tbl := domain.GetTestCaseTable()
	qb := querybuilder.NewQueryBuilder(r.schema).
		Select(columns()...).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.ProblemID), problemID)
	if filter.QuickOnly {
		qb.And(fmt.Sprintf("%s = ?", tbl.IsQuickTest), true)
	}
	if filter.FullOnly {
		qb.And(fmt.Sprintf("%s = ?", tbl.IsQuickTest), false)
	}
	query, args := qb.
		OrderBy(tbl.IsQuickTest, false).
		OrderBy(tbl.CreatedAt, true).
		OrderBy(tbl.ID, true).
		Build()

	cases := make([]*domain.TestCase, 0)
	if err := r.db.SelectContext(ctx, &cases, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}
	return cases, nil
}

func (r testCaseRepo) Get(ctx context.Context, id uuid.UUID) (*domain.TestCase, error) {
	tbl := domain.GetTestCaseTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(columns()...).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.ID), id).
		Build()

	var tc domain.TestCase
	err := r.db.GetContext(ctx, &tc, r.db.Rebind(query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get test case: %w", err)
	}
	return &tc, nil
}

func (r testCaseRepo) Create(ctx context.Context, testCase *domain.TestCase) error {
	return r.CreateBatch(ctx, []*domain.TestCase{testCase})
}

func (r testCaseRepo) CreateBatch(ctx context.Context, testCases []*domain.TestCase) error {
	if len(testCases) == 0 {
		return nil
	}
	qb := querybuilder.NewQueryBuilder(r.schema).
		Insert(columns()...).
		Into(domain.GetTestCaseTable().TableName())
	for _, tc := range testCases {
		qb.Values(values(tc)...)
	}
	query, args := qb.Build()

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to insert test cases", "count", len(testCases), "error", err)
		return fmt.Errorf("failed to insert test cases: %w", err)
	}
	return nil
}

func (r testCaseRepo) Update(ctx context.Context, testCase *domain.TestCase) error {
	tbl := domain.GetTestCaseTable()
	testCase.UpdatedAt = time.Now().UTC()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Update(tbl.TableName(), querybuilder.UpdateData{
			tbl.Input:          testCase.Input,
			tbl.ExpectedOutput: testCase.ExpectedOutput,
			tbl.Description:    testCase.Description,
			tbl.IsHidden:       testCase.IsHidden,
			tbl.IsQuickTest:    testCase.IsQuickTest,
			tbl.UpdatedAt:      testCase.UpdatedAt,
		}).
		Where(fmt.Sprintf("%s = ?", tbl.ID), testCase.ID).
		Build()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to update test case: %w", err)
	}
	return sqldb.RequireAffected(res)
}

func (r testCaseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tbl := domain.GetTestCaseTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Delete(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.ID), id).
		Build()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to delete test case: %w", err)
	}
	return sqldb.RequireAffected(res)
}

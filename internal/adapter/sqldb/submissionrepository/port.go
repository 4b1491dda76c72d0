package submissionrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	querybuilder "gitlab.com/codeprep.net/internal/utils"
)

var _ secondary.SubmissionRepository = &submissionRepo{}

type submissionRepo struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

func New(db *sqlx.DB, logger primary.Logger, schema string) secondary.SubmissionRepository {
	return &submissionRepo{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

func columns() []string {
	tbl := domain.GetSubmissionTable()
	return []string{
		tbl.ID, tbl.UserID, tbl.ProblemID, tbl.Code, tbl.Language, tbl.Status,
		tbl.ExecutionTimeMs, tbl.MemoryUsageMB, tbl.TestCasesPassed, tbl.TotalTestCases,
		tbl.SubmittedAt,
	}
}

// Save inserts the submission or overwrites its grading columns.
func (r submissionRepo) Save(ctx context.Context, s *domain.Submission) error {
	tbl := domain.GetSubmissionTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Insert(columns()...).
		Into(tbl.TableName()).
		Values(
			s.ID, s.UserID, s.ProblemID, s.Code, s.Language, s.Status,
			s.ExecutionTimeMs, s.MemoryUsageMB, s.TestCasesPassed, s.TotalTestCases,
			s.SubmittedAt,
		).
		OnConflict(tbl.ID).
		SetExclude(tbl.Status, tbl.ExecutionTimeMs, tbl.MemoryUsageMB, tbl.TestCasesPassed, tbl.TotalTestCases).
		Build()

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to save submission", "submissionId", s.ID, "error", err)
		return fmt.Errorf("failed to save submission: %w", err)
	}
	return nil
}

func (r submissionRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	tbl := domain.GetSubmissionTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(columns()...).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.ID), id).
		Build()

	var s domain.Submission
	if err := r.db.GetContext(ctx, &s, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &s, nil
}

func (r submissionRepo) ListByUser(ctx context.Context, userID string, filter domain.SubmissionFilter) ([]*domain.Submission, error) {
	tbl := domain.GetSubmissionTable()
	qb := querybuilder.NewQueryBuilder(r.schema).
		Select(columns()...).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.UserID), userID)
	if filter.Status != "" {
		qb.And(fmt.Sprintf("%s = ?", tbl.Status), filter.Status)
	}
	if filter.ProblemID != "" {
		qb.And(fmt.Sprintf("%s = ?", tbl.ProblemID), filter.ProblemID)
	}
	query, args := qb.
		OrderBy(tbl.SubmittedAt, false).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Build()

	subs := make([]*domain.Submission, 0)
	if err := r.db.SelectContext(ctx, &subs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

func (r submissionRepo) ListAllByUser(ctx context.Context, userID string) ([]*domain.Submission, error) {
	return r.ListByUser(ctx, userID, domain.SubmissionFilter{})
}

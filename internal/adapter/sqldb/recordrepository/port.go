package recordrepository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	querybuilder "gitlab.com/codeprep.net/internal/utils"
)

var _ secondary.ExecutionRecordRepository = &recordRepo{}

type recordRepo struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

func New(db *sqlx.DB, logger primary.Logger, schema string) secondary.ExecutionRecordRepository {
	return &recordRepo{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

func columns() []string {
	tbl := domain.GetExecutionRecordTable()
	return []string{
		tbl.ID, tbl.UserID, tbl.ProblemID, tbl.Code, tbl.Language,
		tbl.Passed, tbl.PassedCount, tbl.TotalCount,
		tbl.ExecutionTimeMs, tbl.MemoryUsageMB, tbl.IsQuickTest, tbl.CreatedAt,
	}
}

func (r recordRepo) Append(ctx context.Context, record *domain.ExecutionRecord) (*domain.ExecutionRecord, error) {
	stored := *record
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().UTC()

	query, args := querybuilder.NewQueryBuilder(r.schema).
		Insert(columns()...).
		Into(domain.GetExecutionRecordTable().TableName()).
		Values(
			stored.ID, stored.UserID, stored.ProblemID, stored.Code, stored.Language,
			stored.Passed, stored.PassedCount, stored.TotalCount,
			stored.ExecutionTimeMs, stored.MemoryUsageMB, stored.IsQuickTest, stored.CreatedAt,
		).
		Build()

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to insert execution record", "userId", record.UserID, "error", err)
		return nil, fmt.Errorf("failed to insert execution record: %w", err)
	}
	return &stored, nil
}

// stats pushes the aggregation down to the database.
func (r recordRepo) stats(ctx context.Context, col, value string) (*domain.ExecutionStats, error) {
	tbl := domain.GetExecutionRecordTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Select(
			"COUNT(*) AS total_executions",
			fmt.Sprintf("COALESCE(SUM(CASE WHEN %s THEN 1 ELSE 0 END), 0) AS passed_executions", tbl.Passed),
			fmt.Sprintf("COALESCE(SUM(CASE WHEN %s THEN 1 ELSE 0 END), 0) AS quick_test_executions", tbl.IsQuickTest),
			fmt.Sprintf("COALESCE(SUM(CASE WHEN %s THEN 0 ELSE 1 END), 0) AS full_test_executions", tbl.IsQuickTest),
			fmt.Sprintf("COALESCE(AVG(%s), 0) AS average_execution_time_ms", tbl.ExecutionTimeMs),
			fmt.Sprintf("COALESCE(AVG(%s), 0) AS average_memory_usage_mb", tbl.MemoryUsageMB),
		).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", col), value).
		Build()

	var stats domain.ExecutionStats
	if err := r.db.GetContext(ctx, &stats, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate execution records: %w", err)
	}
	return &stats, nil
}

func (r recordRepo) StatsByUser(ctx context.Context, userID string) (*domain.ExecutionStats, error) {
	return r.stats(ctx, domain.GetExecutionRecordTable().UserID, userID)
}

func (r recordRepo) StatsByProblem(ctx context.Context, problemID string) (*domain.ExecutionStats, error) {
	return r.stats(ctx, domain.GetExecutionRecordTable().ProblemID, problemID)
}

func (r recordRepo) list(ctx context.Context, qb querybuilder.QueryBuilder, page domain.Page) ([]*domain.ExecutionRecord, error) {
	tbl := domain.GetExecutionRecordTable()
	query, args := qb.
		OrderBy(tbl.CreatedAt, false).
		Limit(page.Limit).
		Offset(page.Offset).
		Build()

	records := make([]*domain.ExecutionRecord, 0)
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list execution records: %w", err)
	}
	return records, nil
}

func (r recordRepo) ListByUser(ctx context.Context, userID string, filter domain.RecordFilter) ([]*domain.ExecutionRecord, error) {
	tbl := domain.GetExecutionRecordTable()
	qb := querybuilder.NewQueryBuilder(r.schema).
		Select(columns()...).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.UserID), userID)
	if filter.ProblemID != "" {
		qb.And(fmt.Sprintf("%s = ?", tbl.ProblemID), filter.ProblemID)
	}
	return r.list(ctx, qb, filter.Page)
}

func (r recordRepo) ListByProblem(ctx context.Context, problemID string, page domain.Page) ([]*domain.ExecutionRecord, error) {
	tbl := domain.GetExecutionRecordTable()
	qb := querybuilder.NewQueryBuilder(r.schema).
		Select(columns()...).
		From(tbl.TableName()).
		Where(fmt.Sprintf("%s = ?", tbl.ProblemID), problemID)
	return r.list(ctx, qb, page)
}

func (r recordRepo) deleteWhere(ctx context.Context, col, value string) (int64, error) {
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Delete(domain.GetExecutionRecordTable().TableName()).
		Where(fmt.Sprintf("%s = ?", col), value).
		Build()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete execution records: %w", err)
	}
	return res.RowsAffected()
}

func (r recordRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return r.deleteWhere(ctx, domain.GetExecutionRecordTable().UserID, userID)
}

func (r recordRepo) DeleteByProblem(ctx context.Context, problemID string) (int64, error) {
	return r.deleteWhere(ctx, domain.GetExecutionRecordTable().ProblemID, problemID)
}

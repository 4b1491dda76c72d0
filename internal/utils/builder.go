package querybuilder

import (
	"fmt"
	"strings"
)

// QueryBuilder assembles SQL with '?' placeholders. Callers rebind for
// their driver (sqlx.Rebind or db.Rebind).
type QueryBuilder interface {
	Select(cols ...string) QueryBuilder
	From(table string) QueryBuilder
	Into(table string) QueryBuilder
	Where(clause string, args ...interface{}) QueryBuilder
	And(clause string, args ...interface{}) QueryBuilder

	OrderBy(col string, asc bool) QueryBuilder
	Limit(limit int) QueryBuilder
	Offset(offset int) QueryBuilder

	Insert(cols ...string) QueryBuilder

	Values(values ...interface{}) QueryBuilder

	Update(table string, data UpdateData) QueryBuilder
	Delete(table string) QueryBuilder
	Build() (string, []interface{})

	// OnConflict alone renders DO NOTHING; with SetExclude it upserts.
	OnConflict(cols ...string) QueryBuilder
	SetExclude(cols ...string) QueryBuilder
}

type operation int

const (
	opSelect operation = iota
	opInsert
	opUpdate
	opDelete
)

type queryBuilder struct {
	op          operation
	table       string
	cols        []string
	conditions  []Condition
	values      InsertRows
	updateData  UpdateData
	orderBy     []string
	limit       int
	offset      int
	excludeCols []string
	onConflict  []string
	schema      string
}

// SetExclude updates cols from the rejected row (EXCLUDED.col)
func (q *queryBuilder) SetExclude(cols ...string) QueryBuilder {
	q.excludeCols = cols
	return q
}

func (q *queryBuilder) OnConflict(cols ...string) QueryBuilder {
	q.onConflict = cols
	return q
}

func (q *queryBuilder) Select(cols ...string) QueryBuilder {
	q.op = opSelect
	q.cols = append(q.cols, cols...)
	return q
}

func (q *queryBuilder) Insert(cols ...string) QueryBuilder {
	q.op = opInsert
	q.cols = cols
	return q
}

func (q *queryBuilder) Values(values ...interface{}) QueryBuilder {
	q.values = append(q.values, values)
	return q
}

func (q *queryBuilder) Update(table string, data UpdateData) QueryBuilder {
	q.op = opUpdate
	q.table = table
	q.updateData = data
	return q
}

func (q *queryBuilder) Delete(table string) QueryBuilder {
	q.op = opDelete
	q.table = table
	return q
}

func (q *queryBuilder) And(clause string, args ...interface{}) QueryBuilder {
	q.conditions = append(q.conditions, Condition{
		clause: clause,
		args:   args,
	})
	return q
}

func (q *queryBuilder) OrderBy(col string, asc bool) QueryBuilder {
	orderVector := "ASC"
	if !asc {
		orderVector = "DESC"
	}
	q.orderBy = append(q.orderBy, fmt.Sprintf("%s %s", col, orderVector))
	return q
}

func (q *queryBuilder) Limit(limit int) QueryBuilder {
	q.limit = limit
	return q
}

func (q *queryBuilder) Offset(offset int) QueryBuilder {
	q.offset = offset
	return q
}

func (q *queryBuilder) From(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Into(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Where(clause string, args ...interface{}) QueryBuilder {
	return q.And(clause, args...)
}

func (q *queryBuilder) tableName() string {
	if q.schema == "" {
		return q.table
	}
	return fmt.Sprintf("%s.%s", q.schema, q.table)
}

func (q *queryBuilder) where(query string, args []interface{}) (string, []interface{}) {
	if len(q.conditions) == 0 {
		return query, args
	}
	condition, condArgs := renderConditions(q.conditions)
	return query + fmt.Sprintf(" WHERE %s", condition), append(args, condArgs...)
}

// Build renders the statement. An invalid statement renders as "".
func (q *queryBuilder) Build() (string, []interface{}) {
	if q.table == "" {
		return "", nil
	}
	switch q.op {
	case opInsert:
		return q.buildInsert()
	case opUpdate:
		return q.buildUpdate()
	case opDelete:
		return q.buildDelete()
	default:
		return q.buildSelect()
	}
}

func (q *queryBuilder) buildSelect() (string, []interface{}) {
	cols := "*"
	if len(q.cols) > 0 {
		cols = strings.Join(q.cols, ", ")
	}
	query := fmt.Sprintf("SELECT %s FROM %s", cols, q.tableName())

	query, args := q.where(query, nil)

	if len(q.orderBy) > 0 {
		query += fmt.Sprintf(" ORDER BY %s", strings.Join(q.orderBy, ", "))
	}

	// OFFSET is only rendered together with LIMIT; sqlite rejects it alone
	if q.limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.limit)
		if q.offset > 0 {
			query += " OFFSET ?"
			args = append(args, q.offset)
		}
	}

	return query, args
}

func (q *queryBuilder) buildInsert() (string, []interface{}) {
	numOfParam := len(q.cols)
	if len(q.values) == 0 || numOfParam == 0 {
		return "", nil
	}

	valueTuples := make([]string, len(q.values))
	args := make([]interface{}, 0, len(q.values)*numOfParam)
	placeholders := fmt.Sprintf("(%s)", strings.TrimSuffix(strings.Repeat("?, ", numOfParam), ", "))
	for i, row := range q.values {
		if len(row) != numOfParam {
			return "", nil
		}
		args = append(args, row...)
		valueTuples[i] = placeholders
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", q.tableName(), strings.Join(q.cols, ", "), strings.Join(valueTuples, ", "))

	if len(q.onConflict) == 0 {
		return query, args
	}

	query += fmt.Sprintf(" ON CONFLICT (%s)", strings.Join(q.onConflict, ", "))
	if len(q.excludeCols) == 0 {
		return query + " DO NOTHING", args
	}

	sets := make([]string, 0, len(q.excludeCols))
	for _, excludeCol := range q.excludeCols {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", excludeCol, excludeCol))
	}
	return query + " DO UPDATE SET " + strings.Join(sets, ", "), args
}

func (q *queryBuilder) buildUpdate() (string, []interface{}) {
	if len(q.updateData) == 0 {
		return "", nil
	}
	cols := q.updateData.sortedColumns()
	setClause := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	for _, col := range cols {
		setClause = append(setClause, fmt.Sprintf("%s = ?", col))
		args = append(args, q.updateData[col])
	}
	query := fmt.Sprintf("UPDATE %s SET %s", q.tableName(), strings.Join(setClause, ", "))

	return q.where(query, args)
}

// buildDelete refuses to render a DELETE without a WHERE clause.
func (q *queryBuilder) buildDelete() (string, []interface{}) {
	query, args := q.where(fmt.Sprintf("DELETE FROM %s", q.tableName()), nil)
	if !strings.Contains(query, " WHERE ") {
		return "", nil
	}
	return query, args
}

func NewQueryBuilder(schema string) QueryBuilder {
	return &queryBuilder{
		schema: schema,
	}
}

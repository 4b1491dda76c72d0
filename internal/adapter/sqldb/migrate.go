package sqldb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// The DDL sticks to types both postgres and sqlite understand.
var tables = []struct {
	name    string
	columns string
	indexes []string
}{
	{
		name: "users",
		columns: `id TEXT PRIMARY KEY,
			user_name TEXT NOT NULL UNIQUE,
			password_hash TEXT,
			email TEXT,
			role TEXT NOT NULL DEFAULT 'user',
			auth_provider TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL`,
	},
	{
		name: "test_cases",
		columns: `id TEXT PRIMARY KEY,
			problem_id TEXT NOT NULL,
			input TEXT NOT NULL,
			expected_output TEXT NOT NULL,
			description TEXT,
			is_hidden BOOLEAN NOT NULL DEFAULT FALSE,
			is_quick_test BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL`,
		indexes: []string{"problem_id"},
	},
	{
		name: "execution_records",
		columns: `id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			problem_id TEXT NOT NULL,
			code TEXT NOT NULL,
			language TEXT NOT NULL,
			passed BOOLEAN NOT NULL,
			passed_count INTEGER NOT NULL,
			total_count INTEGER NOT NULL,
			execution_time_ms BIGINT NOT NULL,
			memory_usage_mb DOUBLE PRECISION NOT NULL,
			is_quick_test BOOLEAN NOT NULL,
			created_at TIMESTAMP NOT NULL`,
		indexes: []string{"user_id", "problem_id"},
	},
	{
		name: "submissions",
		columns: `id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			problem_id TEXT NOT NULL,
			code TEXT NOT NULL,
			language TEXT NOT NULL,
			status TEXT NOT NULL,
			execution_time_ms BIGINT,
			memory_usage_mb DOUBLE PRECISION,
			test_cases_passed INTEGER NOT NULL DEFAULT 0,
			total_test_cases INTEGER NOT NULL DEFAULT 0,
			submitted_at TIMESTAMP NOT NULL`,
		indexes: []string{"user_id"},
	},
}

// Migrate creates missing tables and indexes. It never alters existing ones.
func Migrate(ctx context.Context, db *sqlx.DB, schema string) error {
	if schema != "" {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
			return fmt.Errorf("failed to create schema %s: %w", schema, err)
		}
	}
	for _, t := range tables {
		stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", Table(schema, t.name), t.columns)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.name, err)
		}
		for _, col := range t.indexes {
			stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)", t.name, col, Table(schema, t.name), col)
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create index on %s(%s): %w", t.name, col, err)
			}
		}
	}
	return nil
}

// Package sqldb opens the SQL store and creates its schema. The
// repositories live in the subpackages.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/static/errs"
)

const pingTimeout = 5 * time.Second

func init() {
	sqlx.BindDriver(config.DriverSqlite, sqlx.QUESTION)
}

// Open connects with the driver named in cfg and verifies the connection.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres, config.DriverSqlite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if cfg.Url == "" {
		return nil, fmt.Errorf("database url cannot be empty")
	}

	db, err := sqlx.Open(cfg.Driver, cfg.Url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Driver == config.DriverSqlite {
		// every connection to ":memory:" is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(10 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Table qualifies table with schema when one is configured.
func Table(schema, table string) string {
	if schema == "" {
		return table
	}
	return schema + "." + table
}

// IsUniqueViolation reports a unique constraint failure on either driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// RequireAffected maps an update or delete that touched no row to ErrNotFound.
func RequireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

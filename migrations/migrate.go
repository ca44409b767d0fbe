// Package migrations holds the embedded goose schema migrations for the
// outbox and connection tables.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

const dialect = "pgx"

//go:embed *.sql
var schema embed.FS

// Migrate brings the database schema up to date. Safe to run on every
// startup; goose skips migrations that are already applied.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(schema)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set migration dialect %q: %w", dialect, err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// package repositories provides the persistence layer for account records.
package repositories

import (
	_ "embed"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schemaSQL string

// builder is the shared statement builder for SQLite placeholder syntax.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// EnsureSchema creates the users table and its indexes if they do not exist.
// Safe to run on every startup; there is no migration path beyond this.
func EnsureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

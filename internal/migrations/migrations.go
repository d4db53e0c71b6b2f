package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the schema for the console's session store. Statements are
// written to run unchanged on both sqlite and postgres.
func Run(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			sealed_token TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			expires_at BIGINT NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS sessions_expires_at ON sessions (expires_at);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

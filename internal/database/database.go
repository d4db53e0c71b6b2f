package database

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DriverFor picks the sql driver for dsn: postgres URLs use pgx, anything
// else is treated as a sqlite path.
func DriverFor(dsn string) (driver, source string) {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "pgx", dsn
	}
	return "sqlite", strings.TrimPrefix(dsn, "sqlite://")
}

// Connect opens the session database for dsn.
func Connect(dsn string) (*sqlx.DB, error) {
	driver, source := DriverFor(dsn)
	db, err := sqlx.Connect(driver, source)
	if err != nil {
		return nil, fmt.Errorf("connect %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// a single writer avoids SQLITE_BUSY on the local file
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
	}
	return db, nil
}

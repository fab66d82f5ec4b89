package db

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqlitePrefix = "sqlite://"

// DriverDSN maps a DATABASE_URL onto a database/sql driver name and DSN.
// postgres:// and postgresql:// URLs use pgx; sqlite://path uses a local file.
func DriverDSN(url string) (string, string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", url, nil
	case strings.HasPrefix(url, sqlitePrefix):
		path := strings.TrimPrefix(url, sqlitePrefix)
		if path == "" {
			return "", "", fmt.Errorf("sqlite url has no path: %q", url)
		}
		return "sqlite", path, nil
	}
	return "", "", fmt.Errorf("unsupported database url %q", url)
}

// Open connects to the ledger database named by url.
func Open(url string) (*sqlx.DB, error) {
	driver, dsn, err := DriverDSN(url)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// one writer at a time
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

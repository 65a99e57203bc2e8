package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/mattn/go-sqlite3" // Required by the library implementation.
)

type SQLiteStore struct {
	sqlStore
}

// NewSQLite opens (creating if needed) the database file at path and migrates it.
func NewSQLite(ctx context.Context, path string, log *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open DB file: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create DB instance: %w", err)
	}
	if err := runMigrations(ctx, "sqlite", "sqlite3", driver, log); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{sqlStore{db: db}}, nil
}

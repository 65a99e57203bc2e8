package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	sqlStore
}

// NewPostgres connects with the pgx stdlib driver and migrates the schema. The
// migrate driver takes an advisory lock, so concurrent services can start together.
func NewPostgres(ctx context.Context, dsn string, log *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create DB instance: %w", err)
	}
	if err := runMigrations(ctx, "postgres", "pgx5", driver, log); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStore{sqlStore{db: db, numbered: true}}, nil
}

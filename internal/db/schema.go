package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// reports.user_id carries no foreign key: deleting a user leaves its reports in place.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	email TEXT NOT NULL,
	password TEXT NOT NULL,
	admin BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS users_email_idx ON users (email);

CREATE TABLE IF NOT EXISTS reports (
	id BIGSERIAL PRIMARY KEY,
	make TEXT NOT NULL,
	model TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	year INTEGER NOT NULL,
	kilometers DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	latitude DOUBLE PRECISION NOT NULL,
	approved BOOLEAN NOT NULL DEFAULT FALSE,
	user_id BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS reports_estimate_idx ON reports (make, model, approved, year);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL,
	password TEXT NOT NULL,
	admin BOOLEAN NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS users_email_idx ON users (email);

CREATE TABLE IF NOT EXISTS reports (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	make TEXT NOT NULL,
	model TEXT NOT NULL,
	price REAL NOT NULL,
	year INTEGER NOT NULL,
	kilometers REAL NOT NULL,
	longitude REAL NOT NULL,
	latitude REAL NOT NULL,
	approved BOOLEAN NOT NULL DEFAULT 0,
	user_id INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS reports_estimate_idx ON reports (make, model, approved, year);
`

func EnsurePostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create postgres schema: %w", err)
	}
	return nil
}

func EnsureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create sqlite schema: %w", err)
	}
	return nil
}

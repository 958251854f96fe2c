package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables if they are missing. The unique indexes on
// email are the storage-layer backstop for concurrent duplicate
// registrations; the repos map violations to the domain conflict error.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			pin_hash   TEXT NOT NULL,
			mobile     TEXT NOT NULL,
			role       TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'approved',
			balance    BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS pending_users (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			pin_hash   TEXT NOT NULL,
			mobile     TEXT NOT NULL,
			role       TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS cash_in_requests (
			id         UUID PRIMARY KEY,
			user_id    UUID NOT NULL,
			agent_id   UUID NOT NULL,
			amount     BIGINT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS users_role_idx ON users (role);
		CREATE INDEX IF NOT EXISTS cash_in_requests_user_idx ON cash_in_requests (user_id);
	`)

	return err
}

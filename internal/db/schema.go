package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables on first boot. The UNIQUE constraint on
// id_card is the authoritative duplicate-submission guard; the service-level
// existence check is only a fast-path rejection.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS registrations (
		id                BIGSERIAL PRIMARY KEY,
		name              TEXT        NOT NULL,
		id_card           TEXT        NOT NULL UNIQUE,
		gender            TEXT        NOT NULL DEFAULT '',
		phone             TEXT        NOT NULL,
		email             TEXT        NOT NULL,
		wechat            TEXT        NOT NULL DEFAULT '',
		city              TEXT        NOT NULL DEFAULT '',
		position          TEXT        NOT NULL DEFAULT '',
		attendance_type   TEXT        NOT NULL,
		has_plus_ones     BOOLEAN     NOT NULL DEFAULT FALSE,
		plus_ones_count   INTEGER     NOT NULL DEFAULT 0,
		companions        TEXT,
		permit_image_url  TEXT        NOT NULL DEFAULT '',
		payment_image_url TEXT        NOT NULL,
		total_fee         INTEGER     NOT NULL DEFAULT 0,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
	CREATE INDEX IF NOT EXISTS registrations_created_at_idx
		ON registrations (created_at DESC, id DESC)`)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS admins (
		id            UUID        PRIMARY KEY,
		username      TEXT        NOT NULL UNIQUE,
		password_hash TEXT        NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)

	return err
}

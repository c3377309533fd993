package db

import (
	"context"
	"errors"
	"time"

	"github.com/Johnhpure/meet/internal/config"
	"github.com/Johnhpure/meet/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdmin seeds the configured admin account on first boot. The password
// is stored bcrypt-hashed; the plaintext from the environment never touches
// the database.
func EnsureAdmin(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM admins WHERE username = $1`, cfg.AdminUsername).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO admins (id, username, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		`,
		uuid.NewString(), cfg.AdminUsername, hash, now, now,
	)

	return err
}

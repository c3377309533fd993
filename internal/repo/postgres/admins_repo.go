package postgres

import (
	"context"
	"errors"

	"github.com/Johnhpure/meet/internal/domain/admin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminsRepo struct {
	pool *pgxpool.Pool
}

func NewAdminsRepo(pool *pgxpool.Pool) *AdminsRepo {
	return &AdminsRepo{pool: pool}
}

func (r *AdminsRepo) GetByUsername(ctx context.Context, username string) (admin.Admin, error) {
	var a admin.Admin

	err := r.pool.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at, updated_at
         FROM admins
         WHERE username = $1`,
		username,
	).Scan(
		&a.ID,
		&a.Username,
		&a.PasswordHash,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return admin.Admin{}, admin.ErrNotFound
		}

		return admin.Admin{}, err
	}

	return a, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Johnhpure/meet/internal/domain/registration"
	"github.com/Johnhpure/meet/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const registrationColumns = `id, name, id_card, gender, phone, email, wechat, city, position,
	attendance_type, has_plus_ones, plus_ones_count, companions,
	permit_image_url, payment_image_url, total_fee, created_at, updated_at`

type RegistrationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRegistrationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RegistrationsRepo {
	return &RegistrationsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *RegistrationsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts a new registration and returns it with the assigned id and
// timestamps. The duplicate pre-check and the insert share one transaction;
// the UNIQUE constraint on id_card stays the authoritative guard for the
// race two concurrent submissions can still win.
func (repo *RegistrationsRepo) Create(ctx context.Context, reg registration.Registration) (out registration.Registration, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool

	err = repo.observe("registrations.create.duplicate_check", func() error {
		return tx.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM registrations WHERE id_card = $1
		)`, reg.IDCard).Scan(&exists)
	})

	if err != nil {
		return
	}

	if exists {
		err = registration.ErrDuplicateIDCard
		return
	}

	companions, err := encodeCompanions(reg.Companions)

	if err != nil {
		return
	}

	out = reg

	err = repo.observe("registrations.create.insert", func() error {
		return tx.QueryRow(ctx, `
		INSERT INTO registrations
			(name, id_card, gender, phone, email, wechat, city, position,
			 attendance_type, has_plus_ones, plus_ones_count, companions,
			 permit_image_url, payment_image_url, total_fee, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now(),now())
		RETURNING id, created_at, updated_at
	`, reg.Name, reg.IDCard, reg.Gender, reg.Phone, reg.Email, reg.Wechat, reg.City,
			reg.Position, reg.AttendanceType, reg.HasPlusOnes, reg.PlusOnesCount, companions,
			reg.PermitImageURL, reg.PaymentImageURL, reg.TotalFee,
		).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			err = registration.ErrDuplicateIDCard
		}
		out = registration.Registration{}
		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		out = registration.Registration{}
		return
	}

	return
}

// List returns one page of registrations plus the total match count,
// newest first. Each set filter field becomes one parameterized condition.
func (repo *RegistrationsRepo) List(ctx context.Context, filter registration.ListFilter) (regs []registration.Registration, total int, err error) {
	var conds []string
	var args []interface{}

	argPos := 1

	if filter.Keyword != "" {
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d OR id_card ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+filter.Keyword+"%")
		argPos++
	}

	if filter.AttendanceType != "" {
		conds = append(conds, fmt.Sprintf("attendance_type = $%d", argPos))
		args = append(args, filter.AttendanceType)
		argPos++
	}

	if filter.From != nil {
		conds = append(conds, fmt.Sprintf("created_at >= $%d", argPos))
		args = append(args, *filter.From)
		argPos++
	}

	if filter.To != nil {
		conds = append(conds, fmt.Sprintf("created_at <= $%d", argPos))
		args = append(args, *filter.To)
		argPos++
	}

	where := ""

	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	err = repo.observe("registrations.list.count", func() error {
		return repo.pool.QueryRow(ctx, "SELECT COUNT(*) FROM registrations"+where, args...).Scan(&total)
	})

	if err != nil {
		return
	}

	query := "SELECT " + registrationColumns + " FROM registrations" + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)

	args = append(args, filter.PageSize, filter.Offset())

	var rows pgx.Rows

	err = repo.observe("registrations.list.page", func() error {
		rows, err = repo.pool.Query(ctx, query, args...)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	regs = make([]registration.Registration, 0, filter.PageSize)

	for rows.Next() {
		var r registration.Registration

		r, err = scanRegistration(rows)

		if err != nil {
			return
		}

		regs = append(regs, r)
	}

	err = rows.Err()

	if err != nil {
		if repo.prom != nil {
			repo.prom.DbErrorsTotal.WithLabelValues("registrations.list.page", "rows_err").Inc()
		}
		return
	}

	return
}

func (repo *RegistrationsRepo) GetByID(ctx context.Context, id int64) (registration.Registration, error) {
	var reg registration.Registration

	dbErr := repo.observe("registrations.get_by_id", func() error {
		row := repo.pool.QueryRow(ctx, "SELECT "+registrationColumns+" FROM registrations WHERE id = $1", id)

		var e error
		reg, e = scanRegistration(row)
		return e
	})

	if dbErr != nil {
		if errors.Is(dbErr, pgx.ErrNoRows) {
			return registration.Registration{}, registration.ErrNotFound
		}

		return registration.Registration{}, dbErr
	}

	return reg, nil
}

// Update applies a partial patch. Only fields present in the request become
// SET clauses; updated_at is always bumped.
func (repo *RegistrationsRepo) Update(ctx context.Context, id int64, patch registration.UpdateRegistrationRequest) (registration.Registration, error) {
	var sets []string
	var args []interface{}

	argPos := 1

	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.IDCard != nil {
		set("id_card", *patch.IDCard)
	}
	if patch.Gender != nil {
		set("gender", *patch.Gender)
	}
	if patch.Phone != nil {
		set("phone", *patch.Phone)
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.Wechat != nil {
		set("wechat", *patch.Wechat)
	}
	if patch.City != nil {
		set("city", *patch.City)
	}
	if patch.Position != nil {
		set("position", *patch.Position)
	}
	if patch.AttendanceType != nil {
		set("attendance_type", *patch.AttendanceType)
	}
	if patch.HasPlusOnes != nil {
		set("has_plus_ones", *patch.HasPlusOnes)
	}
	if patch.PlusOnesCount != nil {
		set("plus_ones_count", *patch.PlusOnesCount)
	}
	if patch.Companions != nil {
		companions, err := encodeCompanions(*patch.Companions)
		if err != nil {
			return registration.Registration{}, err
		}
		set("companions", companions)
	}
	if patch.PermitImageURL != nil {
		set("permit_image_url", *patch.PermitImageURL)
	}
	if patch.PaymentImageURL != nil {
		set("payment_image_url", *patch.PaymentImageURL)
	}
	if patch.TotalFee != nil {
		set("total_fee", *patch.TotalFee)
	}

	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf(
		"UPDATE registrations SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), argPos, registrationColumns,
	)

	args = append(args, id)

	var reg registration.Registration

	dbErr := repo.observe("registrations.update", func() error {
		row := repo.pool.QueryRow(ctx, query, args...)

		var e error
		reg, e = scanRegistration(row)
		return e
	})

	if dbErr != nil {
		if errors.Is(dbErr, pgx.ErrNoRows) {
			return registration.Registration{}, registration.ErrNotFound
		}

		if IsUniqueViolation(dbErr) {
			return registration.Registration{}, registration.ErrDuplicateIDCard
		}

		return registration.Registration{}, dbErr
	}

	return reg, nil
}

func (repo *RegistrationsRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := repo.observe("registrations.delete", func() error {
		tag, e := repo.pool.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return registration.ErrNotFound
	}

	return nil
}

func (repo *RegistrationsRepo) ExistsByIDCard(ctx context.Context, idCard string) (bool, error) {
	var exists bool

	err := repo.observe("registrations.exists_by_id_card", func() error {
		return repo.pool.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM registrations WHERE id_card = $1
		)`, idCard).Scan(&exists)
	})

	return exists, err
}

// Statistics computes the full snapshot in a single pass over the table.
func (repo *RegistrationsRepo) Statistics(ctx context.Context) (registration.Statistics, error) {
	var stats registration.Statistics

	err := repo.observe("registrations.statistics", func() error {
		return repo.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE attendance_type = 'option1'),
			COUNT(*) FILTER (WHERE attendance_type = 'option2'),
			COUNT(*) FILTER (WHERE attendance_type = 'option3'),
			COALESCE(SUM(plus_ones_count), 0),
			COUNT(*) FILTER (WHERE created_at >= now() - interval '7 days')
		FROM registrations
	`).Scan(
			&stats.Total,
			&stats.Option1Count,
			&stats.Option2Count,
			&stats.Option3Count,
			&stats.TotalPlusOnes,
			&stats.RecentRegistrations,
		)
	})

	if err != nil {
		return registration.Statistics{}, err
	}

	return stats, nil
}

// Companions live JSON-encoded in a single column. NULL means none.

func encodeCompanions(companions []registration.CompanionInfo) (*string, error) {
	if len(companions) == 0 {
		return nil, nil
	}

	b, err := json.Marshal(companions)

	if err != nil {
		return nil, err
	}

	s := string(b)
	return &s, nil
}

func decodeCompanions(raw *string) ([]registration.CompanionInfo, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	var companions []registration.CompanionInfo

	err := json.Unmarshal([]byte(*raw), &companions)

	if err != nil {
		return nil, err
	}

	return companions, nil
}

func scanRegistration(row pgx.Row) (registration.Registration, error) {
	var r registration.Registration
	var companions *string

	err := row.Scan(
		&r.ID, &r.Name, &r.IDCard, &r.Gender, &r.Phone, &r.Email, &r.Wechat,
		&r.City, &r.Position, &r.AttendanceType, &r.HasPlusOnes, &r.PlusOnesCount,
		&companions, &r.PermitImageURL, &r.PaymentImageURL, &r.TotalFee,
		&r.CreatedAt, &r.UpdatedAt,
	)

	if err != nil {
		return registration.Registration{}, err
	}

	r.Companions, err = decodeCompanions(companions)

	if err != nil {
		return registration.Registration{}, err
	}

	return r, nil
}

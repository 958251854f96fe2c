package postgres

import (
	"context"
	"errors"

	"github.com/farhan-labs/mobicash/internal/domain/user"
	"github.com/farhan-labs/mobicash/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const userColumns = `id, name, email, pin_hash, mobile, role, status, balance, created_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PinHash,
		&u.Mobile,
		&u.Role,
		&u.Status,
		&u.Balance,
		&u.CreatedAt,
	)

	return u, err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = r.observe("users.get_by_email", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = user.ErrNotFound
		}
		return
	}

	return
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (u user.User, err error) {
	err = r.observe("users.get_by_id", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = user.ErrNotFound
		}
		return
	}

	return
}

// ListAgents returns every approved account with the agent role.
func (r *UsersRepo) ListAgents(ctx context.Context) (agents []user.User, err error) {
	var rows pgx.Rows

	err = r.observe("users.list_agents", func() error {
		var e error
		rows, e = r.pool.Query(ctx,
			`SELECT `+userColumns+` FROM users WHERE role = $1 AND status = $2`,
			user.RoleAgent, user.StatusApproved,
		)
		return e
	})

	if err != nil {
		return
	}

	defer rows.Close()

	agents = make([]user.User, 0)

	for rows.Next() {
		var u user.User

		e := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PinHash, &u.Mobile, &u.Role, &u.Status, &u.Balance, &u.CreatedAt)

		if e != nil {
			err = e
			return
		}
		agents = append(agents, u)
	}

	if e := rows.Err(); e != nil {
		if r.prom != nil {
			r.prom.DbErrorsTotal.WithLabelValues("users.list_agents", "rows_err").Inc()
		}
		err = e
		return
	}

	return
}

// IsApprovedAgent reports whether id references an approved agent account.
// Used by the strict cash-in path.
func (r *UsersRepo) IsApprovedAgent(ctx context.Context, id string) (ok bool, err error) {
	err = r.observe("users.is_approved_agent", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM users WHERE id = $1 AND role = $2 AND status = $3
		)`, id, user.RoleAgent, user.StatusApproved).Scan(&ok)
	})

	return
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

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

type PendingUsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPendingUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *PendingUsersRepo {
	return &PendingUsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *PendingUsersRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts a new pending registration. Email uniqueness must hold
// across the union of users and pending_users, so both tables are checked
// inside the transaction; the per-table unique indexes are the backstop for
// the check-then-insert race between concurrent registrations.
func (repo *PendingUsersRepo) Create(ctx context.Context, p user.PendingUser) (err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var exists bool

	err = repo.observe("pending_users.create.duplicate_check", func() error {
		return tx.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM users WHERE email = $1
			UNION ALL
			SELECT 1 FROM pending_users WHERE email = $1
		)`, p.Email).Scan(&exists)
	})

	if err != nil {
		return
	}

	if exists {
		err = user.ErrEmailTaken
		return
	}

	err = repo.observe("pending_users.create.insert", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO pending_users (id, name, email, pin_hash, mobile, role, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, p.ID, p.Name, p.Email, p.PinHash, p.Mobile, p.Role, p.Status, p.CreatedAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			err = user.ErrEmailTaken
			return
		}
		return
	}

	err = tx.Commit(ctx)

	return
}

// List returns every pending registration in natural storage order; the
// contract makes no ordering promise.
func (repo *PendingUsersRepo) List(ctx context.Context) (pending []user.PendingUser, err error) {
	var rows pgx.Rows

	err = repo.observe("pending_users.list", func() error {
		var e error
		rows, e = repo.pool.Query(ctx, `
	SELECT id, name, email, pin_hash, mobile, role, status, created_at
	FROM pending_users
	WHERE status = $1
	`, user.StatusPending)
		return e
	})

	if err != nil {
		return
	}

	defer rows.Close()

	pending = make([]user.PendingUser, 0)

	for rows.Next() {
		var p user.PendingUser

		e := rows.Scan(&p.ID, &p.Name, &p.Email, &p.PinHash, &p.Mobile, &p.Role, &p.Status, &p.CreatedAt)

		if e != nil {
			err = e
			return
		}
		pending = append(pending, p)
	}

	if e := rows.Err(); e != nil {
		if repo.prom != nil {
			repo.prom.DbErrorsTotal.WithLabelValues("pending_users.list", "rows_err").Inc()
		}
		err = e
		return
	}

	return
}

// Approve promotes a pending registration to an approved user in a single
// transaction: lock the pending row, insert the user, delete the pending
// row. The row lock makes a concurrent second approval observe NotFound
// instead of creating a duplicate; the insert-before-delete order means a
// crash can at worst leave a dangling pending row, never a lost user.
func (repo *PendingUsersRepo) Approve(ctx context.Context, pendingID string, policy user.BalancePolicy) (approved user.User, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var p user.PendingUser

	err = repo.observe("pending_users.approve.lock", func() error {
		return tx.QueryRow(ctx, `
		SELECT id, name, email, pin_hash, mobile, role, status, created_at
		FROM pending_users
		WHERE id = $1
		FOR UPDATE
	`, pendingID).Scan(&p.ID, &p.Name, &p.Email, &p.PinHash, &p.Mobile, &p.Role, &p.Status, &p.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = user.ErrPendingNotFound
		}
		return
	}

	approved = user.NewFromPending(p, policy.InitialBalance(p.Role))

	err = repo.observe("pending_users.approve.insert_user", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO users (id, name, email, pin_hash, mobile, role, status, balance, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, approved.ID, approved.Name, approved.Email, approved.PinHash, approved.Mobile,
			approved.Role, approved.Status, approved.Balance, approved.CreatedAt)
		return e
	})

	if err != nil {
		return
	}

	err = repo.observe("pending_users.approve.delete_pending", func() error {
		_, e := tx.Exec(ctx, `DELETE FROM pending_users WHERE id = $1`, pendingID)
		return e
	})

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	return
}

// Delete removes a pending registration without promoting it.

func (repo *PendingUsersRepo) Delete(ctx context.Context, pendingID string) (err error) {
	var tag pgconn.CommandTag
	op := "pending_users.delete"
	err = repo.observe(op, func() error {
		var e error
		tag, e = repo.pool.Exec(ctx, `DELETE FROM pending_users WHERE id = $1`, pendingID)

		return e
	})

	if err != nil {
		return
	}

	if tag.RowsAffected() == 0 {
		err = user.ErrPendingNotFound

		return
	}

	return
}

package db

import (
	"context"
	"errors"
	"time"

	"github.com/farhan-labs/mobicash/internal/config"
	"github.com/farhan-labs/mobicash/internal/domain/user"
	"github.com/farhan-labs/mobicash/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser seeds an approved administrator directly into the users
// table so the admin routes are usable on a fresh database. The admin never
// passes through the pending flow.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the admin already exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPin(cfg.AdminPassword)

	if err != nil {
		return err
	}

	u := user.User{
		ID:        uuid.NewString(),
		Name:      cfg.AdminName,
		Email:     cfg.AdminEmail,
		PinHash:   hash,
		Mobile:    cfg.AdminMobile,
		Role:      user.RoleAdmin,
		Status:    user.StatusApproved,
		Balance:   0,
		CreatedAt: time.Now().UTC(),
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, name, email, pin_hash, mobile, role, status, balance, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
		u.ID, u.Name, u.Email, u.PinHash, u.Mobile, u.Role, u.Status, u.Balance, u.CreatedAt,
	)

	return err
}

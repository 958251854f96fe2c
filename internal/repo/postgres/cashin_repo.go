package postgres

import (
	"context"

	"github.com/farhan-labs/mobicash/internal/domain/cashin"
	"github.com/farhan-labs/mobicash/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CashInRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCashInRepo(pool *pgxpool.Pool, prom *observability.Prom) *CashInRepo {
	return &CashInRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *CashInRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *CashInRepo) Create(ctx context.Context, req cashin.CreateRequest) (cr cashin.Request, err error) {
	cr = cashin.NewFromCreateRequest(req)

	err = repo.observe("cash_in_requests.create", func() error {
		_, e := repo.pool.Exec(ctx, `
		INSERT INTO cash_in_requests (id, user_id, agent_id, amount, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, cr.ID, cr.UserID, cr.AgentID, cr.Amount, cr.Status, cr.CreatedAt)
		return e
	})

	if err != nil {
		cr = cashin.Request{}
		return
	}

	return
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/umbrella-client/internal/application/dispatch"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
)

var _ dispatch.TxRunner = (*TxRunner)(nil)

// TxRunner da a cada caso de uso de movimientos un par de repositorios
// atados a la misma transacción. El stock se bloquea con FOR UPDATE dentro de ella.
type TxRunner struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool, opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted}}
}

// Run confirma si fn devuelve nil; cualquier error (o panic) revierte.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return pgx.BeginTxFunc(ctx, r.pool, r.opts, func(tx pgx.Tx) error {
		return fn(NewMovementRepository(tx), NewProductRepository(tx))
	})
}

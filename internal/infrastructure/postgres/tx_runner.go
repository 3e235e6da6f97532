package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	appdte "github.com/jhoicas/dte-api/internal/application/dte"
	"github.com/jhoicas/dte-api/internal/domain/repository"
)

var _ appdte.EmisionTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunEmision inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// La fila del correlativo queda bloqueada hasta el Commit.
func (r *TxRunner) RunEmision(ctx context.Context, fn func(
	correlativos repository.CorrelativoRepository,
	transmisiones repository.TransmisionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewCorrelativoRepository(tx), NewTransmisionRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

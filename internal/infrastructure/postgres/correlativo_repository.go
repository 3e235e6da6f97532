package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/dte-api/internal/domain/repository"
)

var _ repository.CorrelativoRepository = (*CorrelativoRepo)(nil)

// CorrelativoRepo secuencia de números de control sobre la tabla correlativos.
type CorrelativoRepo struct {
	q Querier
}

// NewCorrelativoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCorrelativoRepository(q Querier) *CorrelativoRepo {
	return &CorrelativoRepo{q: q}
}

// Siguiente incrementa de forma atómica: el UPSERT bloquea la fila hasta el fin de la transacción,
// así que dos emisiones concurrentes nunca obtienen el mismo valor.
func (r *CorrelativoRepo) Siguiente(ctx context.Context, tenantID, tipoDte, ambiente, codEstable string) (int64, error) {
	const q = `
		INSERT INTO correlativos (tenant_id, tipo_dte, ambiente, cod_estable, ultimo, updated_at)
		VALUES ($1, $2, $3, $4, 1, now())
		ON CONFLICT (tenant_id, tipo_dte, ambiente, cod_estable)
		DO UPDATE SET ultimo = correlativos.ultimo + 1, updated_at = now()
		RETURNING ultimo`
	var n int64
	if err := r.q.QueryRow(ctx, q, tenantID, tipoDte, ambiente, codEstable).Scan(&n); err != nil {
		return 0, fmt.Errorf("siguiente correlativo: %w", err)
	}
	return n, nil
}

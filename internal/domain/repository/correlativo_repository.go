package repository

import "context"

// CorrelativoRepository secuencia persistida del número de control por
// (tenant, tipoDte, ambiente, establecimiento).
type CorrelativoRepository interface {
	// Siguiente reserva y devuelve el próximo correlativo (el primero es 1).
	Siguiente(ctx context.Context, tenantID, tipoDte, ambiente, codEstable string) (int64, error)
}

package repository

import (
	"context"

	"github.com/jhoicas/dte-api/internal/domain/entity"
)

// TransmisionRepository define el puerto de persistencia de los registros de transmisión.
// Los registros no se eliminan.
type TransmisionRepository interface {
	Create(ctx context.Context, t *entity.Transmision) error
	// GetByID devuelve domain.ErrNotFound si no existe para el tenant.
	GetByID(ctx context.Context, tenantID, id string) (*entity.Transmision, error)
	GetByCodigoGeneracion(ctx context.Context, tenantID, codigoGeneracion string) (*entity.Transmision, error)
	// Update persiste estado, intentos, sello, observaciones, firma y datos de invalidación.
	Update(ctx context.Context, t *entity.Transmision) error
	ListByTenant(ctx context.Context, tenantID string, estado entity.EstadoTransmision, limit int) ([]*entity.Transmision, error)
}

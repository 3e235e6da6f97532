package repository

import (
	"context"

	"github.com/jhoicas/dte-api/internal/domain/entity"
)

// CertificadoRepository certificados .p12 por tenant.
type CertificadoRepository interface {
	// Get devuelve domain.ErrNotFound si el tenant no tiene certificado.
	Get(ctx context.Context, tenantID string) (*entity.Certificado, error)
	Upsert(ctx context.Context, c *entity.Certificado) error
}

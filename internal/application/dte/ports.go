// Package dte orquesta el ciclo de vida de los DTE: emisión (armado, validación, firma) y
// transmisión a MH con su máquina de estados.
package dte

import (
	"context"
	"time"

	"github.com/jhoicas/dte-api/internal/domain/dte/schema"
	"github.com/jhoicas/dte-api/internal/domain/entity"
	"github.com/jhoicas/dte-api/internal/domain/hacienda"
	"github.com/jhoicas/dte-api/internal/domain/repository"
)

// Autoridad API de MH. Nunca devuelve error: el resultado es Aceptado, Rechazado o ErrorRed.
type Autoridad interface {
	Transmitir(ctx context.Context, cred hacienda.Credenciales, envio hacienda.Envio) hacienda.Respuesta
	Consultar(ctx context.Context, cred hacienda.Credenciales, q hacienda.Consulta) hacienda.Respuesta
	Anular(ctx context.Context, cred hacienda.Credenciales, envio hacienda.EnvioAnulacion) hacienda.Respuesta
}

// Firmante firma un documento y devuelve el JWS compacto.
type Firmante interface {
	SignDTE(doc any) (string, error)
}

// Firmantes resuelve el firmante con el certificado del tenant.
type Firmantes interface {
	Firmante(ctx context.Context, tenantID string) (Firmante, error)
}

// FirmantesFunc adapta una función a Firmantes.
type FirmantesFunc func(ctx context.Context, tenantID string) (Firmante, error)

func (f FirmantesFunc) Firmante(ctx context.Context, tenantID string) (Firmante, error) {
	return f(ctx, tenantID)
}

// Locker exclusión mutua por clave con vencimiento. ok=false si otro la tiene tomada.
type Locker interface {
	Adquirir(ctx context.Context, clave string, ttl time.Duration) (token string, ok bool, err error)
	Liberar(ctx context.Context, clave, token string) error
	// Renovar extiende el vencimiento si token sigue siendo el dueño. ok=false si se perdió.
	Renovar(ctx context.Context, clave, token string, ttl time.Duration) (ok bool, err error)
}

// JobQueue cola de trabajos en segundo plano.
type JobQueue interface {
	Encolar(ctx context.Context, tenantID, operacion string, params any) (string, error)
	Estado(ctx context.Context, jobID string) (*entity.Job, error)
}

// Validador valida documentos contra los esquemas de MH.
type Validador interface {
	Validate(doc any, tipoDte string) (*schema.Result, error)
	ValidateAnulacion(doc any) (*schema.Result, error)
}

// EmisionTxRunner reserva el correlativo y crea el registro en la misma transacción.
type EmisionTxRunner interface {
	RunEmision(ctx context.Context, fn func(
		correlativos repository.CorrelativoRepository,
		transmisiones repository.TransmisionRepository,
	) error) error
}

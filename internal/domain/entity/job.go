package entity

import (
	"encoding/json"
	"time"
)

// EstadoJob estado de un trabajo en segundo plano.
type EstadoJob string

const (
	JobPendiente  EstadoJob = "PENDIENTE"
	JobEnProceso  EstadoJob = "EN_PROCESO"
	JobCompletado EstadoJob = "COMPLETADO"
	JobFallido    EstadoJob = "FALLIDO"
)

// Job trabajo encolado: operación, parámetros y resultado una vez terminado. Params solo se
// conserva mientras el trabajo está PENDIENTE; al tomarlo un worker se descarta.
type Job struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenantId"`
	Operacion string          `json:"operacion"`
	Params    json.RawMessage `json:"params,omitempty"`
	Estado    EstadoJob       `json:"estado"`
	Resultado json.RawMessage `json:"resultado,omitempty"`
	Error     string          `json:"error,omitempty"`
	Intentos  int             `json:"intentos"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

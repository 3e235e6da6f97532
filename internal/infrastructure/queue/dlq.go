package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/dte-api/internal/domain/entity"
)

// DLQPrefix lista de trabajos fallidos por cola: dlq:<cola>.
const DLQPrefix = "dlq:"

// DLQEntry trabajo fallido con los datos para revisarlo a mano. No lleva los parámetros
// (pueden traer credenciales de MH); el resultado identifica el registro afectado.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobID         string          `json:"job_id"`
	TenantID      string          `json:"tenant_id"`
	Operacion     string          `json:"operacion"`
	Resultado     json.RawMessage `json:"resultado,omitempty"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ copia el trabajo fallido a la DLQ. No hay reintento automático: la decisión de
// reenviar a MH es del operador.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job *entity.Job, reason string, log zerolog.Logger) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobID:         job.ID,
		TenantID:      job.TenantID,
		Operacion:     job.Operacion,
		Resultado:     job.Resultado,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      job.Intentos,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: no se pudo serializar")
		return
	}
	dlqKey := DLQPrefix + queue
	if err := rdb.LPush(ctx, dlqKey, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: LPUSH falló")
		return
	}
	log.Warn().Str("queue", queue).Str("job_id", job.ID).Str("reason", reason).
		Int("attempts", job.Intentos).Msg("dlq: trabajo movido a la cola de fallidos")
}

// DLQLength entradas en la DLQ de la cola, para monitoreo.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

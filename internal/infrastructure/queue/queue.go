// Package queue implementa la cola de trabajos en segundo plano: un pool en memoria para una
// sola instancia y una cola Redis (LPUSH/BRPOP) compartida entre instancias.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/jhoicas/dte-api/internal/domain/entity"
)

// Handler procesa los parámetros de un trabajo. El resultado se guarda serializado en el Job
// aunque haya error (por ejemplo, el estado de la transmisión que MH no respondió).
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// ErrOperacionDesconocida no hay handler registrado para la operación.
var ErrOperacionDesconocida = errors.New("operación de trabajo desconocida")

// ejecutar corre el handler y deja el job COMPLETADO o FALLIDO. El handler no se cancela
// al detener el pool: una llamada a MH en curso termina o vence por timeout. Los parámetros
// pueden llevar credenciales: se entregan al handler y no se conservan en el job.
func ejecutar(ctx context.Context, h Handler, job *entity.Job, now func() time.Time) {
	job.Intentos++
	params := job.Params
	job.Params = nil
	res, err := h(context.WithoutCancel(ctx), params)
	if !esNulo(res) {
		if raw, mErr := json.Marshal(res); mErr == nil {
			job.Resultado = raw
		}
	}
	if err != nil {
		job.Estado = entity.JobFallido
		job.Error = err.Error()
	} else {
		job.Estado = entity.JobCompletado
		job.Error = ""
	}
	job.UpdatedAt = now()
}

// esNulo cubre también el puntero nil dentro de una interfaz (*Resultado(nil)).
func esNulo(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func serializarParams(params any) (json.RawMessage, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("serializar parámetros: %w", err)
	}
	return raw, nil
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appdte "github.com/jhoicas/dte-api/internal/application/dte"
	"github.com/jhoicas/dte-api/internal/domain"
	"github.com/jhoicas/dte-api/internal/domain/entity"
)

var _ appdte.JobQueue = (*MemoryQueue)(nil)

// ErrColaLlena la cola en memoria alcanzó su capacidad.
var ErrColaLlena = errors.New("cola de trabajos llena")

// MemoryQueue pool de workers sobre un canal con buffer. El estado de los trabajos vive en
// memoria y se pierde al reiniciar.
type MemoryQueue struct {
	mu         sync.RWMutex
	jobs       map[string]*entity.Job
	handlers   map[string]Handler
	pendientes chan string
	workers    int
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	now        func() time.Time
	log        zerolog.Logger
}

// NewMemoryQueue construye la cola. capacidad es el máximo de trabajos pendientes.
func NewMemoryQueue(workers, capacidad int, log zerolog.Logger) *MemoryQueue {
	if workers <= 0 {
		workers = 1
	}
	if capacidad <= 0 {
		capacidad = workers * 64
	}
	return &MemoryQueue{
		jobs:       make(map[string]*entity.Job),
		handlers:   make(map[string]Handler),
		pendientes: make(chan string, capacidad),
		workers:    workers,
		now:        time.Now,
		log:        log.With().Str("component", "queue-memory").Logger(),
	}
}

// Registrar asocia un handler a una operación. Llamar antes de Start.
func (q *MemoryQueue) Registrar(operacion string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[operacion] = h
}

// Start lanza los workers; se detienen con Stop o al cancelar ctx.
func (q *MemoryQueue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	q.log.Info().Int("workers", q.workers).Msg("pool de trabajos iniciado")
}

// Stop detiene los workers y espera a que terminen el trabajo en curso.
func (q *MemoryQueue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
}

func (q *MemoryQueue) Encolar(_ context.Context, tenantID, operacion string, params any) (string, error) {
	q.mu.RLock()
	_, ok := q.handlers[operacion]
	q.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrOperacionDesconocida, operacion)
	}
	raw, err := serializarParams(params)
	if err != nil {
		return "", err
	}
	ahora := q.now()
	job := &entity.Job{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Operacion: operacion,
		Params:    raw,
		Estado:    entity.JobPendiente,
		CreatedAt: ahora,
		UpdatedAt: ahora,
	}

	q.mu.Lock()
	q.jobs[job.ID] = job
	q.mu.Unlock()

	select {
	case q.pendientes <- job.ID:
		return job.ID, nil
	default:
		q.mu.Lock()
		delete(q.jobs, job.ID)
		q.mu.Unlock()
		return "", ErrColaLlena
	}
}

// Estado devuelve una copia del trabajo.
func (q *MemoryQueue) Estado(_ context.Context, jobID string) (*entity.Job, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	job, ok := q.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (q *MemoryQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			q.log.Debug().Int("worker", id).Msg("worker detenido")
			return
		case jobID := <-q.pendientes:
			q.procesar(ctx, jobID)
		}
	}
}

func (q *MemoryQueue) procesar(ctx context.Context, jobID string) {
	q.mu.Lock()
	job, ok := q.jobs[jobID]
	if !ok {
		q.mu.Unlock()
		return
	}
	h := q.handlers[job.Operacion]
	job.Estado = entity.JobEnProceso
	job.UpdatedAt = q.now()
	trabajo := *job
	job.Params = nil
	q.mu.Unlock()

	ejecutar(ctx, h, &trabajo, q.now)

	q.mu.Lock()
	q.jobs[jobID] = &trabajo
	q.mu.Unlock()

	ev := q.log.Info()
	if trabajo.Estado == entity.JobFallido {
		ev = q.log.Warn().Str("error", trabajo.Error)
	}
	ev.Str("job_id", jobID).Str("operacion", trabajo.Operacion).Str("estado", string(trabajo.Estado)).Msg("trabajo terminado")
}

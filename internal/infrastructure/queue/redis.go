package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appdte "github.com/jhoicas/dte-api/internal/application/dte"
	"github.com/jhoicas/dte-api/internal/domain"
	"github.com/jhoicas/dte-api/internal/domain/entity"
)

var _ appdte.JobQueue = (*RedisQueue)(nil)

const (
	// ColaDTE lista Redis de trabajos pendientes (LPUSH productor, BRPOP workers).
	ColaDTE = "jobs:dte"
	// prefijoJob hash con el estado de cada trabajo.
	prefijoJob = "job:"
	// retencionJob tiempo que se conserva el estado de un trabajo.
	retencionJob = 7 * 24 * time.Hour
	esperaBRPop  = 5 * time.Second
	campoParams  = "params"
)

// RedisQueue cola compartida entre instancias. Los ids viajan por la lista ColaDTE y el
// estado se guarda en el hash job:<id>. Los trabajos fallidos se copian a la DLQ.
type RedisQueue struct {
	rdb      *redis.Client
	cola     string
	handlers map[string]Handler
	mu       sync.RWMutex
	workers  int
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	now      func() time.Time
	log      zerolog.Logger
}

// NewRedisQueue construye la cola sobre un cliente existente.
func NewRedisQueue(rdb *redis.Client, workers int, log zerolog.Logger) *RedisQueue {
	if workers <= 0 {
		workers = 1
	}
	return &RedisQueue{
		rdb:      rdb,
		cola:     ColaDTE,
		handlers: make(map[string]Handler),
		workers:  workers,
		now:      time.Now,
		log:      log.With().Str("component", "queue-redis").Logger(),
	}
}

// Registrar asocia un handler a una operación. Llamar antes de Start.
func (q *RedisQueue) Registrar(operacion string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[operacion] = h
}

func (q *RedisQueue) handler(operacion string) (Handler, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	h, ok := q.handlers[operacion]
	return h, ok
}

func (q *RedisQueue) Encolar(ctx context.Context, tenantID, operacion string, params any) (string, error) {
	if _, ok := q.handler(operacion); !ok {
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
	_, err = q.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		campos := camposJob(job)
		campos[campoParams] = string(job.Params)
		p.HSet(ctx, prefijoJob+job.ID, campos)
		p.Expire(ctx, prefijoJob+job.ID, retencionJob)
		p.LPush(ctx, q.cola, job.ID)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("redis encolar: %w", err)
	}
	return job.ID, nil
}

func (q *RedisQueue) Estado(ctx context.Context, jobID string) (*entity.Job, error) {
	campos, err := q.rdb.HGetAll(ctx, prefijoJob+jobID).Result()
	if err != nil {
		return nil, fmt.Errorf("redis estado job: %w", err)
	}
	if len(campos) == 0 {
		return nil, domain.ErrNotFound
	}
	return jobDeCampos(jobID, campos)
}

// Start lanza los workers. Cada uno bloquea en BRPOP hasta esperaBRPop y vuelve a revisar ctx.
func (q *RedisQueue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	q.log.Info().Int("workers", q.workers).Str("cola", q.cola).Msg("pool de trabajos iniciado")
}

// Stop detiene los workers y espera el trabajo en curso.
func (q *RedisQueue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
}

func (q *RedisQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			q.log.Debug().Int("worker", id).Msg("worker detenido")
			return
		default:
		}
		res, err := q.rdb.BRPop(ctx, esperaBRPop, q.cola).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				q.log.Error().Err(err).Int("worker", id).Msg("BRPOP falló")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(res) < 2 {
			continue
		}
		q.procesar(ctx, res[1])
	}
}

func (q *RedisQueue) procesar(ctx context.Context, jobID string) {
	// Las escrituras de estado no dependen del ctx del pool: un Stop no deja trabajos a medias.
	bg := context.WithoutCancel(ctx)
	job, err := q.Estado(bg, jobID)
	if err != nil {
		q.log.Error().Err(err).Str("job_id", jobID).Msg("trabajo sin estado, se descarta")
		return
	}
	h, ok := q.handler(job.Operacion)
	if !ok {
		job.Estado = entity.JobFallido
		job.Error = ErrOperacionDesconocida.Error()
		job.Params = nil
		job.UpdatedAt = q.now()
		q.reclamar(bg, job)
		SendToDLQ(bg, q.rdb, q.cola, job, job.Error, q.log)
		return
	}

	job.Estado = entity.JobEnProceso
	job.UpdatedAt = q.now()
	q.reclamar(bg, job)

	ejecutar(ctx, h, job, q.now)
	q.guardar(bg, job)

	if job.Estado == entity.JobFallido {
		SendToDLQ(bg, q.rdb, q.cola, job, job.Error, q.log)
		return
	}
	q.log.Info().Str("job_id", jobID).Str("operacion", job.Operacion).Msg("trabajo completado")
}

func (q *RedisQueue) guardar(ctx context.Context, job *entity.Job) {
	if err := q.rdb.HSet(ctx, prefijoJob+job.ID, camposJob(job)).Err(); err != nil {
		q.log.Error().Err(err).Str("job_id", job.ID).Msg("no se pudo guardar el estado del trabajo")
	}
}

// reclamar guarda el nuevo estado y borra los parámetros del hash en la misma transacción:
// las credenciales no quedan en Redis una vez que un worker tomó el trabajo.
func (q *RedisQueue) reclamar(ctx context.Context, job *entity.Job) {
	clave := prefijoJob + job.ID
	_, err := q.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, clave, camposJob(job))
		p.HDel(ctx, clave, campoParams)
		return nil
	})
	if err != nil {
		q.log.Error().Err(err).Str("job_id", job.ID).Msg("no se pudo reclamar el trabajo")
	}
}

// camposJob campos del hash sin los parámetros; solo Encolar los escribe.
func camposJob(job *entity.Job) map[string]any {
	return map[string]any{
		"tenant":    job.TenantID,
		"operacion": job.Operacion,
		"estado":    string(job.Estado),
		"resultado": string(job.Resultado),
		"error":     job.Error,
		"intentos":  job.Intentos,
		"createdAt": job.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt": job.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func jobDeCampos(id string, c map[string]string) (*entity.Job, error) {
	job := &entity.Job{
		ID:        id,
		TenantID:  c["tenant"],
		Operacion: c["operacion"],
		Estado:    entity.EstadoJob(c["estado"]),
		Error:     c["error"],
	}
	if p := c[campoParams]; p != "" {
		job.Params = json.RawMessage(p)
	}
	if r := c["resultado"]; r != "" {
		job.Resultado = json.RawMessage(r)
	}
	if n := c["intentos"]; n != "" {
		v, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("job %s: intentos %q: %w", id, n, err)
		}
		job.Intentos = v
	}
	var err error
	if job.CreatedAt, err = time.Parse(time.RFC3339Nano, c["createdAt"]); err != nil {
		return nil, fmt.Errorf("job %s: createdAt: %w", id, err)
	}
	if job.UpdatedAt, err = time.Parse(time.RFC3339Nano, c["updatedAt"]); err != nil {
		return nil, fmt.Errorf("job %s: updatedAt: %w", id, err)
	}
	return job, nil
}

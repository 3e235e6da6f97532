package dte

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/dte-api/internal/domain"
	dtedoc "github.com/jhoicas/dte-api/internal/domain/dte"
	"github.com/jhoicas/dte-api/internal/domain/entity"
	"github.com/jhoicas/dte-api/internal/domain/hacienda"
	"github.com/jhoicas/dte-api/internal/domain/repository"
	"github.com/jhoicas/dte-api/pkg/mh"
)

// OperacionTransmitir nombre del trabajo de transmisión asíncrona.
const OperacionTransmitir = "dte.transmitir"

// Resultado estado del registro después de una operación con MH.
type Resultado struct {
	ID               string                   `json:"id,omitempty"`
	CodigoGeneracion string                   `json:"codigoGeneracion"`
	NumeroControl    string                   `json:"numeroControl,omitempty"`
	Estado           entity.EstadoTransmision `json:"estado"`
	Intentos         int                      `json:"intentos"`
	SelloRecibido    *string                  `json:"selloRecibido"`
	FhProcesamiento  *time.Time               `json:"fhProcesamiento"`
	CodigoMsg        string                   `json:"codigoMsg,omitempty"`
	DescripcionMsg   string                   `json:"descripcionMsg,omitempty"`
	Observaciones    []string                 `json:"observaciones"`
	AnulacionSello   *string                  `json:"anulacionSello,omitempty"`
}

// ConsultaInput consulta directa a MH por código de generación.
type ConsultaInput struct {
	CodigoGeneracion string
	TipoDte          string // vacío = el del registro local
	Credenciales     hacienda.Credenciales
}

// AnulacionInput motivo de la invalidación y documento de reemplazo (tipos 1 y 3).
type AnulacionInput struct {
	Motivo            dtedoc.Motivo
	CodigoGeneracionR string
}

// TransmitterConfig parámetros del transmisor.
type TransmitterConfig struct {
	LockTTL time.Duration
}

// Transmitter dueño de la máquina de estados de cada registro:
//
//	CREADO → FIRMADO → PROCESADO | RECHAZADO;  RECHAZADO → (reintento);  PROCESADO → ANULADO
//
// Las operaciones sobre un mismo registro se serializan con un candado por id.
type Transmitter struct {
	repo      repository.TransmisionRepository
	autoridad Autoridad
	firmantes Firmantes
	validador Validador
	locker    Locker
	queue     JobQueue
	builder   *dtedoc.Builder
	cfg       TransmitterConfig
	now       func() time.Time
	log       zerolog.Logger
}

// NewTransmitter construye el transmisor. queue puede ser nil si no hay modo asíncrono.
func NewTransmitter(
	repo repository.TransmisionRepository,
	autoridad Autoridad,
	firmantes Firmantes,
	validador Validador,
	locker Locker,
	queue JobQueue,
	cfg TransmitterConfig,
	log zerolog.Logger,
) *Transmitter {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	return &Transmitter{
		repo:      repo,
		autoridad: autoridad,
		firmantes: firmantes,
		validador: validador,
		locker:    locker,
		queue:     queue,
		builder:   dtedoc.NewBuilder(),
		cfg:       cfg,
		now:       time.Now,
		log:       log.With().Str("component", "transmitter").Logger(),
	}
}

// WithClock reemplaza el reloj (tests).
func (t *Transmitter) WithClock(now func() time.Time) *Transmitter {
	t.now = now
	t.builder.WithClock(now)
	return t
}

// ── Transmisión ───────────────────────────────────────────────────────────────

// TransmitirSync envía el documento firmado y espera la respuesta de MH. Un rechazo no es
// error: el registro queda RECHAZADO con los mensajes de MH. Si MH no responde se devuelve
// ErrTransmision, intentos aumenta y el estado no cambia.
func (t *Transmitter) TransmitirSync(ctx context.Context, tenantID, id string, cred hacienda.Credenciales) (*Resultado, error) {
	var res *Resultado
	err := t.conCandado(ctx, id, func() error {
		var err error
		res, err = t.transmitir(ctx, tenantID, id, cred)
		return err
	})
	return res, err
}

func (t *Transmitter) transmitir(ctx context.Context, tenantID, id string, cred hacienda.Credenciales) (*Resultado, error) {
	rec, err := t.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !rec.Estado.Transmitible() || rec.DocumentoFirmado == "" {
		return nil, fmt.Errorf("%w: no se puede transmitir desde %s", ErrTransicionInvalida, rec.Estado)
	}
	log := t.log.With().Str("tenant_id", tenantID).Str("transmision_id", id).
		Str("codigo_generacion", rec.CodigoGeneracion).Logger()

	rec.Intentos++
	respuesta := t.autoridad.Transmitir(ctx, cred, hacienda.Envio{
		Ambiente:         rec.Ambiente,
		IdEnvio:          rec.Intentos,
		Version:          rec.Version,
		TipoDte:          rec.TipoDte,
		Documento:        rec.DocumentoFirmado,
		CodigoGeneracion: rec.CodigoGeneracion,
	})

	var fallo error
	switch r := respuesta.(type) {
	case hacienda.Aceptado:
		sello, fh := r.SelloRecibido, r.FhProcesamiento
		rec.Estado = entity.EstadoProcesado
		rec.SelloRecibido = &sello
		rec.FhProcesamiento = &fh
		rec.CodigoMsg, rec.DescripcionMsg, rec.Observaciones = r.CodigoMsg, r.DescripcionMsg, r.Observaciones
		rec.UltimoError = ""
	case hacienda.Rechazado:
		rec.Estado = entity.EstadoRechazado
		rec.FhProcesamiento = r.FhProcesamiento
		rec.CodigoMsg, rec.DescripcionMsg, rec.Observaciones = r.CodigoMsg, r.DescripcionMsg, r.Observaciones
		rec.UltimoError = r.Mensaje()
	case hacienda.ErrorRed:
		rec.UltimoError = r.Error()
		fallo = fmt.Errorf("%w: %v", ErrTransmision, r.Err)
	default:
		return nil, fmt.Errorf("respuesta de MH no soportada: %T", respuesta)
	}

	if err := t.repo.Update(ctx, rec); err != nil {
		// MH ya respondió: el resultado se devuelve aunque no se haya podido persistir.
		log.Error().Err(err).Str("estado", string(rec.Estado)).Msg("no se pudo persistir el resultado de MH")
		return resultadoDe(rec), fmt.Errorf("persistir transmisión: %w", err)
	}
	ev := log.Info()
	if fallo != nil {
		ev = log.Warn().Err(fallo)
	}
	ev.Str("estado", string(rec.Estado)).Int("intentos", rec.Intentos).Msg("transmisión a MH")
	return resultadoDe(rec), fallo
}

// paramsTransmision parámetros del trabajo asíncrono.
type paramsTransmision struct {
	TenantID     string                `json:"tenantId"`
	ID           string                `json:"id"`
	Credenciales hacienda.Credenciales `json:"credenciales"`
}

// TransmitirAsync valida que el registro sea transmitible y encola la transmisión.
// Devuelve el id del trabajo; el resultado se consulta con EstadoJob.
func (t *Transmitter) TransmitirAsync(ctx context.Context, tenantID, id string, cred hacienda.Credenciales) (string, error) {
	if t.queue == nil {
		return "", errors.New("cola de trabajos no configurada")
	}
	rec, err := t.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return "", err
	}
	if !rec.Estado.Transmitible() || rec.DocumentoFirmado == "" {
		return "", fmt.Errorf("%w: no se puede transmitir desde %s", ErrTransicionInvalida, rec.Estado)
	}
	jobID, err := t.queue.Encolar(ctx, tenantID, OperacionTransmitir, paramsTransmision{TenantID: tenantID, ID: id, Credenciales: cred})
	if err != nil {
		return "", fmt.Errorf("encolar transmisión: %w", err)
	}
	t.log.Info().Str("tenant_id", tenantID).Str("transmision_id", id).Str("job_id", jobID).Msg("transmisión encolada")
	return jobID, nil
}

// ProcesarJob ejecuta un trabajo OperacionTransmitir. Se registra como handler en la cola.
func (t *Transmitter) ProcesarJob(ctx context.Context, params json.RawMessage) (any, error) {
	var p paramsTransmision
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: parámetros de transmisión: %v", domain.ErrInvalidInput, err)
	}
	res, err := t.TransmitirSync(ctx, p.TenantID, p.ID, p.Credenciales)
	if res == nil {
		return nil, err
	}
	return res, err
}

// EstadoJob estado de un trabajo encolado por el tenant. Un trabajo de otro tenant no existe.
func (t *Transmitter) EstadoJob(ctx context.Context, tenantID, jobID string) (*entity.Job, error) {
	if t.queue == nil {
		return nil, domain.ErrNotFound
	}
	job, err := t.queue.Estado(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

// ── Consulta ──────────────────────────────────────────────────────────────────

// ConsultarEstado consulta a MH y, si existe un registro local con ese código de generación,
// lo reconcilia: un documento FIRMADO o RECHAZADO que MH reporta procesado pasa a PROCESADO.
func (t *Transmitter) ConsultarEstado(ctx context.Context, tenantID string, in ConsultaInput) (*Resultado, error) {
	if !mh.ValidarCodigoGeneracion(in.CodigoGeneracion) {
		return nil, fmt.Errorf("%w: codigoGeneracion inválido", domain.ErrInvalidInput)
	}
	local, err := t.repo.GetByCodigoGeneracion(ctx, tenantID, in.CodigoGeneracion)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	tipo := in.TipoDte
	if tipo == "" && local != nil {
		tipo = local.TipoDte
	}
	if tipo == "" {
		return nil, fmt.Errorf("%w: tipoDte requerido sin registro local", domain.ErrInvalidInput)
	}

	respuesta := t.autoridad.Consultar(ctx, in.Credenciales, hacienda.Consulta{
		NitEmisor:        in.Credenciales.Nit,
		TipoDte:          tipo,
		CodigoGeneracion: in.CodigoGeneracion,
	})

	res := &Resultado{CodigoGeneracion: in.CodigoGeneracion, Observaciones: []string{}}
	switch r := respuesta.(type) {
	case hacienda.Aceptado:
		sello, fh := r.SelloRecibido, r.FhProcesamiento
		res.Estado = entity.EstadoProcesado
		res.SelloRecibido, res.FhProcesamiento = &sello, &fh
		res.CodigoMsg, res.DescripcionMsg, res.Observaciones = r.CodigoMsg, r.DescripcionMsg, r.Observaciones
		if local != nil {
			return t.reconciliar(ctx, local.ID, tenantID, r, res)
		}
	case hacienda.Rechazado:
		res.Estado = entity.EstadoTransmision(r.Estado)
		res.FhProcesamiento = r.FhProcesamiento
		res.CodigoMsg, res.DescripcionMsg, res.Observaciones = r.CodigoMsg, r.DescripcionMsg, r.Observaciones
	case hacienda.ErrorRed:
		return nil, fmt.Errorf("%w: %v", ErrTransmision, r.Err)
	default:
		return nil, fmt.Errorf("respuesta de MH no soportada: %T", respuesta)
	}
	if local != nil {
		res.ID, res.NumeroControl, res.Intentos = local.ID, local.NumeroControl, local.Intentos
	}
	return res, nil
}

func (t *Transmitter) reconciliar(ctx context.Context, id, tenantID string, a hacienda.Aceptado, res *Resultado) (*Resultado, error) {
	err := t.conCandado(ctx, id, func() error {
		rec, err := t.repo.GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if rec.Estado.Transmitible() {
			sello, fh := a.SelloRecibido, a.FhProcesamiento
			rec.Estado = entity.EstadoProcesado
			rec.SelloRecibido, rec.FhProcesamiento = &sello, &fh
			rec.CodigoMsg, rec.DescripcionMsg, rec.Observaciones = a.CodigoMsg, a.DescripcionMsg, a.Observaciones
			rec.UltimoError = ""
			if err := t.repo.Update(ctx, rec); err != nil {
				return fmt.Errorf("persistir reconciliación: %w", err)
			}
			t.log.Info().Str("tenant_id", tenantID).Str("transmision_id", id).Msg("registro reconciliado con MH")
		}
		*res = *resultadoDe(rec)
		return nil
	})
	if errors.Is(err, ErrTransmisionEnCurso) {
		// Otra operación está escribiendo el registro; se devuelve lo que informó MH.
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ── Invalidación ──────────────────────────────────────────────────────────────

// Anular arma, valida, firma y envía el evento de invalidación. Solo es legal desde PROCESADO.
func (t *Transmitter) Anular(ctx context.Context, tenantID, id string, in AnulacionInput, cred hacienda.Credenciales) (*Resultado, error) {
	var res *Resultado
	err := t.conCandado(ctx, id, func() error {
		var err error
		res, err = t.anular(ctx, tenantID, id, in, cred)
		return err
	})
	return res, err
}

func (t *Transmitter) anular(ctx context.Context, tenantID, id string, in AnulacionInput, cred hacienda.Credenciales) (*Resultado, error) {
	rec, err := t.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !rec.Estado.Anulable() || rec.SelloRecibido == nil {
		return nil, fmt.Errorf("%w: no se puede anular desde %s", ErrTransicionInvalida, rec.Estado)
	}

	var original dtedoc.Documento
	if err := json.Unmarshal(rec.Documento, &original); err != nil {
		return nil, fmt.Errorf("leer documento original: %w", err)
	}
	evento, err := t.builder.BuildAnulacion(dtedoc.AnulacionInput{
		Original:          &original,
		SelloRecibido:     *rec.SelloRecibido,
		CodigoGeneracionR: in.CodigoGeneracionR,
		Motivo:            in.Motivo,
		Fecha:             t.now(),
	})
	if err != nil {
		return nil, err
	}
	val, err := t.validador.ValidateAnulacion(evento)
	if err != nil {
		return nil, err
	}
	if !val.Valid {
		return nil, &ValidacionError{Errores: val.Errors}
	}
	firmante, err := t.firmantes.Firmante(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	jws, err := firmante.SignDTE(evento)
	if err != nil {
		return nil, err
	}

	respuesta := t.autoridad.Anular(ctx, cred, hacienda.EnvioAnulacion{
		Ambiente:  rec.Ambiente,
		IdEnvio:   1,
		Version:   mh.VersionAnulacion,
		Documento: jws,
	})

	var fallo error
	switch r := respuesta.(type) {
	case hacienda.Aceptado:
		codigo, sello, fh := evento.Identificacion.CodigoGeneracion, r.SelloRecibido, r.FhProcesamiento
		rec.Estado = entity.EstadoAnulado
		rec.AnulacionCodigo, rec.AnulacionSello, rec.FechaAnulacion = &codigo, &sello, &fh
		rec.AnulacionFirmada = jws
		rec.UltimoError = ""
	case hacienda.Rechazado:
		rec.UltimoError = r.Mensaje()
		fallo = fmt.Errorf("%w: %s", ErrAnulacionRechazada, r.Mensaje())
	case hacienda.ErrorRed:
		rec.UltimoError = r.Error()
		fallo = fmt.Errorf("%w: %v", ErrTransmision, r.Err)
	default:
		return nil, fmt.Errorf("respuesta de MH no soportada: %T", respuesta)
	}
	if err := t.repo.Update(ctx, rec); err != nil {
		return resultadoDe(rec), fmt.Errorf("persistir anulación: %w", err)
	}
	t.log.Info().Str("tenant_id", tenantID).Str("transmision_id", id).
		Str("estado", string(rec.Estado)).AnErr("fallo", fallo).Msg("invalidación ante MH")
	return resultadoDe(rec), fallo
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// conCandado ejecuta fn con el candado del registro. Si ya está tomado falla de inmediato.
// Mientras fn corre el candado se renueva cada LockTTL/3, así una llamada a MH más larga
// que el TTL no deja el registro libre para otra transmisión.
func (t *Transmitter) conCandado(ctx context.Context, id string, fn func() error) error {
	clave := "dte:transmision:" + id
	token, ok, err := t.locker.Adquirir(ctx, clave, t.cfg.LockTTL)
	if err != nil {
		return fmt.Errorf("adquirir candado: %w", err)
	}
	if !ok {
		return ErrTransmisionEnCurso
	}
	// El contexto del request puede estar cancelado; el candado se renueva y libera igual.
	bg := context.WithoutCancel(ctx)
	fin := make(chan struct{})
	renovador := make(chan struct{})
	go func() {
		defer close(renovador)
		t.renovarCandado(bg, id, clave, token, fin)
	}()
	defer func() {
		close(fin)
		<-renovador
		if err := t.locker.Liberar(bg, clave, token); err != nil {
			t.log.Warn().Err(err).Str("transmision_id", id).Msg("no se pudo liberar el candado")
		}
	}()
	return fn()
}

func (t *Transmitter) renovarCandado(ctx context.Context, id, clave, token string, fin <-chan struct{}) {
	ticker := time.NewTicker(max(t.cfg.LockTTL/3, time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-fin:
			return
		case <-ticker.C:
			ok, err := t.locker.Renovar(ctx, clave, token, t.cfg.LockTTL)
			if err != nil {
				t.log.Warn().Err(err).Str("transmision_id", id).Msg("no se pudo renovar el candado")
				continue
			}
			if !ok {
				t.log.Error().Str("transmision_id", id).Msg("candado perdido durante la transmisión")
				return
			}
		}
	}
}

func resultadoDe(rec *entity.Transmision) *Resultado {
	obs := rec.Observaciones
	if obs == nil {
		obs = []string{}
	}
	return &Resultado{
		ID:               rec.ID,
		CodigoGeneracion: rec.CodigoGeneracion,
		NumeroControl:    rec.NumeroControl,
		Estado:           rec.Estado,
		Intentos:         rec.Intentos,
		SelloRecibido:    rec.SelloRecibido,
		FhProcesamiento:  rec.FhProcesamiento,
		CodigoMsg:        rec.CodigoMsg,
		DescripcionMsg:   rec.DescripcionMsg,
		Observaciones:    obs,
		AnulacionSello:   rec.AnulacionSello,
	}
}

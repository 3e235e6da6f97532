package dte_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdte "github.com/jhoicas/dte-api/internal/application/dte"
	"github.com/jhoicas/dte-api/internal/domain"
	dtedoc "github.com/jhoicas/dte-api/internal/domain/dte"
	"github.com/jhoicas/dte-api/internal/domain/entity"
	"github.com/jhoicas/dte-api/internal/domain/hacienda"
	"github.com/jhoicas/dte-api/internal/infrastructure/cache"
	"github.com/jhoicas/dte-api/internal/infrastructure/queue"
	"github.com/jhoicas/dte-api/pkg/mh"
)

// ──────────────────────────────────────────────────────────────────────────────
// Transmisión síncrona
// ──────────────────────────────────────────────────────────────────────────────

func TestTransmitirSync_Aceptado(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	rec := e.emitido(t)

	res, err := e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoProcesado, res.Estado)
	require.NotNil(t, res.SelloRecibido)
	assert.Equal(t, sello1, *res.SelloRecibido)
	assert.Equal(t, 1, res.Intentos)

	require.Len(t, e.mh.envios, 1)
	envio := e.mh.envios[0]
	assert.Equal(t, rec.DocumentoFirmado, envio.Documento)
	assert.Equal(t, rec.CodigoGeneracion, envio.CodigoGeneracion)
	assert.Equal(t, "03", envio.TipoDte)
	assert.Equal(t, 3, envio.Version)
	assert.Equal(t, mh.AmbientePruebas, envio.Ambiente)

	guardado, err := e.repo.GetByID(context.Background(), tenant, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoProcesado, guardado.Estado)
	require.NotNil(t, guardado.FhProcesamiento)
	assert.Equal(t, "RECIBIDO", guardado.DescripcionMsg)

	_, err = e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	assert.ErrorIs(t, err, appdte.ErrTransicionInvalida, "un documento procesado no se reenvía")
	assert.Equal(t, int32(1), e.mh.llamadas.Load())
}

func TestTransmitirSync_RechazadoYReintentoConMismosIdentificadores(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	e.mh.respuestas = []hacienda.Respuesta{
		hacienda.Rechazado{
			Estado:         "RECHAZADO",
			CodigoMsg:      "004",
			DescripcionMsg: "[identificacion.numeroControl] YA EXISTE UN REGISTRO CON ESE VALOR",
			Observaciones:  []string{"Campo #/resumen/totalLetras contiene un valor inválido"},
		},
		aceptado(sello1),
	}
	rec := e.emitido(t)

	res, err := e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	require.NoError(t, err, "un rechazo de MH no es error de transmisión")
	assert.Equal(t, entity.EstadoRechazado, res.Estado)
	assert.Nil(t, res.SelloRecibido)
	assert.Equal(t, []string{"Campo #/resumen/totalLetras contiene un valor inválido"}, res.Observaciones)
	assert.Equal(t, "[identificacion.numeroControl] YA EXISTE UN REGISTRO CON ESE VALOR", res.DescripcionMsg)

	guardado, err := e.repo.GetByID(context.Background(), tenant, rec.ID)
	require.NoError(t, err)
	assert.Contains(t, guardado.UltimoError, "YA EXISTE UN REGISTRO")

	res, err = e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoProcesado, res.Estado)
	assert.Equal(t, 2, res.Intentos)

	require.Len(t, e.mh.envios, 2)
	assert.Equal(t, e.mh.envios[0].CodigoGeneracion, e.mh.envios[1].CodigoGeneracion)
	assert.Equal(t, e.mh.envios[0].Documento, e.mh.envios[1].Documento, "el reintento reenvía el mismo documento firmado")
	assert.Equal(t, 1, e.mh.envios[0].IdEnvio)
	assert.Equal(t, 2, e.mh.envios[1].IdEnvio)
}

func TestTransmitirSync_ErrorDeRedNoCambiaEstado(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	e.mh.respuestas = []hacienda.Respuesta{hacienda.ErrorRed{Err: errors.New("timeout o cancelación: context deadline exceeded")}}
	rec := e.emitido(t)

	res, err := e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	require.ErrorIs(t, err, appdte.ErrTransmision)
	require.NotNil(t, res)
	assert.Equal(t, entity.EstadoFirmado, res.Estado)
	assert.Equal(t, 1, res.Intentos)

	guardado, err := e.repo.GetByID(context.Background(), tenant, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoFirmado, guardado.Estado)
	assert.Equal(t, 1, guardado.Intentos)
	assert.Contains(t, guardado.UltimoError, "deadline exceeded")
	assert.Equal(t, int32(1), e.mh.llamadas.Load(), "sin reintento automático")
}

func TestTransmitirSync_ConcurrenteFallaRapido(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	e.mh.llego = make(chan struct{}, 1)
	e.mh.bloquear = make(chan struct{})
	rec := e.emitido(t)

	var (
		wg      sync.WaitGroup
		primero *appdte.Resultado
		errPri  error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		primero, errPri = e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	}()

	select {
	case <-e.mh.llego:
	case <-time.After(2 * time.Second):
		t.Fatal("la primera transmisión no llegó a MH")
	}

	_, err := e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	assert.ErrorIs(t, err, appdte.ErrTransmisionEnCurso)

	close(e.mh.bloquear)
	wg.Wait()
	require.NoError(t, errPri)
	assert.Equal(t, entity.EstadoProcesado, primero.Estado)
	assert.Equal(t, int32(1), e.mh.llamadas.Load(), "MH recibe una sola transmisión")
}

func TestTransmitirSync_LlamadaMasLargaQueElTTLNoLiberaElCandado(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	e.mh.llego = make(chan struct{}, 2)
	e.mh.bloquear = make(chan struct{})
	trans := appdte.NewTransmitter(e.repo, e.mh, firmantesCon(firmanteStub{}, nil), validador,
		cache.NewMemoryLocker(), nil, appdte.TransmitterConfig{LockTTL: 50 * time.Millisecond}, zerolog.Nop())
	rec := e.emitido(t)

	var (
		wg      sync.WaitGroup
		primero *appdte.Resultado
		errPri  error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		primero, errPri = trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	}()

	select {
	case <-e.mh.llego:
	case <-time.After(2 * time.Second):
		t.Fatal("la primera transmisión no llegó a MH")
	}

	// MH tarda varias veces el TTL; el candado se renueva mientras tanto.
	time.Sleep(200 * time.Millisecond)
	_, err := trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	assert.ErrorIs(t, err, appdte.ErrTransmisionEnCurso)

	close(e.mh.bloquear)
	wg.Wait()
	require.NoError(t, errPri)
	assert.Equal(t, entity.EstadoProcesado, primero.Estado)
	assert.Equal(t, int32(1), e.mh.llamadas.Load(), "MH recibe una sola transmisión")

	// Terminada la primera, el candado queda libre.
	_, err = trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	assert.ErrorIs(t, err, appdte.ErrTransicionInvalida, "PROCESADO ya no se transmite, pero el candado se obtuvo")
}

func TestTransmitirSync_RegistroDeOtroTenant(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	rec := e.emitido(t)

	_, err := e.trans.TransmitirSync(context.Background(), "otro-tenant", rec.ID, cred)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, e.mh.llamadas.Load())
}

// ──────────────────────────────────────────────────────────────────────────────
// Transmisión asíncrona
// ──────────────────────────────────────────────────────────────────────────────

func TestTransmitirAsync_TrabajoActualizaElRegistro(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	q := queue.NewMemoryQueue(2, 10, zerolog.Nop())
	trans := appdte.NewTransmitter(e.repo, e.mh, firmantesCon(firmanteStub{}, nil), validador,
		cache.NewMemoryLocker(), q, appdte.TransmitterConfig{}, zerolog.Nop())
	q.Registrar(appdte.OperacionTransmitir, trans.ProcesarJob)
	q.Start(context.Background())
	defer q.Stop()

	rec := e.emitido(t)
	jobID, err := trans.TransmitirAsync(context.Background(), tenant, rec.ID, cred)
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	var job *entity.Job
	require.Eventually(t, func() bool {
		job, err = trans.EstadoJob(context.Background(), tenant, jobID)
		return err == nil && job.Estado == entity.JobCompletado
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, tenant, job.TenantID)
	assert.Empty(t, job.Params, "las credenciales no quedan en el trabajo")

	_, err = trans.EstadoJob(context.Background(), "otro-tenant", jobID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "un trabajo de otro tenant no se expone")

	var res appdte.Resultado
	require.NoError(t, json.Unmarshal(job.Resultado, &res))
	assert.Equal(t, entity.EstadoProcesado, res.Estado)

	guardado, err := e.repo.GetByID(context.Background(), tenant, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoProcesado, guardado.Estado)
	assert.Equal(t, 1, guardado.Intentos)
}

func TestTransmitirAsync_ValidaEstadoAntesDeEncolar(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	q := queue.NewMemoryQueue(1, 1, zerolog.Nop())
	trans := appdte.NewTransmitter(e.repo, e.mh, firmantesCon(firmanteStub{}, nil), validador,
		cache.NewMemoryLocker(), q, appdte.TransmitterConfig{}, zerolog.Nop())
	q.Registrar(appdte.OperacionTransmitir, trans.ProcesarJob)

	rec := e.emitido(t)
	_, err := e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	require.NoError(t, err)

	_, err = trans.TransmitirAsync(context.Background(), tenant, rec.ID, cred)
	assert.ErrorIs(t, err, appdte.ErrTransicionInvalida)
}

func TestTransmitirAsync_SinCola(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	rec := e.emitido(t)
	_, err := e.trans.TransmitirAsync(context.Background(), tenant, rec.ID, cred)
	assert.Error(t, err)

	_, err = e.trans.EstadoJob(context.Background(), tenant, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransmitirAsync_FalloSinResultadoNoGuardaNull(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	q := queue.NewMemoryQueue(1, 10, zerolog.Nop())
	trans := appdte.NewTransmitter(e.repo, e.mh, firmantesCon(firmanteStub{}, nil), validador,
		cache.NewMemoryLocker(), q, appdte.TransmitterConfig{}, zerolog.Nop())
	q.Registrar(appdte.OperacionTransmitir, trans.ProcesarJob)

	rec := e.emitido(t)
	jobID, err := trans.TransmitirAsync(context.Background(), tenant, rec.ID, cred)
	require.NoError(t, err)
	// Antes de que corra el trabajo el registro ya fue procesado por la vía síncrona.
	_, err = e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	require.NoError(t, err)

	q.Start(context.Background())
	defer q.Stop()

	var job *entity.Job
	require.Eventually(t, func() bool {
		job, err = trans.EstadoJob(context.Background(), tenant, jobID)
		return err == nil && job.Estado == entity.JobFallido
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, job.Error, "no se puede transmitir")
	assert.Empty(t, job.Resultado, "sin resultado no se guarda null")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consulta
// ──────────────────────────────────────────────────────────────────────────────

func TestConsultarEstado_ReconciliaRegistroLocal(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	e.mh.respuestas = []hacienda.Respuesta{hacienda.ErrorRed{Err: errors.New("connection reset")}}
	e.mh.consulta = aceptado(sello1)
	rec := e.emitido(t)

	_, err := e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	require.ErrorIs(t, err, appdte.ErrTransmision)

	res, err := e.trans.ConsultarEstado(context.Background(), tenant, appdte.ConsultaInput{
		CodigoGeneracion: rec.CodigoGeneracion,
		Credenciales:     cred,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoProcesado, res.Estado)
	assert.Equal(t, rec.ID, res.ID)

	guardado, err := e.repo.GetByID(context.Background(), tenant, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoProcesado, guardado.Estado)
	require.NotNil(t, guardado.SelloRecibido)
	assert.Equal(t, sello1, *guardado.SelloRecibido)
	assert.Empty(t, guardado.UltimoError)
}

func TestConsultarEstado_SinRegistroLocal(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	e.mh.consulta = aceptado(sello1)
	codigo := "5C4B3A29-1807-4F6E-9D8C-7B6A59483726"

	_, err := e.trans.ConsultarEstado(context.Background(), tenant, appdte.ConsultaInput{CodigoGeneracion: codigo, Credenciales: cred})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin registro local el tipo de DTE es obligatorio")

	res, err := e.trans.ConsultarEstado(context.Background(), tenant, appdte.ConsultaInput{
		CodigoGeneracion: codigo, TipoDte: "01", Credenciales: cred,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoProcesado, res.Estado)
	assert.Empty(t, res.ID)
}

func TestConsultarEstado_CodigoInvalido(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	_, err := e.trans.ConsultarEstado(context.Background(), tenant, appdte.ConsultaInput{CodigoGeneracion: "abc", TipoDte: "01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invalidación
// ──────────────────────────────────────────────────────────────────────────────

func TestAnular_DesdeFirmadoEsTransicionInvalida(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	rec := e.emitido(t)

	_, err := e.trans.Anular(context.Background(), tenant, rec.ID, appdte.AnulacionInput{Motivo: motivoRescindir()}, cred)
	assert.ErrorIs(t, err, appdte.ErrTransicionInvalida)
	assert.Empty(t, e.mh.anulaciones, "no se contacta a MH")
}

func TestAnular_DesdeCreadoEsTransicionInvalida(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{err: errors.New("sin llave")}, nil))
	rec, err := e.emision.Emitir(context.Background(), tenant, entradaCCF())
	require.Error(t, err)
	require.Equal(t, entity.EstadoCreado, rec.Estado)

	_, err = e.trans.Anular(context.Background(), tenant, rec.ID, appdte.AnulacionInput{Motivo: motivoRescindir()}, cred)
	assert.ErrorIs(t, err, appdte.ErrTransicionInvalida)
	assert.Empty(t, e.mh.anulaciones)
}

func TestAnular_Procesado(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	rec := e.emitido(t)
	_, err := e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	require.NoError(t, err)

	res, err := e.trans.Anular(context.Background(), tenant, rec.ID, appdte.AnulacionInput{Motivo: motivoRescindir()}, cred)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoAnulado, res.Estado)
	require.NotNil(t, res.AnulacionSello)

	require.Len(t, e.mh.anulaciones, 1)
	assert.Equal(t, mh.VersionAnulacion, e.mh.anulaciones[0].Version)
	assert.Equal(t, mh.AmbientePruebas, e.mh.anulaciones[0].Ambiente)
	assert.NotEmpty(t, e.mh.anulaciones[0].Documento)

	guardado, err := e.repo.GetByID(context.Background(), tenant, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoAnulado, guardado.Estado)
	require.NotNil(t, guardado.AnulacionCodigo)
	assert.NotEqual(t, rec.CodigoGeneracion, *guardado.AnulacionCodigo)
	require.NotNil(t, guardado.SelloRecibido, "el sello original se conserva")
	assert.Equal(t, sello1, *guardado.SelloRecibido)

	_, err = e.trans.Anular(context.Background(), tenant, rec.ID, appdte.AnulacionInput{Motivo: motivoRescindir()}, cred)
	assert.ErrorIs(t, err, appdte.ErrTransicionInvalida, "ANULADO es terminal")
}

func TestAnular_RechazadoPorMHQuedaProcesado(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	e.mh.anulacion = hacienda.Rechazado{
		Estado: "RECHAZADO", CodigoMsg: "020", DescripcionMsg: "DOCUMENTO NO EXISTE",
		Observaciones: []string{"Código de generación no encontrado"},
	}
	rec := e.emitido(t)
	_, err := e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	require.NoError(t, err)

	res, err := e.trans.Anular(context.Background(), tenant, rec.ID, appdte.AnulacionInput{Motivo: motivoRescindir()}, cred)
	require.ErrorIs(t, err, appdte.ErrAnulacionRechazada)
	assert.Contains(t, err.Error(), "DOCUMENTO NO EXISTE; Código de generación no encontrado")
	assert.Equal(t, entity.EstadoProcesado, res.Estado)
}

func TestAnular_MotivoInvalido(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	rec := e.emitido(t)
	_, err := e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	require.NoError(t, err)

	m := motivoRescindir()
	m.TipoAnulacion = mh.AnulacionErrorInformacion // exige documento de reemplazo
	_, err = e.trans.Anular(context.Background(), tenant, rec.ID, appdte.AnulacionInput{Motivo: m}, cred)
	assert.ErrorIs(t, err, dtedoc.ErrMotivoAnulacion)
	assert.Empty(t, e.mh.anulaciones)
}

func TestConsultarEstado_RespuestaNoSoportada(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	e.mh.consulta = nil

	_, err := e.trans.ConsultarEstado(context.Background(), tenant, appdte.ConsultaInput{
		CodigoGeneracion: "5C4B3A29-1807-4F6E-9D8C-7B6A59483726",
		TipoDte:          "01",
		Credenciales:     cred,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "respuesta de MH no soportada")
}

package dte_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdte "github.com/jhoicas/dte-api/internal/application/dte"
	"github.com/jhoicas/dte-api/internal/domain"
	dtedoc "github.com/jhoicas/dte-api/internal/domain/dte"
	"github.com/jhoicas/dte-api/internal/domain/dte/schema"
	"github.com/jhoicas/dte-api/internal/domain/entity"
	"github.com/jhoicas/dte-api/internal/domain/hacienda"
	"github.com/jhoicas/dte-api/internal/infrastructure/cache"
	"github.com/jhoicas/dte-api/internal/infrastructure/mh/signer"
	"github.com/jhoicas/dte-api/pkg/mh"
)

var validador = schema.MustNewValidator()

// entorno arma emisión y transmisor sobre los mismos stubs.
type entorno struct {
	repo    *repoMemoria
	corr    *correlativosMemoria
	mh      *autoridadStub
	emision *appdte.Emision
	trans   *appdte.Transmitter
}

func nuevoEntorno(t *testing.T, firmantes appdte.Firmantes) *entorno {
	t.Helper()
	repo := nuevoRepo()
	corr := &correlativosMemoria{ultimo: map[string]int64{}}
	aut := &autoridadStub{respuestas: []hacienda.Respuesta{aceptado(sello1)}, anulacion: aceptado("2024ANULACION0000000000000000000000000000")}
	reloj := func() time.Time { return fechaFija }
	return &entorno{
		repo: repo,
		corr: corr,
		mh:   aut,
		emision: appdte.NewEmision(&txMemoria{corr: corr, repo: repo}, repo, validador, firmantes, mh.AmbientePruebas, zerolog.Nop()).
			WithClock(reloj),
		trans: appdte.NewTransmitter(repo, aut, firmantes, validador, cache.NewMemoryLocker(), nil,
			appdte.TransmitterConfig{LockTTL: time.Minute}, zerolog.Nop()).WithClock(reloj),
	}
}

// emitido crea un CCF firmado y devuelve el registro.
func (e *entorno) emitido(t *testing.T) *entity.Transmision {
	t.Helper()
	rec, err := e.emision.Emitir(context.Background(), tenant, entradaCCF())
	require.NoError(t, err)
	require.Equal(t, entity.EstadoFirmado, rec.Estado)
	return rec
}

// ──────────────────────────────────────────────────────────────────────────────
// Emisión
// ──────────────────────────────────────────────────────────────────────────────

func TestEmitir_CreaRegistroFirmadoConCorrelativo(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))

	rec := e.emitido(t)
	assert.Equal(t, int64(1), rec.Correlativo)
	assert.Equal(t, "DTE-03-M001P001-000000000000001", rec.NumeroControl)
	assert.Equal(t, "M001P001", rec.CodEstable)
	assert.Equal(t, 3, rec.Version)
	assert.Equal(t, "eyJhbGciOiJSUzI1NiJ9.eyJ9.firma", rec.DocumentoFirmado)
	assert.Equal(t, "22.6", rec.MontoTotal.String())

	var doc dtedoc.Documento
	require.NoError(t, json.Unmarshal(rec.Documento, &doc))
	assert.Equal(t, rec.CodigoGeneracion, doc.Identificacion.CodigoGeneracion)
	assert.Equal(t, "2024-06-01", doc.Identificacion.FecEmi)

	segundo := e.emitido(t)
	assert.Equal(t, int64(2), segundo.Correlativo, "el correlativo avanza por establecimiento")
	assert.NotEqual(t, rec.CodigoGeneracion, segundo.CodigoGeneracion)
}

func TestEmitir_SinCertificadoNoConsumeCorrelativo(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(nil, signer.ErrSinCertificado))

	_, err := e.emision.Emitir(context.Background(), tenant, entradaCCF())
	assert.ErrorIs(t, err, signer.ErrSinCertificado)
	assert.Zero(t, e.corr.valor(tenant, "03", "00", "M001P001"))
	assert.Zero(t, e.repo.cantidad())
}

func TestEmitir_ErrorDeArmadoRevierteCorrelativo(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	in := entradaCCF()
	in.Receptor = nil

	_, err := e.emision.Emitir(context.Background(), tenant, in)
	assert.ErrorIs(t, err, dtedoc.ErrReceptorRequerido)
	assert.Zero(t, e.corr.valor(tenant, "03", "00", "M001P001"))
	assert.Zero(t, e.repo.cantidad())
}

func TestEmitir_DocumentoInvalidoDevuelveErroresDeEsquema(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	in := entradaCCF()
	in.Receptor.Correo = "no-es-correo"

	_, err := e.emision.Emitir(context.Background(), tenant, in)
	var verr *appdte.ValidacionError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	require.NotEmpty(t, verr.Errores)
	assert.Equal(t, "receptor.correo", verr.Errores[0].Path)
	assert.Zero(t, e.repo.cantidad(), "un documento inválido no se persiste")
}

func TestEmitir_FirmaFallidaQuedaCreadoYSePuedeFirmarDespues(t *testing.T) {
	var firmante appdte.Firmante = firmanteStub{err: signer.ErrCertificadoExpirado}
	e := nuevoEntorno(t, appdte.FirmantesFunc(func(context.Context, string) (appdte.Firmante, error) {
		return firmante, nil
	}))

	rec, err := e.emision.Emitir(context.Background(), tenant, entradaCCF())
	require.ErrorIs(t, err, signer.ErrCertificadoExpirado)
	require.NotNil(t, rec)
	guardado, err := e.repo.GetByID(context.Background(), tenant, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoCreado, guardado.Estado)
	assert.Contains(t, guardado.UltimoError, "expirado")

	_, err = e.trans.TransmitirSync(context.Background(), tenant, rec.ID, cred)
	assert.ErrorIs(t, err, appdte.ErrTransicionInvalida, "un documento sin firma no se transmite")

	firmante = firmanteStub{}
	firmado, err := e.emision.Firmar(context.Background(), tenant, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoFirmado, firmado.Estado)
	assert.Empty(t, firmado.UltimoError)

	_, err = e.emision.Firmar(context.Background(), tenant, rec.ID)
	assert.ErrorIs(t, err, appdte.ErrTransicionInvalida)
}

func TestEmitir_SinTenant(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))
	_, err := e.emision.Emitir(context.Background(), "", entradaCCF())
	assert.ErrorIs(t, err, domain.ErrMissingTenant)
}

func TestEmitir_FirmaRealVerificable(t *testing.T) {
	p12, err := os.ReadFile("../../infrastructure/mh/signer/testdata/emisor.p12")
	require.NoError(t, err)
	s := signer.NewSigner()
	_, err = s.LoadCertificate(p12, "123456")
	require.NoError(t, err)

	e := nuevoEntorno(t, firmantesCon(s, nil))
	rec := e.emitido(t)

	v := s.VerifySignature(rec.DocumentoFirmado)
	require.True(t, v.Valid, v.Error)
	esperado, err := signer.CanonicalJSON(json.RawMessage(rec.Documento))
	require.NoError(t, err)
	assert.JSONEq(t, string(esperado), string(v.Payload))
}

func TestPreview_NoReservaCorrelativo(t *testing.T) {
	e := nuevoEntorno(t, firmantesCon(firmanteStub{}, nil))

	doc, res, err := e.emision.Preview(entradaCCF())
	require.NoError(t, err)
	assert.True(t, res.Valid, "%+v", res.Errors)
	assert.Equal(t, "DTE-03-M001P001-000000000000001", doc.Identificacion.NumeroControl)
	assert.Zero(t, e.corr.valor(tenant, "03", "00", "M001P001"))

	in := entradaCCF()
	in.Items = nil
	_, _, err = e.emision.Preview(in)
	assert.True(t, errors.Is(err, dtedoc.ErrSinItems))
}

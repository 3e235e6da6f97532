package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdte "github.com/jhoicas/dte-api/internal/application/dte"
	"github.com/jhoicas/dte-api/internal/domain"
	dtedoc "github.com/jhoicas/dte-api/internal/domain/dte"
	"github.com/jhoicas/dte-api/internal/domain/dte/schema"
	"github.com/jhoicas/dte-api/internal/domain/entity"
	"github.com/jhoicas/dte-api/internal/domain/hacienda"
	"github.com/jhoicas/dte-api/internal/infrastructure/mh/signer"
	"github.com/jhoicas/dte-api/internal/infrastructure/queue"
	apphttp "github.com/jhoicas/dte-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de servicios
// ──────────────────────────────────────────────────────────────────────────────

type fakeEmision struct {
	tenant   string
	entrada  dtedoc.BuildInput
	rec      *entity.Transmision
	err      error
	estado   entity.EstadoTransmision
	limit    int
	listado  []*entity.Transmision
	previewR *schema.Result
}

func (f *fakeEmision) Emitir(_ context.Context, tenantID string, in dtedoc.BuildInput) (*entity.Transmision, error) {
	f.tenant, f.entrada = tenantID, in
	return f.rec, f.err
}

func (f *fakeEmision) Preview(in dtedoc.BuildInput) (*dtedoc.Documento, *schema.Result, error) {
	f.entrada = in
	if f.err != nil {
		return nil, nil, f.err
	}
	return &dtedoc.Documento{}, f.previewR, nil
}

func (f *fakeEmision) Firmar(_ context.Context, tenantID, _ string) (*entity.Transmision, error) {
	f.tenant = tenantID
	return f.rec, f.err
}

func (f *fakeEmision) Obtener(_ context.Context, tenantID, _ string) (*entity.Transmision, error) {
	f.tenant = tenantID
	return f.rec, f.err
}

func (f *fakeEmision) Listar(_ context.Context, tenantID string, estado entity.EstadoTransmision, limit int) ([]*entity.Transmision, error) {
	f.tenant, f.estado, f.limit = tenantID, estado, limit
	return f.listado, f.err
}

type fakeTransmision struct {
	tenant   string
	id       string
	cred     hacienda.Credenciales
	consulta appdte.ConsultaInput
	anular   appdte.AnulacionInput
	res      *appdte.Resultado
	job      *entity.Job
	jobID    string
	err      error
}

func (f *fakeTransmision) TransmitirSync(_ context.Context, tenantID, id string, cred hacienda.Credenciales) (*appdte.Resultado, error) {
	f.tenant, f.id, f.cred = tenantID, id, cred
	return f.res, f.err
}

func (f *fakeTransmision) TransmitirAsync(_ context.Context, tenantID, id string, cred hacienda.Credenciales) (string, error) {
	f.tenant, f.id, f.cred = tenantID, id, cred
	return f.jobID, f.err
}

func (f *fakeTransmision) EstadoJob(_ context.Context, tenantID, id string) (*entity.Job, error) {
	f.tenant, f.id = tenantID, id
	return f.job, f.err
}

func (f *fakeTransmision) ConsultarEstado(_ context.Context, tenantID string, in appdte.ConsultaInput) (*appdte.Resultado, error) {
	f.tenant, f.consulta = tenantID, in
	return f.res, f.err
}

func (f *fakeTransmision) Anular(_ context.Context, tenantID, id string, in appdte.AnulacionInput, cred hacienda.Credenciales) (*appdte.Resultado, error) {
	f.tenant, f.id, f.anular, f.cred = tenantID, id, in, cred
	return f.res, f.err
}

type fakeCertificados struct {
	p12      []byte
	password string
	info     signer.CertificateInfo
	err      error
}

func (f *fakeCertificados) Subir(_ context.Context, _ string, p12 []byte, password string) (*signer.CertificateInfo, error) {
	f.p12, f.password = p12, password
	if f.err != nil {
		return nil, f.err
	}
	return &f.info, nil
}

func (f *fakeCertificados) Info(_ context.Context, _ string) (signer.CertificateInfo, error) {
	return f.info, f.err
}

func (f *fakeCertificados) Signer(_ context.Context, _ string) (*signer.Signer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return signer.NewSigner(), nil
}

type fakeValidador struct {
	tipo string
	res  *schema.Result
}

func (f *fakeValidador) Validate(_ any, tipoDte string) (*schema.Result, error) {
	f.tipo = tipoDte
	return f.res, nil
}

type entorno struct {
	app   *fiber.App
	em    *fakeEmision
	tr    *fakeTransmision
	certs *fakeCertificados
	val   *fakeValidador
}

func nuevoEntorno() *entorno {
	e := &entorno{
		em:    &fakeEmision{},
		tr:    &fakeTransmision{},
		certs: &fakeCertificados{},
		val:   &fakeValidador{res: &schema.Result{Valid: true, Errors: []schema.FieldError{}}},
	}
	e.app = fiber.New()
	apphttp.Router(e.app, apphttp.RouterDeps{
		Emision:      e.em,
		Transmision:  e.tr,
		Certificados: e.certs,
		Validador:    e.val,
	})
	return e
}

// llamar envía JSON con el tenant de prueba y devuelve status y cuerpo decodificado.
func (e *entorno) llamar(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rd = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", testTenantID)
	return e.hacer(t, req)
}

func (e *entorno) hacer(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), "respuesta: %s", raw)
	}
	return resp, out
}

func emitirValido() map[string]any {
	return map[string]any{
		"emisor": map[string]any{
			"nit":                 "06141234567890",
			"nrc":                 "1234567",
			"nombre":              "COMERCIAL EJEMPLO S.A. DE C.V.",
			"codActividad":        "46900",
			"descActividad":       "Venta al por mayor",
			"tipoEstablecimiento": "01",
			"direccion":           map[string]any{"departamento": "06", "municipio": "14", "complemento": "Col. Escalón"},
			"telefono":            "22223333",
			"correo":              "facturacion@ejemplo.com.sv",
		},
		"items": []any{
			map[string]any{"descripcion": "Servicio de consultoría", "cantidad": 2, "precioUni": "11.30", "montoDescu": 0},
		},
		"condicionOperacion": 1,
		"fechaEmision":       "2026-10-19",
	}
}

func credenciales() map[string]any {
	return map[string]any{"nit": "06141234567890", "password": "secreto"}
}

func registro(estado entity.EstadoTransmision) *entity.Transmision {
	return &entity.Transmision{
		ID:               "rec-1",
		TenantID:         testTenantID,
		TipoDte:          "01",
		Version:          1,
		Ambiente:         "00",
		NumeroControl:    "DTE-01-ABCD1234-000000000000001",
		CodigoGeneracion: "0F2C6C4A-1B1E-4C5B-9C43-7C1A2B3C4D5E",
		Estado:           estado,
		Documento:        json.RawMessage(`{"identificacion":{"version":1}}`),
		DocumentoFirmado: "a.b.c",
		Observaciones:    []string{},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Emisión
// ──────────────────────────────────────────────────────────────────────────────

func TestEmitir_Creado(t *testing.T) {
	e := nuevoEntorno()
	e.em.rec = registro(entity.EstadoFirmado)

	resp, body := e.llamar(t, http.MethodPost, "/api/dte/01", emitirValido())

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "FIRMADO", body["estado"])
	assert.Equal(t, "a.b.c", body["documentoFirmado"])
	assert.Equal(t, map[string]any{"identificacion": map[string]any{"version": float64(1)}}, body["documento"])

	assert.Equal(t, testTenantID, e.em.tenant)
	assert.Equal(t, "01", string(e.em.entrada.TipoDte))
	require.Len(t, e.em.entrada.Items, 1)
	assert.Equal(t, "11.3", e.em.entrada.Items[0].PrecioUni.String())
	assert.Equal(t, 2026, e.em.entrada.FechaEmision.Year())
	assert.Equal(t, time.October, e.em.entrada.FechaEmision.Month())
	assert.Equal(t, 19, e.em.entrada.FechaEmision.Day())
}

func TestEmitir_TipoNoSoportado(t *testing.T) {
	e := nuevoEntorno()

	resp, body := e.llamar(t, http.MethodPost, "/api/dte/14", emitirValido())

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "UNSUPPORTED_TYPE", body["code"])
}

func TestEmitir_PeticionInvalida(t *testing.T) {
	e := nuevoEntorno()
	in := emitirValido()
	in["emisor"].(map[string]any)["nit"] = "12AB"
	in["items"] = []any{map[string]any{"descripcion": "x", "cantidad": 0}}

	resp, body := e.llamar(t, http.MethodPost, "/api/dte/01", in)

	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
	rutas := []string{}
	for _, c := range body["errores"].([]any) {
		rutas = append(rutas, c.(map[string]any)["path"].(string))
	}
	assert.Contains(t, rutas, "emisor.nit")
	assert.Contains(t, rutas, "items[0].cantidad")
}

func TestEmitir_CuerpoNoJSON(t *testing.T) {
	e := nuevoEntorno()

	resp, body := e.llamar(t, http.MethodPost, "/api/dte/01", "{no es json")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", body["code"])
}

func TestEmitir_ErroresDeServicio(t *testing.T) {
	casos := []struct {
		nombre string
		err    error
		status int
		code   string
	}{
		{"esquema", &appdte.ValidacionError{Errores: []schema.FieldError{{Path: "resumen.totalPagar", Message: "no cuadra"}}}, fiber.StatusUnprocessableEntity, "SCHEMA"},
		{"armado", fmt.Errorf("%w: nota sin documento", dtedoc.ErrDocumentoRelacionadoRequerido), fiber.StatusUnprocessableEntity, "BUILD"},
		{"sin certificado", signer.ErrSinCertificado, fiber.StatusPreconditionFailed, "NO_CERTIFICATE"},
		{"certificado vencido", signer.ErrCertificadoExpirado, fiber.StatusPreconditionFailed, "CERTIFICATE_NOT_VALID"},
		{"duplicado", domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
		{"interno", fmt.Errorf("db caída"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			e := nuevoEntorno()
			e.em.err = tc.err

			resp, body := e.llamar(t, http.MethodPost, "/api/dte/01", emitirValido())

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestEmitir_EsquemaDevuelveCampos(t *testing.T) {
	e := nuevoEntorno()
	e.em.err = &appdte.ValidacionError{Errores: []schema.FieldError{{Path: "resumen.totalPagar", Message: "no cuadra"}}}

	_, body := e.llamar(t, http.MethodPost, "/api/dte/03", emitirValido())

	require.Len(t, body["errores"], 1)
	assert.Equal(t, "resumen.totalPagar", body["errores"].([]any)[0].(map[string]any)["path"])
}

func TestEmitir_FirmaFallidaQuedaCreado(t *testing.T) {
	e := nuevoEntorno()
	rec := registro(entity.EstadoCreado)
	rec.DocumentoFirmado = ""
	rec.UltimoError = "signer: certificado expirado"
	e.em.rec, e.em.err = rec, signer.ErrCertificadoExpirado

	resp, body := e.llamar(t, http.MethodPost, "/api/dte/01", emitirValido())

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "CREADO", body["estado"])
	assert.Equal(t, "signer: certificado expirado", body["ultimoError"])
}

func TestEmitir_SinTenant(t *testing.T) {
	e := nuevoEntorno()
	raw, _ := json.Marshal(emitirValido())
	req := httptest.NewRequest(http.MethodPost, "/api/dte/01", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, body := e.hacer(t, req)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_TENANT", body["code"])
}

func TestPreview_NoPersiste(t *testing.T) {
	e := nuevoEntorno()
	e.em.previewR = &schema.Result{Valid: false, Errors: []schema.FieldError{{Path: "receptor", Message: "requerido"}}}

	resp, body := e.llamar(t, http.MethodPost, "/api/dte/03/preview", emitirValido())

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "documento")
	validacion := body["validacion"].(map[string]any)
	assert.Equal(t, false, validacion["valid"])
	assert.Equal(t, "", e.em.tenant, "preview no llega a Emitir")
}

func TestValidar_DocumentoArmado(t *testing.T) {
	e := nuevoEntorno()

	resp, body := e.llamar(t, http.MethodPost, "/api/dte/05/validar", `{"identificacion":{"version":3}}`)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "05", e.val.tipo)

	resp, body = e.llamar(t, http.MethodPost, "/api/dte/05/validar", `{"roto":`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Consulta de registros
// ──────────────────────────────────────────────────────────────────────────────

func TestObtener_NoEncontrado(t *testing.T) {
	e := nuevoEntorno()
	e.em.err = domain.ErrNotFound

	resp, body := e.llamar(t, http.MethodGet, "/api/transmisiones/no-existe", nil)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestListar_FiltraPorEstado(t *testing.T) {
	e := nuevoEntorno()
	e.em.listado = []*entity.Transmision{registro(entity.EstadoProcesado)}

	req := httptest.NewRequest(http.MethodGet, "/api/transmisiones?estado=procesado&limit=5", nil)
	req.Header.Set("X-Tenant-ID", testTenantID)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.NotContains(t, out[0], "documento", "el listado no incluye el documento")
	assert.Equal(t, entity.EstadoProcesado, e.em.estado)
	assert.Equal(t, 5, e.em.limit)
}

func TestFirmar_DesdeEstadoInvalido(t *testing.T) {
	e := nuevoEntorno()
	e.em.err = fmt.Errorf("%w: no se puede firmar desde PROCESADO", appdte.ErrTransicionInvalida)

	resp, body := e.llamar(t, http.MethodPost, "/api/transmisiones/rec-1/firmar", nil)

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Transmisión
// ──────────────────────────────────────────────────────────────────────────────

func TestTransmitir_RechazoResponde200(t *testing.T) {
	e := nuevoEntorno()
	e.tr.res = &appdte.Resultado{ID: "rec-1", Estado: entity.EstadoRechazado, Intentos: 1, CodigoMsg: "004", Observaciones: []string{"NIT inválido"}}

	resp, body := e.llamar(t, http.MethodPost, "/api/transmisiones/rec-1/transmitir", map[string]any{"credenciales": credenciales()})

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "RECHAZADO", body["estado"])
	assert.Equal(t, "rec-1", e.tr.id)
	assert.Equal(t, hacienda.Credenciales{Nit: "06141234567890", Password: "secreto"}, e.tr.cred)
}

func TestTransmitir_MHNoResponde(t *testing.T) {
	e := nuevoEntorno()
	e.tr.res = &appdte.Resultado{ID: "rec-1", Estado: entity.EstadoFirmado}
	e.tr.err = fmt.Errorf("%w: timeout", appdte.ErrTransmision)

	resp, body := e.llamar(t, http.MethodPost, "/api/transmisiones/rec-1/transmitir", map[string]any{"credenciales": credenciales()})

	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "MH_UNAVAILABLE", body["code"])
	assert.Equal(t, "FIRMADO", body["resultado"].(map[string]any)["estado"])
}

func TestTransmitir_EnCurso(t *testing.T) {
	e := nuevoEntorno()
	e.tr.err = appdte.ErrTransmisionEnCurso

	resp, body := e.llamar(t, http.MethodPost, "/api/transmisiones/rec-1/transmitir", map[string]any{"credenciales": credenciales()})

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "IN_PROGRESS", body["code"])
}

func TestTransmitir_SinCredenciales(t *testing.T) {
	e := nuevoEntorno()

	resp, body := e.llamar(t, http.MethodPost, "/api/transmisiones/rec-1/transmitir", map[string]any{})

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.Equal(t, "", e.tr.id, "no debe llegar al servicio")
}

func TestTransmitirAsync_Encola(t *testing.T) {
	e := nuevoEntorno()
	e.tr.jobID = "job-42"

	resp, body := e.llamar(t, http.MethodPost, "/api/transmisiones/rec-1/transmitir-async", map[string]any{"credenciales": credenciales()})

	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "job-42", body["jobId"])
	assert.Equal(t, "PENDIENTE", body["estado"])
	assert.Equal(t, "/api/jobs/job-42", resp.Header.Get("Location"))
}

func TestJob_OcultaParametros(t *testing.T) {
	e := nuevoEntorno()
	e.tr.job = &entity.Job{
		ID:        "job-42",
		Operacion: appdte.OperacionTransmitir,
		Params:    json.RawMessage(`{"credenciales":{"password":"secreto"}}`),
		Estado:    entity.JobCompletado,
		Resultado: json.RawMessage(`{"estado":"PROCESADO"}`),
		Intentos:  1,
	}

	resp, body := e.llamar(t, http.MethodGet, "/api/jobs/job-42", nil)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "COMPLETADO", body["estado"])
	assert.NotContains(t, body, "params")
	assert.Equal(t, "PROCESADO", body["resultado"].(map[string]any)["estado"])
	assert.Equal(t, testTenantID, e.tr.tenant, "el trabajo se busca en el tenant del token")
	assert.Equal(t, "job-42", e.tr.id)
}

func TestJob_NoEncontrado(t *testing.T) {
	e := nuevoEntorno()
	e.tr.err = domain.ErrNotFound

	resp, _ := e.llamar(t, http.MethodGet, "/api/jobs/nada", nil)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestConsultar_PasaTipoYCodigo(t *testing.T) {
	e := nuevoEntorno()
	e.tr.res = &appdte.Resultado{Estado: entity.EstadoProcesado}
	codigo := "0F2C6C4A-1B1E-4C5B-9C43-7C1A2B3C4D5E"

	resp, body := e.llamar(t, http.MethodPost, "/api/transmisiones/consulta", map[string]any{
		"credenciales":     credenciales(),
		"codigoGeneracion": codigo,
		"tipoDte":          "03",
	})

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "PROCESADO", body["estado"])
	assert.Equal(t, codigo, e.tr.consulta.CodigoGeneracion)
	assert.Equal(t, "03", e.tr.consulta.TipoDte)
}

func TestAnular_ArmaMotivo(t *testing.T) {
	e := nuevoEntorno()
	sello := "SELLO-ANULACION"
	e.tr.res = &appdte.Resultado{Estado: entity.EstadoAnulado, AnulacionSello: &sello}

	resp, body := e.llamar(t, http.MethodPost, "/api/transmisiones/rec-1/anular", map[string]any{
		"credenciales":      credenciales(),
		"tipoAnulacion":     2,
		"nombreResponsable": "Ana Martínez",
		"tipDocResponsable": "13",
		"numDocResponsable": "012345678",
		"nombreSolicita":    "Carlos López",
		"tipDocSolicita":    "13",
		"numDocSolicita":    "098765432",
	})

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ANULADO", body["estado"])
	assert.Equal(t, 2, e.tr.anular.Motivo.TipoAnulacion)
	assert.Equal(t, "Carlos López", e.tr.anular.Motivo.NombreSolicita)
	assert.Equal(t, "", e.tr.anular.CodigoGeneracionR)
}

func TestAnular_RechazadoPorMH(t *testing.T) {
	e := nuevoEntorno()
	e.tr.err = fmt.Errorf("%w: documento ya invalidado", appdte.ErrAnulacionRechazada)

	resp, body := e.llamar(t, http.MethodPost, "/api/transmisiones/rec-1/anular", map[string]any{
		"credenciales":      credenciales(),
		"tipoAnulacion":     2,
		"nombreResponsable": "Ana Martínez",
		"tipDocResponsable": "13",
		"numDocResponsable": "012345678",
		"nombreSolicita":    "Carlos López",
		"tipDocSolicita":    "13",
		"numDocSolicita":    "098765432",
	})

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "REJECTED", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Certificados y firma
// ──────────────────────────────────────────────────────────────────────────────

func multipartP12(t *testing.T, contenido []byte, password string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("archivo", "empresa.p12")
	require.NoError(t, err)
	_, err = fw.Write(contenido)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("password", password))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/certificados", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Tenant-ID", testTenantID)
	return req
}

func TestCertificados_Subir(t *testing.T) {
	e := nuevoEntorno()
	ahora := time.Now()
	e.certs.info = signer.CertificateInfo{
		SubjectCN: "COMERCIAL EJEMPLO",
		IssuerCN:  "MH CA",
		Serial:    "1234",
		NotBefore: ahora.Add(-time.Hour),
		NotAfter:  ahora.Add(365 * 24 * time.Hour),
	}

	resp, body := e.hacer(t, multipartP12(t, []byte("p12-bytes"), "clave"))

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "COMERCIAL EJEMPLO", body["subjectCN"])
	assert.Equal(t, true, body["vigente"])
	assert.Equal(t, []byte("p12-bytes"), e.certs.p12)
	assert.Equal(t, "clave", e.certs.password)
}

func TestCertificados_PasswordIncorrecto(t *testing.T) {
	e := nuevoEntorno()
	e.certs.err = signer.ErrPasswordIncorrecto

	resp, body := e.hacer(t, multipartP12(t, []byte("p12-bytes"), "mala"))

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_CERTIFICATE", body["code"])
}

func TestCertificados_SinArchivo(t *testing.T) {
	e := nuevoEntorno()

	resp, body := e.llamar(t, http.MethodPost, "/api/certificados", map[string]any{})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestCertificados_ObtenerVencido(t *testing.T) {
	e := nuevoEntorno()
	e.certs.info = signer.CertificateInfo{
		SubjectCN: "COMERCIAL EJEMPLO",
		NotBefore: time.Now().Add(-48 * time.Hour),
		NotAfter:  time.Now().Add(-24 * time.Hour),
	}

	resp, body := e.llamar(t, http.MethodGet, "/api/certificados", nil)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["vigente"])
}

func TestVerificarFirma(t *testing.T) {
	e := nuevoEntorno()

	t.Run("llave pública inválida", func(t *testing.T) {
		resp, body := e.llamar(t, http.MethodPost, "/api/firma/verificar", map[string]any{
			"jws": "a.b.c", "llavePublica": "no es PEM",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, false, body["valid"])
		assert.Contains(t, body["error"], "llave pública inválida")
	})

	t.Run("certificado del tenant no cargado", func(t *testing.T) {
		resp, body := e.llamar(t, http.MethodPost, "/api/firma/verificar", map[string]any{"jws": "a.b.c"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, false, body["valid"])
	})

	t.Run("tenant sin certificado", func(t *testing.T) {
		e.certs.err = signer.ErrSinCertificado
		resp, body := e.llamar(t, http.MethodPost, "/api/firma/verificar", map[string]any{"jws": "a.b.c"})
		assert.Equal(t, fiber.StatusPreconditionFailed, resp.StatusCode)
		assert.Equal(t, "NO_CERTIFICATE", body["code"])
	})
}

func TestTransmitirAsync_ColaLlena(t *testing.T) {
	e := nuevoEntorno()
	e.tr.err = queue.ErrColaLlena

	resp, body := e.llamar(t, http.MethodPost, "/api/transmisiones/rec-1/transmitir-async", map[string]any{"credenciales": credenciales()})

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "QUEUE_FULL", body["code"])
}

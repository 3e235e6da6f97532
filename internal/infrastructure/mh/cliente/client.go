// Package cliente implementa la comunicación HTTP con la API de DTE del Ministerio de Hacienda:
// autenticación, recepción, consulta e invalidación.
package cliente

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/dte-api/internal/domain/dte"
	"github.com/jhoicas/dte-api/internal/domain/hacienda"
)

const (
	pathAuth       = "/seguridad/auth"
	pathRecepcion  = "/fesv/recepciondte"
	pathConsulta   = "/fesv/recepcion/consultadte/"
	pathAnulacion  = "/fesv/anulardte"
	formatoFechaMH = "02/01/2006 15:04:05"
	maxRespuesta   = 1 << 20 // 1 MB

	EstadoProcesado = "PROCESADO"
	EstadoRechazado = "RECHAZADO"
)

// ErrAutenticacion MH no entregó token para las credenciales.
var ErrAutenticacion = errors.New("mh: autenticación fallida")

// HTTPClient permite inyectar un cliente instrumentado o de pruebas.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config URLs base y tiempos de la API.
type Config struct {
	APIURL   string
	AuthURL  string
	Timeout  time.Duration
	TokenTTL time.Duration
}

// Client cliente de la API de MH. Seguro para uso concurrente.
type Client struct {
	cfg    Config
	http   HTTPClient
	tokens *tokenCache
	mu     sync.Mutex // serializa la renovación de tokens
	log    zerolog.Logger
}

// NewClient construye el cliente con un http.Client acotado por cfg.Timeout.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout}, log)
}

// NewClientWithHTTP construye el cliente con un HTTPClient propio.
func NewClientWithHTTP(cfg Config, hc HTTPClient, log zerolog.Logger) *Client {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = cfg.APIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.AuthURL = strings.TrimRight(cfg.AuthURL, "/")
	return &Client{
		cfg:    cfg,
		http:   hc,
		tokens: newTokenCache(time.Now),
		log:    log.With().Str("component", "mh-client").Logger(),
	}
}

// ── Autenticación ─────────────────────────────────────────────────────────────

type authResponse struct {
	Status string `json:"status"`
	Body   struct {
		Token string `json:"token"`
	} `json:"body"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Token devuelve un token vigente para el NIT, autenticando solo si no hay uno en cache para
// ese mismo password. Un password distinto siempre pasa por /seguridad/auth.
func (c *Client) Token(ctx context.Context, cred hacienda.Credenciales) (string, error) {
	if token, ok := c.tokens.Get(cred.Nit, cred.Password); ok {
		return token, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if token, ok := c.tokens.Get(cred.Nit, cred.Password); ok {
		return token, nil
	}
	token, err := c.autenticar(ctx, cred)
	if err != nil {
		return "", err
	}
	c.tokens.Set(cred.Nit, cred.Password, token, c.cfg.TokenTTL)
	c.log.Debug().Str("nit", cred.Nit).Dur("ttl", c.cfg.TokenTTL).Msg("token MH renovado")
	return token, nil
}

// LimpiarToken descarta el token del NIT.
func (c *Client) LimpiarToken(nit string) { c.tokens.Clear(nit) }

func (c *Client) autenticar(ctx context.Context, cred hacienda.Credenciales) (string, error) {
	if cred.Nit == "" || cred.Password == "" {
		return "", fmt.Errorf("%w: credenciales incompletas", ErrAutenticacion)
	}
	form := url.Values{"user": {cred.Nit}, "pwd": {cred.Password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL+pathAuth, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("mh: crear request auth: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("mh: llamada auth: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRespuesta))
	if err != nil {
		return "", fmt.Errorf("mh: leer respuesta auth: %w", err)
	}
	var ar authResponse
	if err := json.Unmarshal(raw, &ar); err != nil {
		return "", fmt.Errorf("%w: status %d: %s", ErrAutenticacion, resp.StatusCode, recortar(raw))
	}
	if resp.StatusCode != http.StatusOK || !strings.EqualFold(ar.Status, "OK") || ar.Body.Token == "" {
		msg := firstNonEmpty(ar.Message, ar.Error, recortar(raw))
		return "", fmt.Errorf("%w: status %d: %s", ErrAutenticacion, resp.StatusCode, msg)
	}
	return ar.Body.Token, nil
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// respuestaMH forma común de las respuestas de recepción, consulta e invalidación.
type respuestaMH struct {
	Estado           string   `json:"estado"`
	CodigoGeneracion string   `json:"codigoGeneracion"`
	SelloRecibido    *string  `json:"selloRecibido"`
	FhProcesamiento  string   `json:"fhProcesamiento"`
	ClasificaMsg     string   `json:"clasificaMsg"`
	CodigoMsg        string   `json:"codigoMsg"`
	DescripcionMsg   string   `json:"descripcionMsg"`
	Observaciones    []string `json:"observaciones"`
}

// Transmitir envía un DTE firmado a recepción.
func (c *Client) Transmitir(ctx context.Context, cred hacienda.Credenciales, envio hacienda.Envio) hacienda.Respuesta {
	return c.post(ctx, cred, pathRecepcion, envio)
}

// Consultar consulta el estado de un DTE en MH.
func (c *Client) Consultar(ctx context.Context, cred hacienda.Credenciales, q hacienda.Consulta) hacienda.Respuesta {
	return c.post(ctx, cred, pathConsulta, q)
}

// Anular envía el evento de invalidación firmado.
func (c *Client) Anular(ctx context.Context, cred hacienda.Credenciales, envio hacienda.EnvioAnulacion) hacienda.Respuesta {
	return c.post(ctx, cred, pathAnulacion, envio)
}

// post autentica, envía y traduce la respuesta. Un 401 descarta el token y se reintenta
// una sola vez: MH no procesó la solicitud.
func (c *Client) post(ctx context.Context, cred hacienda.Credenciales, path string, body any) hacienda.Respuesta {
	payload, err := json.Marshal(body)
	if err != nil {
		return hacienda.ErrorRed{Err: fmt.Errorf("serializar solicitud: %w", err)}
	}
	for intento := 0; ; intento++ {
		token, err := c.Token(ctx, cred)
		if err != nil {
			return hacienda.ErrorRed{Err: err}
		}
		status, raw, err := c.enviar(ctx, path, token, payload)
		if err != nil {
			c.log.Warn().Err(err).Str("path", path).Msg("MH sin respuesta")
			return hacienda.ErrorRed{Err: err}
		}
		if status == http.StatusUnauthorized && intento == 0 {
			c.tokens.Clear(cred.Nit)
			continue
		}
		return c.interpretar(status, raw)
	}
}

func (c *Client) enviar(ctx context.Context, path, token string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	req.Header.Set("User-Agent", "dte-api")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, fmt.Errorf("timeout o cancelación: %w", ctx.Err())
		}
		return 0, nil, fmt.Errorf("llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRespuesta))
	if err != nil {
		return 0, nil, fmt.Errorf("leer respuesta: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func (c *Client) interpretar(status int, raw []byte) hacienda.Respuesta {
	var r respuestaMH
	if err := json.Unmarshal(raw, &r); err != nil || (r.Estado == "" && r.DescripcionMsg == "") {
		return hacienda.ErrorRed{Err: fmt.Errorf("respuesta no reconocida (status %d): %s", status, recortar(raw))}
	}
	fh := parseFecha(r.FhProcesamiento)

	switch {
	case strings.EqualFold(r.Estado, EstadoProcesado) && r.SelloRecibido != nil && *r.SelloRecibido != "":
		a := hacienda.Aceptado{
			Estado:         EstadoProcesado,
			SelloRecibido:  *r.SelloRecibido,
			CodigoMsg:      r.CodigoMsg,
			DescripcionMsg: r.DescripcionMsg,
			Observaciones:  noNil(r.Observaciones),
		}
		if fh != nil {
			a.FhProcesamiento = *fh
		}
		return a
	case status >= http.StatusInternalServerError:
		return hacienda.ErrorRed{Err: fmt.Errorf("MH status %d: %s", status, firstNonEmpty(r.DescripcionMsg, recortar(raw)))}
	default:
		estado := strings.ToUpper(r.Estado)
		if estado == "" {
			estado = EstadoRechazado
		}
		return hacienda.Rechazado{
			Estado:          estado,
			CodigoMsg:       r.CodigoMsg,
			DescripcionMsg:  r.DescripcionMsg,
			Observaciones:   noNil(r.Observaciones),
			FhProcesamiento: fh,
		}
	}
}

// parseFecha interpreta fhProcesamiento ("dd/MM/yyyy HH:mm:ss", hora de El Salvador).
func parseFecha(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(formatoFechaMH, s, dte.ZonaElSalvador)
	if err != nil {
		return nil
	}
	return &t
}

func noNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func recortar(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

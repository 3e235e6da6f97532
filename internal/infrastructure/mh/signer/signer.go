// Firma de DTE en serialización compacta JWS (RS256) para la recepción de MH.

package signer

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer mantiene a lo sumo un certificado activo. El contexto se reemplaza de forma
// atómica: los firmantes concurrentes ven el certificado anterior o el nuevo, nunca uno
// a medio cargar.
type Signer struct {
	ctx atomic.Pointer[certContext]
	now func() time.Time
}

// NewSigner construye un Signer sin certificado.
func NewSigner() *Signer {
	return &Signer{now: time.Now}
}

// WithClock reemplaza el reloj con el que se verifica la vigencia al firmar.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

// LoadCertificate carga un contenedor PKCS#12. Ante cualquier error el Signer queda sin
// certificado.
func (s *Signer) LoadCertificate(p12 []byte, password string) (*CertificateInfo, error) {
	c, err := parseP12(p12, password)
	return s.swap(c, err)
}

// LoadKeyPair carga una llave y su certificado ya decodificados.
func (s *Signer) LoadKeyPair(key crypto.PrivateKey, cert *x509.Certificate) (*CertificateInfo, error) {
	c, err := nuevoContexto(key, cert)
	return s.swap(c, err)
}

// LoadPEM carga certificado y llave en PEM. keyPEM puede ir vacío si certPEM trae ambos.
func (s *Signer) LoadPEM(certPEM, keyPEM []byte) (*CertificateInfo, error) {
	c, err := parsePEM(certPEM, keyPEM)
	return s.swap(c, err)
}

func (s *Signer) swap(c *certContext, err error) (*CertificateInfo, error) {
	if err != nil {
		s.ctx.Store(nil)
		return nil, err
	}
	s.ctx.Store(c)
	info := c.info
	return &info, nil
}

// Unload descarta el certificado activo.
func (s *Signer) Unload() { s.ctx.Store(nil) }

// Info devuelve los metadatos del certificado activo.
func (s *Signer) Info() (CertificateInfo, bool) {
	c := s.ctx.Load()
	if c == nil {
		return CertificateInfo{}, false
	}
	return c.info, true
}

// Certificate devuelve el certificado hoja activo (nil si no hay).
func (s *Signer) Certificate() *x509.Certificate {
	if c := s.ctx.Load(); c != nil {
		return c.cert
	}
	return nil
}

// contexto devuelve el certificado activo si está vigente en este instante.
func (s *Signer) contexto() (*certContext, error) {
	c := s.ctx.Load()
	if c == nil {
		return nil, ErrSinCertificado
	}
	now := s.now()
	switch {
	case now.Before(c.info.NotBefore):
		return nil, fmt.Errorf("%w: desde %s", ErrCertificadoNoVigente, c.info.NotBefore.Format(time.RFC3339))
	case now.After(c.info.NotAfter):
		return nil, fmt.Errorf("%w: desde %s", ErrCertificadoExpirado, c.info.NotAfter.Format(time.RFC3339))
	}
	return c, nil
}

// SignDTE serializa doc a JSON canónico y devuelve el JWS compacto firmado con RS256.
// La vigencia del certificado se comprueba en cada llamada.
func (s *Signer) SignDTE(doc any) (string, error) {
	c, err := s.contexto()
	if err != nil {
		return "", err
	}
	payload, err := CanonicalJSON(doc)
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, contenido(payload))
	delete(token.Header, "typ")
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("signer: firmar: %w", err)
	}
	return signed, nil
}

// VerifyResult resultado de una verificación. Payload es el JSON firmado.
type VerifyResult struct {
	Valid   bool            `json:"valid"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// VerifySignature verifica con la llave pública del certificado activo. Nunca devuelve
// error: cualquier falla se reporta como Valid=false.
func (s *Signer) VerifySignature(jws string) VerifyResult {
	c := s.ctx.Load()
	if c == nil {
		return VerifyResult{Error: ErrSinCertificado.Error()}
	}
	return verificar(jws, &c.key.PublicKey)
}

// VerifySignatureWithPEM verifica con una llave pública o certificado PEM de terceros.
func VerifySignatureWithPEM(jws string, publicPEM []byte) VerifyResult {
	pub, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("llave pública inválida: %v", err)}
	}
	return verificar(jws, pub)
}

func verificar(jws string, pub *rsa.PublicKey) VerifyResult {
	var claims contenido
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(jws, &claims, func(*jwt.Token) (any, error) { return pub, nil })
	if err != nil {
		return VerifyResult{Error: err.Error()}
	}
	return VerifyResult{Valid: true, Payload: json.RawMessage(claims)}
}

// DecodeHeader decodifica el encabezado del JWS sin verificar la firma.
func DecodeHeader(jws string) (map[string]any, error) {
	seg, err := segmento(jws, 0)
	if err != nil {
		return nil, err
	}
	var h map[string]any
	if err := json.Unmarshal(seg, &h); err != nil {
		return nil, fmt.Errorf("signer: encabezado inválido: %w", err)
	}
	return h, nil
}

// DecodePayload decodifica el contenido del JWS sin verificar la firma.
func DecodePayload(jws string) (json.RawMessage, error) {
	seg, err := segmento(jws, 1)
	if err != nil {
		return nil, err
	}
	if !json.Valid(seg) {
		return nil, errors.New("signer: contenido no es JSON")
	}
	return json.RawMessage(seg), nil
}

func segmento(jws string, i int) ([]byte, error) {
	partes := strings.Split(strings.TrimSpace(jws), ".")
	if len(partes) != 3 {
		return nil, fmt.Errorf("signer: JWS compacto inválido: %d segmentos", len(partes))
	}
	b, err := jwt.NewParser().DecodeSegment(partes[i])
	if err != nil {
		return nil, fmt.Errorf("signer: segmento %d: %w", i, err)
	}
	return b, nil
}

// CanonicalJSON serializa v con claves ordenadas y números exactos (sin pasar por float64).
func CanonicalJSON(v any) ([]byte, error) {
	var raw []byte
	switch d := v.(type) {
	case json.RawMessage:
		raw = d
	case []byte:
		raw = d
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("signer: serializar documento: %w", err)
		}
		raw = b
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("signer: documento no es JSON: %w", err)
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("signer: serializar documento: %w", err)
	}
	return out, nil
}

// contenido claims del JWS: el documento completo tal cual, sin claims registrados.
type contenido json.RawMessage

func (c contenido) MarshalJSON() ([]byte, error) { return c, nil }

func (c *contenido) UnmarshalJSON(b []byte) error {
	*c = append((*c)[:0], b...)
	return nil
}

func (contenido) GetExpirationTime() (*jwt.NumericDate, error) { return nil, nil }
func (contenido) GetIssuedAt() (*jwt.NumericDate, error)       { return nil, nil }
func (contenido) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (contenido) GetIssuer() (string, error)                   { return "", nil }
func (contenido) GetSubject() (string, error)                  { return "", nil }
func (contenido) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

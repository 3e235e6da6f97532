// Carga del certificado del emisor desde .p12 (PKCS#12) o par PEM.

package signer

import (
	"crypto"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/pkcs12"
)

var (
	ErrPasswordIncorrecto    = errors.New("signer: contraseña del certificado incorrecta")
	ErrCertificadoMalformado = errors.New("signer: certificado malformado")
	ErrSinCertificado        = errors.New("signer: no hay certificado cargado")
	ErrCertificadoExpirado   = errors.New("signer: certificado expirado")
	ErrCertificadoNoVigente  = errors.New("signer: certificado aún no vigente")
)

// CertificateInfo metadatos del certificado cargado.
type CertificateInfo struct {
	SubjectCN string    `json:"subjectCN"`
	IssuerCN  string    `json:"issuerCN"`
	Serial    string    `json:"serial"`
	NotBefore time.Time `json:"notBefore"`
	NotAfter  time.Time `json:"notAfter"`
}

// Vigente indica si t cae dentro de [NotBefore, NotAfter].
func (i CertificateInfo) Vigente(t time.Time) bool {
	return !t.Before(i.NotBefore) && !t.After(i.NotAfter)
}

// certContext llave + certificado hoja. Inmutable: se reemplaza completo al recargar.
type certContext struct {
	key  *rsa.PrivateKey
	cert *x509.Certificate
	info CertificateInfo
}

func nuevoContexto(key crypto.PrivateKey, cert *x509.Certificate) (*certContext, error) {
	if cert == nil {
		return nil, fmt.Errorf("%w: falta el certificado", ErrCertificadoMalformado)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: se requiere llave privada RSA", ErrCertificadoMalformado)
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok || !pub.Equal(&rsaKey.PublicKey) {
		return nil, fmt.Errorf("%w: la llave no corresponde al certificado", ErrCertificadoMalformado)
	}
	return &certContext{
		key:  rsaKey,
		cert: cert,
		info: CertificateInfo{
			SubjectCN: cert.Subject.CommonName,
			IssuerCN:  cert.Issuer.CommonName,
			Serial:    cert.SerialNumber.Text(16),
			NotBefore: cert.NotBefore,
			NotAfter:  cert.NotAfter,
		},
	}, nil
}

// parseP12 extrae la llave privada y el certificado hoja del contenedor. Si hay varios
// certificados (cadena) se elige el que corresponde a la llave.
func parseP12(data []byte, password string) (*certContext, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: archivo vacío", ErrCertificadoMalformado)
	}
	blocks, err := pkcs12.ToPEM(data, password)
	if err != nil {
		if errors.Is(err, pkcs12.ErrIncorrectPassword) {
			return nil, ErrPasswordIncorrecto
		}
		return nil, fmt.Errorf("%w: %v", ErrCertificadoMalformado, err)
	}

	var key crypto.PrivateKey
	var certs []*x509.Certificate
	for _, b := range blocks {
		switch b.Type {
		case "PRIVATE KEY":
			if key, err = parsePrivateKey(b.Bytes); err != nil {
				return nil, fmt.Errorf("%w: llave privada: %v", ErrCertificadoMalformado, err)
			}
		case "CERTIFICATE":
			c, err := x509.ParseCertificate(b.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%w: certificado: %v", ErrCertificadoMalformado, err)
			}
			certs = append(certs, c)
		}
	}
	if key == nil {
		return nil, fmt.Errorf("%w: el contenedor no incluye llave privada", ErrCertificadoMalformado)
	}
	return nuevoContexto(key, hoja(key, certs))
}

// parsePrivateKey ToPEM entrega PKCS#1 para RSA y SEC1 para EC bajo el tipo "PRIVATE KEY".
func parsePrivateKey(der []byte) (crypto.PrivateKey, error) {
	if k, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return k, nil
	}
	if k, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		return k, nil
	}
	return x509.ParseECPrivateKey(der)
}

func hoja(key crypto.PrivateKey, certs []*x509.Certificate) *x509.Certificate {
	if s, ok := key.(crypto.Signer); ok {
		for _, c := range certs {
			if pub, ok := c.PublicKey.(interface{ Equal(crypto.PublicKey) bool }); ok && pub.Equal(s.Public()) {
				return c
			}
		}
	}
	if len(certs) > 0 {
		return certs[0]
	}
	return nil
}

// parsePEM carga certificado y llave PEM (pueden venir en el mismo bloque de bytes).
func parsePEM(certPEM, keyPEM []byte) (*certContext, error) {
	if len(keyPEM) == 0 {
		keyPEM = certPEM
	}
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificadoMalformado, err)
	}
	leaf := pair.Leaf
	if leaf == nil {
		if leaf, err = x509.ParseCertificate(pair.Certificate[0]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCertificadoMalformado, err)
		}
	}
	return nuevoContexto(pair.PrivateKey, leaf)
}

// CertificatePEM codifica un certificado en PEM (para exponer la llave pública).
func CertificatePEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
}

package signer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/dte-api/internal/domain"
)

// CertificateSource entrega y guarda el .p12 de cada tenant. Devuelve domain.ErrNotFound
// si el tenant no tiene certificado.
type CertificateSource interface {
	Obtener(ctx context.Context, tenantID string) (p12 []byte, password string, err error)
	Guardar(ctx context.Context, tenantID string, p12 []byte, password string, info CertificateInfo) error
}

// CertificateStore cache de Signers por tenant. Cada entrada se llena bajo demanda desde
// la fuente y se reemplaza completa cuando el tenant sube un certificado nuevo. La lectura
// de la fuente ocurre fuera de mu; las cargas simultáneas del mismo tenant se unen en una.
type CertificateStore struct {
	mu      sync.RWMutex
	signers map[string]*Signer
	cargas  singleflight.Group
	source  CertificateSource
	now     func() time.Time
}

// NewCertificateStore construye el store. source puede ser nil (solo certificados precargados).
func NewCertificateStore(source CertificateSource) *CertificateStore {
	return &CertificateStore{
		signers: make(map[string]*Signer),
		source:  source,
		now:     time.Now,
	}
}

// WithClock reloj que heredan los Signers creados por el store.
func (s *CertificateStore) WithClock(now func() time.Time) *CertificateStore {
	s.now = now
	return s
}

// Signer devuelve el Signer del tenant, cargándolo desde la fuente la primera vez.
func (s *CertificateStore) Signer(ctx context.Context, tenantID string) (*Signer, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}
	s.mu.RLock()
	sg, ok := s.signers[tenantID]
	s.mu.RUnlock()
	if ok {
		return sg, nil
	}

	if s.source == nil {
		return nil, ErrSinCertificado
	}
	v, err, _ := s.cargas.Do(tenantID, func() (any, error) {
		return s.cargar(ctx, tenantID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Signer), nil
}

func (s *CertificateStore) cargar(ctx context.Context, tenantID string) (*Signer, error) {
	p12, password, err := s.source.Obtener(ctx, tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: tenant %s", ErrSinCertificado, tenantID)
		}
		return nil, fmt.Errorf("signer: obtener certificado: %w", err)
	}
	sg := NewSigner().WithClock(s.now)
	if _, err := sg.LoadCertificate(p12, password); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Un Subir que terminó mientras se leía la fuente gana.
	if actual, ok := s.signers[tenantID]; ok {
		return actual, nil
	}
	s.signers[tenantID] = sg
	return sg, nil
}

// Precargar registra un certificado sin persistirlo (p. ej. el del tenant por defecto
// leído de disco al arrancar).
func (s *CertificateStore) Precargar(tenantID string, p12 []byte, password string) (*CertificateInfo, error) {
	sg := NewSigner().WithClock(s.now)
	info, err := sg.LoadCertificate(p12, password)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.signers[tenantID] = sg
	s.mu.Unlock()
	return info, nil
}

// Subir valida el .p12, lo guarda en la fuente y reemplaza el Signer del tenant. Si el
// contenedor no es válido no se toca lo que ya estaba cargado.
func (s *CertificateStore) Subir(ctx context.Context, tenantID string, p12 []byte, password string) (*CertificateInfo, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}
	sg := NewSigner().WithClock(s.now)
	info, err := sg.LoadCertificate(p12, password)
	if err != nil {
		return nil, err
	}
	if s.source != nil {
		if err := s.source.Guardar(ctx, tenantID, p12, password, *info); err != nil {
			return nil, fmt.Errorf("signer: guardar certificado: %w", err)
		}
	}
	s.mu.Lock()
	s.signers[tenantID] = sg
	s.mu.Unlock()
	return info, nil
}

// Info metadatos del certificado cargado para el tenant.
func (s *CertificateStore) Info(ctx context.Context, tenantID string) (CertificateInfo, error) {
	sg, err := s.Signer(ctx, tenantID)
	if err != nil {
		return CertificateInfo{}, err
	}
	info, ok := sg.Info()
	if !ok {
		return CertificateInfo{}, ErrSinCertificado
	}
	return info, nil
}

// Olvidar descarta el Signer en cache; la siguiente firma recarga desde la fuente.
func (s *CertificateStore) Olvidar(tenantID string) {
	s.mu.Lock()
	delete(s.signers, tenantID)
	s.mu.Unlock()
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/dte-api/internal/domain"
	"github.com/jhoicas/dte-api/internal/domain/entity"
	"github.com/jhoicas/dte-api/internal/domain/repository"
	"github.com/jhoicas/dte-api/internal/infrastructure/mh/signer"
)

var (
	_ repository.CertificadoRepository = (*CertificadoRepo)(nil)
	_ signer.CertificateSource         = (*CertificadoRepo)(nil)
)

// CertificadoRepo guarda el .p12 vigente de cada tenant. También es la fuente del CertificateStore.
type CertificadoRepo struct {
	q Querier
}

// NewCertificadoRepository construye el adaptador.
func NewCertificadoRepository(q Querier) *CertificadoRepo {
	return &CertificadoRepo{q: q}
}

func (r *CertificadoRepo) Get(ctx context.Context, tenantID string) (*entity.Certificado, error) {
	const q = `
		SELECT tenant_id, p12, password, subject_cn, issuer_cn, serial, not_before, not_after, created_at, updated_at
		FROM certificados WHERE tenant_id = $1`
	var c entity.Certificado
	err := r.q.QueryRow(ctx, q, tenantID).Scan(
		&c.TenantID, &c.P12, &c.Password, &c.SubjectCN, &c.IssuerCN, &c.Serial,
		&c.NotBefore, &c.NotAfter, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get certificado: %w", err)
	}
	return &c, nil
}

// Upsert reemplaza el certificado del tenant.
func (r *CertificadoRepo) Upsert(ctx context.Context, c *entity.Certificado) error {
	const q = `
		INSERT INTO certificados (tenant_id, p12, password, subject_cn, issuer_cn, serial, not_before, not_after, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (tenant_id) DO UPDATE SET
			p12 = EXCLUDED.p12, password = EXCLUDED.password, subject_cn = EXCLUDED.subject_cn,
			issuer_cn = EXCLUDED.issuer_cn, serial = EXCLUDED.serial,
			not_before = EXCLUDED.not_before, not_after = EXCLUDED.not_after, updated_at = now()
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, q,
		c.TenantID, c.P12, c.Password, c.SubjectCN, c.IssuerCN, c.Serial, c.NotBefore, c.NotAfter,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert certificado: %w", err)
	}
	return nil
}

// Obtener implementa signer.CertificateSource.
func (r *CertificadoRepo) Obtener(ctx context.Context, tenantID string) ([]byte, string, error) {
	c, err := r.Get(ctx, tenantID)
	if err != nil {
		return nil, "", err
	}
	return c.P12, c.Password, nil
}

// Guardar implementa signer.CertificateSource.
func (r *CertificadoRepo) Guardar(ctx context.Context, tenantID string, p12 []byte, password string, info signer.CertificateInfo) error {
	return r.Upsert(ctx, &entity.Certificado{
		TenantID:  tenantID,
		P12:       p12,
		Password:  password,
		SubjectCN: info.SubjectCN,
		IssuerCN:  info.IssuerCN,
		Serial:    info.Serial,
		NotBefore: info.NotBefore,
		NotAfter:  info.NotAfter,
	})
}

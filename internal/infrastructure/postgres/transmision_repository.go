package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/dte-api/internal/domain"
	"github.com/jhoicas/dte-api/internal/domain/entity"
	"github.com/jhoicas/dte-api/internal/domain/repository"
)

var _ repository.TransmisionRepository = (*TransmisionRepo)(nil)

// TransmisionRepo implementación sobre PostgreSQL (usable con pool o tx).
type TransmisionRepo struct {
	q Querier
}

// NewTransmisionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransmisionRepository(q Querier) *TransmisionRepo {
	return &TransmisionRepo{q: q}
}

const columnasTransmision = `
	id, tenant_id, tipo_dte, version, ambiente, cod_estable, correlativo, numero_control,
	codigo_generacion, estado, intentos, sello_recibido, fh_procesamiento, codigo_msg,
	descripcion_msg, observaciones, monto_total, documento, documento_firmado, ultimo_error,
	anulacion_codigo, anulacion_sello, anulacion_firmada, fecha_anulacion, created_at, updated_at`

// Create inserta el registro. Un numeroControl o codigoGeneracion repetido devuelve domain.ErrDuplicate.
func (r *TransmisionRepo) Create(ctx context.Context, t *entity.Transmision) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Observaciones == nil {
		t.Observaciones = []string{}
	}
	const q = `
		INSERT INTO transmisiones (
			id, tenant_id, tipo_dte, version, ambiente, cod_estable, correlativo, numero_control,
			codigo_generacion, estado, intentos, sello_recibido, fh_procesamiento, codigo_msg,
			descripcion_msg, observaciones, monto_total, documento, documento_firmado, ultimo_error,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, now(), now())
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, q,
		t.ID, t.TenantID, t.TipoDte, t.Version, t.Ambiente, t.CodEstable, t.Correlativo, t.NumeroControl,
		t.CodigoGeneracion, string(t.Estado), t.Intentos, t.SelloRecibido, t.FhProcesamiento, t.CodigoMsg,
		t.DescripcionMsg, t.Observaciones, t.MontoTotal, []byte(t.Documento), t.DocumentoFirmado, t.UltimoError,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transmisión %s", domain.ErrDuplicate, t.NumeroControl)
		}
		return fmt.Errorf("insert transmision: %w", err)
	}
	return nil
}

func (r *TransmisionRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Transmision, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ` + columnasTransmision + ` FROM transmisiones WHERE tenant_id = $1 AND id = $2`
	t, err := scanTransmision(r.q.QueryRow(ctx, q, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get transmision by id: %w", err)
	}
	return t, nil
}

func (r *TransmisionRepo) GetByCodigoGeneracion(ctx context.Context, tenantID, codigoGeneracion string) (*entity.Transmision, error) {
	q := `SELECT ` + columnasTransmision + ` FROM transmisiones WHERE tenant_id = $1 AND codigo_generacion = upper($2)`
	t, err := scanTransmision(r.q.QueryRow(ctx, q, tenantID, codigoGeneracion))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get transmision by codigo_generacion: %w", err)
	}
	return t, nil
}

// Update persiste los campos mutables. Los campos de identidad del documento no cambian.
func (r *TransmisionRepo) Update(ctx context.Context, t *entity.Transmision) error {
	if t.Observaciones == nil {
		t.Observaciones = []string{}
	}
	const q = `
		UPDATE transmisiones SET
			estado = $3, intentos = $4, sello_recibido = $5, fh_procesamiento = $6,
			codigo_msg = $7, descripcion_msg = $8, observaciones = $9, documento_firmado = $10,
			ultimo_error = $11, anulacion_codigo = $12, anulacion_sello = $13,
			anulacion_firmada = $14, fecha_anulacion = $15, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, q,
		t.TenantID, t.ID,
		string(t.Estado), t.Intentos, t.SelloRecibido, t.FhProcesamiento,
		t.CodigoMsg, t.DescripcionMsg, t.Observaciones, t.DocumentoFirmado,
		t.UltimoError, t.AnulacionCodigo, t.AnulacionSello,
		t.AnulacionFirmada, t.FechaAnulacion,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update transmision: %w", err)
	}
	return nil
}

// ListByTenant lista los registros del tenant, más recientes primero. estado vacío = todos.
func (r *TransmisionRepo) ListByTenant(ctx context.Context, tenantID string, estado entity.EstadoTransmision, limit int) ([]*entity.Transmision, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	q := `SELECT ` + columnasTransmision + `
		FROM transmisiones
		WHERE tenant_id = $1 AND ($2 = '' OR estado = $2)
		ORDER BY created_at DESC
		LIMIT $3`
	rows, err := r.q.Query(ctx, q, tenantID, string(estado), limit)
	if err != nil {
		return nil, fmt.Errorf("list transmisiones: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transmision
	for rows.Next() {
		t, err := scanTransmision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transmision: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTransmision(row pgxScanner) (*entity.Transmision, error) {
	var (
		t      entity.Transmision
		estado string
		doc    []byte
	)
	err := row.Scan(
		&t.ID, &t.TenantID, &t.TipoDte, &t.Version, &t.Ambiente, &t.CodEstable, &t.Correlativo, &t.NumeroControl,
		&t.CodigoGeneracion, &estado, &t.Intentos, &t.SelloRecibido, &t.FhProcesamiento, &t.CodigoMsg,
		&t.DescripcionMsg, &t.Observaciones, &t.MontoTotal, &doc, &t.DocumentoFirmado, &t.UltimoError,
		&t.AnulacionCodigo, &t.AnulacionSello, &t.AnulacionFirmada, &t.FechaAnulacion, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Estado = entity.EstadoTransmision(estado)
	t.Documento = doc
	if t.Observaciones == nil {
		t.Observaciones = []string{}
	}
	return &t, nil
}

package dte

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/dte-api/internal/domain"
	dtedoc "github.com/jhoicas/dte-api/internal/domain/dte"
	"github.com/jhoicas/dte-api/internal/domain/dte/schema"
	"github.com/jhoicas/dte-api/internal/domain/entity"
	"github.com/jhoicas/dte-api/internal/domain/repository"
)

// Emision arma, valida y firma documentos nuevos:
//
//	Build → Validate → persistir CREADO (con correlativo) → SignDTE → FIRMADO
type Emision struct {
	tx        EmisionTxRunner
	repo      repository.TransmisionRepository
	builder   *dtedoc.Builder
	validador Validador
	firmantes Firmantes
	ambiente  string
	log       zerolog.Logger
}

// NewEmision construye el caso de uso. ambiente es el de la configuración (00 o 01).
func NewEmision(
	tx EmisionTxRunner,
	repo repository.TransmisionRepository,
	validador Validador,
	firmantes Firmantes,
	ambiente string,
	log zerolog.Logger,
) *Emision {
	return &Emision{
		tx:        tx,
		repo:      repo,
		builder:   dtedoc.NewBuilder(),
		validador: validador,
		firmantes: firmantes,
		ambiente:  ambiente,
		log:       log.With().Str("component", "emision").Logger(),
	}
}

// WithClock reemplaza el reloj del builder (tests).
func (e *Emision) WithClock(now func() time.Time) *Emision {
	e.builder.WithClock(now)
	return e
}

// Preview arma y valida sin reservar correlativo ni persistir. Si la entrada no trae
// correlativo se usa 1.
func (e *Emision) Preview(in dtedoc.BuildInput) (*dtedoc.Documento, *schema.Result, error) {
	in.Ambiente = e.ambiente
	in.CodEstablecimiento = codigoEstablecimiento(in)
	if in.Correlativo == 0 {
		in.Correlativo = 1
	}
	doc, err := e.builder.Build(in)
	if err != nil {
		return nil, nil, err
	}
	res, err := e.validador.Validate(doc, string(in.TipoDte))
	if err != nil {
		return nil, nil, err
	}
	return doc, res, nil
}

// Emitir reserva el correlativo y crea el registro CREADO en una transacción; si el documento
// no pasa el esquema se revierte todo y el correlativo no se consume. Luego firma y deja el
// registro FIRMADO. Si la firma falla el registro queda CREADO y puede firmarse con Firmar.
func (e *Emision) Emitir(ctx context.Context, tenantID string, in dtedoc.BuildInput) (*entity.Transmision, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}
	in.Ambiente = e.ambiente
	in.CodEstablecimiento = codigoEstablecimiento(in)

	// Sin certificado no se consume correlativo.
	firmante, err := e.firmantes.Firmante(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var rec *entity.Transmision
	err = e.tx.RunEmision(ctx, func(correlativos repository.CorrelativoRepository, transmisiones repository.TransmisionRepository) error {
		n, err := correlativos.Siguiente(ctx, tenantID, string(in.TipoDte), in.Ambiente, in.CodEstablecimiento)
		if err != nil {
			return err
		}
		in.Correlativo = n
		doc, err := e.builder.Build(in)
		if err != nil {
			return err
		}
		val, err := e.validador.Validate(doc, string(in.TipoDte))
		if err != nil {
			return err
		}
		if !val.Valid {
			return &ValidacionError{Errores: val.Errors}
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("serializar documento: %w", err)
		}
		rec = &entity.Transmision{
			TenantID:         tenantID,
			TipoDte:          doc.Identificacion.TipoDte,
			Version:          doc.Identificacion.Version,
			Ambiente:         doc.Identificacion.Ambiente,
			CodEstable:       in.CodEstablecimiento,
			Correlativo:      n,
			NumeroControl:    doc.Identificacion.NumeroControl,
			CodigoGeneracion: doc.Identificacion.CodigoGeneracion,
			Estado:           entity.EstadoCreado,
			MontoTotal:       decimal.NewFromFloat(doc.Resumen.TotalPagar),
			Documento:        raw,
			Observaciones:    []string{},
		}
		return transmisiones.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("tenant_id", tenantID).Str("transmision_id", rec.ID).
		Str("numero_control", rec.NumeroControl).Msg("DTE creado")

	return rec, e.firmar(ctx, rec, firmante)
}

// Firmar firma un registro que quedó CREADO.
func (e *Emision) Firmar(ctx context.Context, tenantID, id string) (*entity.Transmision, error) {
	rec, err := e.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if rec.Estado != entity.EstadoCreado {
		return nil, fmt.Errorf("%w: no se puede firmar desde %s", ErrTransicionInvalida, rec.Estado)
	}
	firmante, err := e.firmantes.Firmante(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return rec, e.firmar(ctx, rec, firmante)
}

func (e *Emision) firmar(ctx context.Context, rec *entity.Transmision, firmante Firmante) error {
	jws, err := firmante.SignDTE(json.RawMessage(rec.Documento))
	if err != nil {
		rec.UltimoError = err.Error()
		if uerr := e.repo.Update(ctx, rec); uerr != nil {
			e.log.Error().Err(uerr).Str("transmision_id", rec.ID).Msg("no se pudo registrar el error de firma")
		}
		return err
	}
	rec.DocumentoFirmado = jws
	rec.Estado = entity.EstadoFirmado
	rec.UltimoError = ""
	if err := e.repo.Update(ctx, rec); err != nil {
		return fmt.Errorf("persistir firma: %w", err)
	}
	e.log.Info().Str("tenant_id", rec.TenantID).Str("transmision_id", rec.ID).Msg("DTE firmado")
	return nil
}

// Obtener devuelve el registro del tenant.
func (e *Emision) Obtener(ctx context.Context, tenantID, id string) (*entity.Transmision, error) {
	return e.repo.GetByID(ctx, tenantID, id)
}

// Listar registros del tenant, opcionalmente filtrados por estado.
func (e *Emision) Listar(ctx context.Context, tenantID string, estado entity.EstadoTransmision, limit int) ([]*entity.Transmision, error) {
	return e.repo.ListByTenant(ctx, tenantID, estado, limit)
}

// codigoEstablecimiento el de la entrada o, si falta, codEstableMH + codPuntoVentaMH del emisor;
// normalizado a 8 caracteres para que el correlativo se lleve por establecimiento real.
func codigoEstablecimiento(in dtedoc.BuildInput) string {
	cod := strings.ToUpper(strings.TrimSpace(in.CodEstablecimiento))
	if cod == "" {
		if in.Emisor.CodEstableMH != nil {
			cod += *in.Emisor.CodEstableMH
		}
		if in.Emisor.CodPuntoVentaMH != nil {
			cod += *in.Emisor.CodPuntoVentaMH
		}
		cod = strings.ToUpper(cod)
	}
	if cod != "" && len(cod) < 8 {
		cod = strings.Repeat("0", 8-len(cod)) + cod
	}
	return cod
}

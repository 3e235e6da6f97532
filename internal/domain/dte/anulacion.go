package dte

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/dte-api/pkg/mh"
)

// Anulacion evento de invalidación (versión 2) de un DTE ya procesado por MH.
type Anulacion struct {
	Identificacion IdentificacionAnulacion `json:"identificacion"`
	Emisor         EmisorAnulacion         `json:"emisor"`
	Documento      DocumentoAnulado        `json:"documento"`
	Motivo         Motivo                  `json:"motivo"`
}

// IdentificacionAnulacion identificación del evento.
type IdentificacionAnulacion struct {
	Version          int    `json:"version"`
	Ambiente         string `json:"ambiente"`
	CodigoGeneracion string `json:"codigoGeneracion"`
	FecAnula         string `json:"fecAnula"`
	HorAnula         string `json:"horAnula"`
}

// EmisorAnulacion emisor del documento invalidado.
type EmisorAnulacion struct {
	Nit                 string  `json:"nit"`
	Nombre              string  `json:"nombre"`
	TipoEstablecimiento string  `json:"tipoEstablecimiento"`
	NomEstablecimiento  *string `json:"nomEstablecimiento"`
	CodEstableMH        *string `json:"codEstableMH"`
	CodEstable          *string `json:"codEstable"`
	CodPuntoVentaMH     *string `json:"codPuntoVentaMH"`
	CodPuntoVenta       *string `json:"codPuntoVenta"`
	Telefono            *string `json:"telefono"`
	Correo              string  `json:"correo"`
}

// DocumentoAnulado datos del DTE que se invalida.
type DocumentoAnulado struct {
	TipoDte           string   `json:"tipoDte"`
	CodigoGeneracion  string   `json:"codigoGeneracion"`
	SelloRecibido     string   `json:"selloRecibido"`
	NumeroControl     string   `json:"numeroControl"`
	FecEmi            string   `json:"fecEmi"`
	MontoIva          *float64 `json:"montoIva"`
	CodigoGeneracionR *string  `json:"codigoGeneracionR"`
	TipoDocumento     *string  `json:"tipoDocumento"`
	NumDocumento      *string  `json:"numDocumento"`
	Nombre            *string  `json:"nombre"`
	Telefono          *string  `json:"telefono"`
	Correo            *string  `json:"correo"`
}

// Motivo motivo de la invalidación (CAT-024) y responsables.
type Motivo struct {
	TipoAnulacion     int     `json:"tipoAnulacion"`
	MotivoAnulacion   *string `json:"motivoAnulacion"`
	NombreResponsable string  `json:"nombreResponsable"`
	TipDocResponsable string  `json:"tipDocResponsable"`
	NumDocResponsable string  `json:"numDocResponsable"`
	NombreSolicita    string  `json:"nombreSolicita"`
	TipDocSolicita    string  `json:"tipDocSolicita"`
	NumDocSolicita    string  `json:"numDocSolicita"`
}

// AnulacionInput entrada para armar el evento de invalidación.
type AnulacionInput struct {
	Original          *Documento
	SelloRecibido     string
	CodigoGeneracionR string // DTE de reemplazo (tipos 1 y 3)
	Motivo            Motivo
	Fecha             time.Time // cero = ahora
}

// BuildAnulacion arma el evento de invalidación del documento original.
func (b *Builder) BuildAnulacion(in AnulacionInput) (*Anulacion, error) {
	if in.Original == nil {
		return nil, fmt.Errorf("%w: documento original requerido", ErrMotivoAnulacion)
	}
	if in.SelloRecibido == "" {
		return nil, fmt.Errorf("%w: el documento no tiene sello de recepción", ErrMotivoAnulacion)
	}
	m := in.Motivo
	switch m.TipoAnulacion {
	case mh.AnulacionErrorInformacion, mh.AnulacionRescindir, mh.AnulacionOtro:
	default:
		return nil, fmt.Errorf("%w: tipoAnulacion %d", ErrMotivoAnulacion, m.TipoAnulacion)
	}
	if strings.TrimSpace(m.NombreResponsable) == "" || strings.TrimSpace(m.NombreSolicita) == "" {
		return nil, fmt.Errorf("%w: responsable y solicitante requeridos", ErrMotivoAnulacion)
	}
	if m.TipoAnulacion == mh.AnulacionOtro && (m.MotivoAnulacion == nil || strings.TrimSpace(*m.MotivoAnulacion) == "") {
		return nil, fmt.Errorf("%w: tipo 3 requiere motivoAnulacion", ErrMotivoAnulacion)
	}

	var reemplazo *string
	if mh.AnulacionRequiereReemplazo(m.TipoAnulacion) {
		if !mh.ValidarCodigoGeneracion(in.CodigoGeneracionR) {
			return nil, fmt.Errorf("%w: codigoGeneracionR inválido o vacío", ErrMotivoAnulacion)
		}
		if in.CodigoGeneracionR == in.Original.Identificacion.CodigoGeneracion {
			return nil, fmt.Errorf("%w: el documento de reemplazo no puede ser el mismo", ErrMotivoAnulacion)
		}
		r := in.CodigoGeneracionR
		reemplazo = &r
	}

	fecha := in.Fecha
	if fecha.IsZero() {
		fecha = b.now()
	}
	fecha = fecha.In(ZonaElSalvador)

	orig := in.Original
	doc := DocumentoAnulado{
		TipoDte:           orig.Identificacion.TipoDte,
		CodigoGeneracion:  orig.Identificacion.CodigoGeneracion,
		SelloRecibido:     in.SelloRecibido,
		NumeroControl:     orig.Identificacion.NumeroControl,
		FecEmi:            orig.Identificacion.FecEmi,
		MontoIva:          montoIva(orig),
		CodigoGeneracionR: reemplazo,
	}
	if rec := orig.Receptor; rec != nil {
		doc.Nombre = &rec.Nombre
		doc.Telefono = rec.Telefono
		doc.Correo = rec.Correo
		switch {
		case rec.Nit != nil:
			td := mh.DocIdentificacionNIT
			doc.TipoDocumento = &td
			doc.NumDocumento = rec.Nit
		case rec.NumDocumento != nil:
			doc.TipoDocumento = rec.TipoDocumento
			doc.NumDocumento = rec.NumDocumento
		}
	}

	e := orig.Emisor
	return &Anulacion{
		Identificacion: IdentificacionAnulacion{
			Version:          mh.VersionAnulacion,
			Ambiente:         orig.Identificacion.Ambiente,
			CodigoGeneracion: b.newID(),
			FecAnula:         fecha.Format("2006-01-02"),
			HorAnula:         fecha.Format("15:04:05"),
		},
		Emisor: EmisorAnulacion{
			Nit:                 e.Nit,
			Nombre:              e.Nombre,
			TipoEstablecimiento: e.TipoEstablecimiento,
			NomEstablecimiento:  e.NombreComercial,
			CodEstableMH:        e.CodEstableMH,
			CodEstable:          e.CodEstable,
			CodPuntoVentaMH:     e.CodPuntoVentaMH,
			CodPuntoVenta:       e.CodPuntoVenta,
			Telefono:            strPtr(e.Telefono),
			Correo:              e.Correo,
		},
		Documento: doc,
		Motivo:    m,
	}, nil
}

// montoIva IVA del documento original: totalIva en Factura, tributo 20 en los demás.
func montoIva(d *Documento) *float64 {
	if d.Resumen.TotalIva != nil {
		v := *d.Resumen.TotalIva
		return &v
	}
	total := decimal.Zero
	for _, t := range d.Resumen.Tributos {
		if t.Codigo == mh.TributoIVA {
			total = total.Add(decimal.NewFromFloat(t.Valor))
		}
	}
	return ptrMonto(total)
}

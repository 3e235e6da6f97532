package dte

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/dte-api/pkg/mh"
)

// ItemInput línea simplificada. EsGravado nil equivale a gravado; NoSujeto marca una
// venta no sujeta y no puede combinarse con EsGravado=true.
type ItemInput struct {
	TipoItem        int
	Codigo          string
	Descripcion     string
	Cantidad        decimal.Decimal
	PrecioUni       decimal.Decimal
	MontoDescu      decimal.Decimal
	UniMedida       int
	EsGravado       *bool
	NoSujeto        bool
	NumeroDocumento string // notas: documento relacionado al que aplica la línea
}

// ReceptorInput datos del receptor; Factura usa TipoDocumento/NumDocumento, los demás Nit.
type ReceptorInput struct {
	TipoDocumento   string
	NumDocumento    string
	Nit             string
	Nrc             string
	Nombre          string
	CodActividad    string
	DescActividad   string
	NombreComercial string
	Direccion       *Direccion
	Telefono        string
	Correo          string
}

// BuildInput entrada del builder.
type BuildInput struct {
	TipoDte                mh.TipoDte
	Ambiente               string
	Emisor                 Emisor
	Receptor               *ReceptorInput
	Items                  []ItemInput
	CodEstablecimiento     string
	Correlativo            int64
	CondicionOperacion     int
	FormaPago              string // CAT-017; por defecto 01
	DocumentosRelacionados []DocumentoRelacionado
	FechaEmision           time.Time // cero = ahora
	Extension              *Extension
	Apendice               []Apendice
}

// Builder arma documentos completos. No persiste ni transmite.
type Builder struct {
	now   func() time.Time
	newID func() string
}

// NewBuilder construye el builder con reloj del sistema y UUID aleatorio.
func NewBuilder() *Builder {
	return &Builder{now: time.Now, newID: NuevoCodigoGeneracion}
}

// WithClock reemplaza el reloj (tests).
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build arma el DTE del tipo indicado y calcula todos los totales derivados.
func (b *Builder) Build(in BuildInput) (*Documento, error) {
	tipo := in.TipoDte
	if !tipo.Soportado() {
		return nil, fmt.Errorf("%w: %q", ErrTipoDteNoSoportado, tipo)
	}
	if in.Ambiente != mh.AmbientePruebas && in.Ambiente != mh.AmbienteProduccion {
		return nil, fmt.Errorf("%w: %q", ErrAmbienteInvalido, in.Ambiente)
	}
	if len(in.Items) == 0 {
		return nil, ErrSinItems
	}
	switch in.CondicionOperacion {
	case mh.CondicionContado, mh.CondicionCredito, mh.CondicionOtro:
	default:
		return nil, fmt.Errorf("%w: %d", ErrCondicionOperacion, in.CondicionOperacion)
	}
	receptor, err := buildReceptor(tipo, in.Receptor)
	if err != nil {
		return nil, err
	}
	if tipo.RequiereDocumentoRelacionado() && len(in.DocumentosRelacionados) == 0 {
		return nil, ErrDocumentoRelacionadoRequerido
	}

	numeroControl, err := NumeroControl(tipo, in.CodEstablecimiento, in.Correlativo)
	if err != nil {
		return nil, err
	}

	items, tot, err := buildItems(tipo, in.Items, in.DocumentosRelacionados)
	if err != nil {
		return nil, err
	}
	resumen, err := buildResumen(tipo, tot, in.CondicionOperacion, in.FormaPago)
	if err != nil {
		return nil, err
	}

	fecha := in.FechaEmision
	if fecha.IsZero() {
		fecha = b.now()
	}
	fecha = fecha.In(ZonaElSalvador)

	var relacionados []DocumentoRelacionado
	if len(in.DocumentosRelacionados) > 0 {
		relacionados = append(relacionados, in.DocumentosRelacionados...)
	}

	return &Documento{
		Identificacion: Identificacion{
			Version:          tipo.Version(),
			Ambiente:         in.Ambiente,
			TipoDte:          string(tipo),
			NumeroControl:    numeroControl,
			CodigoGeneracion: b.newID(),
			TipoModelo:       mh.ModeloPrevio,
			TipoOperacion:    mh.TransmisionNormal,
			FecEmi:           fecha.Format("2006-01-02"),
			HorEmi:           fecha.Format("15:04:05"),
			TipoMoneda:       "USD",
		},
		DocumentoRelacionado: relacionados,
		Emisor:               in.Emisor,
		Receptor:             receptor,
		CuerpoDocumento:      items,
		Resumen:              resumen,
		Extension:            in.Extension,
		Apendice:             in.Apendice,
	}, nil
}

// totales acumulados de los ítems, cada uno ya redondeado.
type totales struct {
	noSuj, exenta, gravada, descu, iva decimal.Decimal
}

func buildItems(tipo mh.TipoDte, in []ItemInput, relacionados []DocumentoRelacionado) ([]Item, totales, error) {
	var tot totales
	items := make([]Item, 0, len(in))
	for i, it := range in {
		if it.Cantidad.LessThanOrEqual(decimal.Zero) {
			return nil, tot, fmt.Errorf("%w: ítem %d: cantidad debe ser mayor que cero", ErrItemInvalido, i+1)
		}
		if it.PrecioUni.IsNegative() || it.MontoDescu.IsNegative() {
			return nil, tot, fmt.Errorf("%w: ítem %d: precio y descuento no pueden ser negativos", ErrItemInvalido, i+1)
		}
		if strings.TrimSpace(it.Descripcion) == "" {
			return nil, tot, fmt.Errorf("%w: ítem %d: descripción requerida", ErrItemInvalido, i+1)
		}
		if it.NoSujeto && it.EsGravado != nil && *it.EsGravado {
			return nil, tot, fmt.Errorf("%w: ítem %d: no puede ser gravado y no sujeto", ErrItemInvalido, i+1)
		}

		bruto := Round2(it.Cantidad.Mul(it.PrecioUni))
		descu := Round2(it.MontoDescu)
		if descu.GreaterThan(bruto) {
			return nil, tot, fmt.Errorf("%w: ítem %d: descuento mayor que la venta", ErrItemInvalido, i+1)
		}
		venta := Round2(bruto.Sub(descu))

		var noSuj, exenta, gravada decimal.Decimal
		switch {
		case it.NoSujeto:
			noSuj = venta
		case it.EsGravado != nil && !*it.EsGravado:
			exenta = venta
		default:
			gravada = venta
		}
		iva := Round2(gravada.Mul(TasaIVA))

		tot.noSuj = sumar(tot.noSuj, noSuj)
		tot.exenta = sumar(tot.exenta, exenta)
		tot.gravada = sumar(tot.gravada, gravada)
		tot.descu = sumar(tot.descu, descu)
		tot.iva = sumar(tot.iva, iva)

		item := Item{
			NumItem:      i + 1,
			TipoItem:     valorOr(it.TipoItem, mh.TipoItemBienes),
			Cantidad:     it.Cantidad.InexactFloat64(),
			Codigo:       strPtr(it.Codigo),
			UniMedida:    valorOr(it.UniMedida, mh.UnidadMedidaUnidad),
			Descripcion:  it.Descripcion,
			PrecioUni:    it.PrecioUni.InexactFloat64(),
			MontoDescu:   Monto(descu),
			VentaNoSuj:   Monto(noSuj),
			VentaExenta:  Monto(exenta),
			VentaGravada: Monto(gravada),
		}
		if gravada.IsPositive() {
			item.Tributos = []string{mh.TributoIVA}
		}
		if tipo.RequiereDocumentoRelacionado() {
			ref := it.NumeroDocumento
			if ref == "" {
				ref = relacionados[0].NumeroDocumento
			}
			item.NumeroDocumento = &ref
		} else {
			item.NumeroDocumento = strPtr(it.NumeroDocumento)
			item.Psv = ptrMonto(decimal.Zero)
			item.NoGravado = ptrMonto(decimal.Zero)
		}
		if tipo.IvaEnItem() {
			item.IvaItem = ptrMonto(iva)
		}
		items = append(items, item)
	}
	return items, tot, nil
}

func buildResumen(tipo mh.TipoDte, tot totales, condicion int, formaPago string) (Resumen, error) {
	subTotalVentas := sumar(tot.noSuj, tot.exenta, tot.gravada)
	subTotal := subTotalVentas
	montoTotal := sumar(subTotal, tot.iva)
	totalPagar := montoTotal

	letras, err := NumeroALetras(totalPagar)
	if err != nil {
		return Resumen{}, err
	}

	r := Resumen{
		TotalNoSuj:          Monto(tot.noSuj),
		TotalExenta:         Monto(tot.exenta),
		TotalGravada:        Monto(tot.gravada),
		SubTotalVentas:      Monto(subTotalVentas),
		TotalDescu:          Monto(tot.descu),
		SubTotal:            Monto(subTotal),
		MontoTotalOperacion: Monto(montoTotal),
		TotalPagar:          Monto(totalPagar),
		TotalLetras:         letras,
		CondicionOperacion:  condicion,
	}
	if tot.gravada.IsPositive() {
		r.Tributos = []Tributo{{
			Codigo:      mh.TributoIVA,
			Descripcion: mh.TributoIVADescripcion,
			Valor:       Monto(tot.iva),
		}}
	}
	if tipo.IvaEnItem() {
		r.TotalIva = ptrMonto(tot.iva)
	} else {
		r.IvaPerci1 = ptrMonto(decimal.Zero)
	}
	if condicion != mh.CondicionCredito && !tipo.RequiereDocumentoRelacionado() {
		if formaPago == "" {
			formaPago = mh.FormaPagoEfectivo
		}
		r.Pagos = []Pago{{Codigo: formaPago, MontoPago: Monto(totalPagar)}}
	}
	return r, nil
}

func buildReceptor(tipo mh.TipoDte, in *ReceptorInput) (*Receptor, error) {
	if in == nil {
		if tipo.RequiereReceptor() {
			return nil, fmt.Errorf("%w: tipo %s", ErrReceptorRequerido, tipo)
		}
		return nil, nil
	}
	if strings.TrimSpace(in.Nombre) == "" {
		return nil, fmt.Errorf("%w: nombre del receptor vacío", ErrReceptorRequerido)
	}
	r := &Receptor{
		Nrc:           strPtr(in.Nrc),
		Nombre:        in.Nombre,
		CodActividad:  strPtr(in.CodActividad),
		DescActividad: strPtr(in.DescActividad),
		Direccion:     in.Direccion,
		Telefono:      strPtr(in.Telefono),
		Correo:        strPtr(in.Correo),
	}
	if tipo.RequiereReceptor() {
		if in.Nit == "" {
			return nil, fmt.Errorf("%w: NIT del receptor vacío", ErrReceptorRequerido)
		}
		r.Nit = strPtr(in.Nit)
		r.NombreComercial = strPtr(in.NombreComercial)
		return r, nil
	}
	if in.NumDocumento != "" {
		tipoDoc := in.TipoDocumento
		if tipoDoc == "" {
			tipoDoc = mh.DocIdentificacionDUI
		}
		r.TipoDocumento = &tipoDoc
		r.NumDocumento = strPtr(in.NumDocumento)
	}
	return r, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func valorOr(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

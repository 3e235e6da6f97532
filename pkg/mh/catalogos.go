// Package mh contiene catálogos y validaciones alineados a la normativa y
// estándar técnico de Documentos Tributarios Electrónicos del Ministerio de
// Hacienda de El Salvador.
package mh

import "sort"

// =============================================================================
// CAT-001 Ambiente de destino
// =============================================================================

const (
	AmbientePruebas    = "00"
	AmbienteProduccion = "01"
)

// =============================================================================
// CAT-002 Tipo de documento
// Solo se listan los tipos que este servicio emite.
// =============================================================================

// TipoDte código de tipo de documento tributario electrónico.
type TipoDte string

const (
	TipoFactura     TipoDte = "01" // Factura (consumidor final)
	TipoCCF         TipoDte = "03" // Comprobante de Crédito Fiscal
	TipoNotaCredito TipoDte = "05" // Nota de Crédito
	TipoNotaDebito  TipoDte = "06" // Nota de Débito
)

// infoTipo datos fijos por tipo de DTE.
type infoTipo struct {
	Nombre           string
	Version          int
	RequiereReceptor bool
	RequiereRelacion bool // documentoRelacionado obligatorio
	IvaEnItem        bool // el ítem lleva ivaItem (Factura)
}

var tiposDte = map[TipoDte]infoTipo{
	TipoFactura:     {Nombre: "Factura", Version: 1, IvaEnItem: true},
	TipoCCF:         {Nombre: "Comprobante de Crédito Fiscal", Version: 3, RequiereReceptor: true},
	TipoNotaCredito: {Nombre: "Nota de Crédito", Version: 3, RequiereReceptor: true, RequiereRelacion: true},
	TipoNotaDebito:  {Nombre: "Nota de Débito", Version: 3, RequiereReceptor: true, RequiereRelacion: true},
}

// VersionAnulacion versión del esquema del evento de invalidación.
const VersionAnulacion = 2

// Soportado indica si el tipo está implementado.
func (t TipoDte) Soportado() bool {
	_, ok := tiposDte[t]
	return ok
}

// Nombre devuelve la descripción del tipo ("" si no está soportado).
func (t TipoDte) Nombre() string { return tiposDte[t].Nombre }

// Version devuelve la versión de esquema que MH exige para el tipo (0 si no está soportado).
func (t TipoDte) Version() int { return tiposDte[t].Version }

// RequiereReceptor indica si el receptor es obligatorio.
func (t TipoDte) RequiereReceptor() bool { return tiposDte[t].RequiereReceptor }

// RequiereDocumentoRelacionado indica si documentoRelacionado es obligatorio.
func (t TipoDte) RequiereDocumentoRelacionado() bool { return tiposDte[t].RequiereRelacion }

// IvaEnItem indica si el IVA se desglosa por ítem (ivaItem) en lugar de tributos del resumen.
func (t TipoDte) IvaEnItem() bool { return tiposDte[t].IvaEnItem }

// TiposSoportados devuelve los tipos implementados en orden.
func TiposSoportados() []TipoDte {
	out := make([]TipoDte, 0, len(tiposDte))
	for t := range tiposDte {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// =============================================================================
// CAT-003 Modelo de facturación / CAT-004 Tipo de transmisión
// =============================================================================

const (
	ModeloPrevio   = 1
	ModeloDiferido = 2

	TransmisionNormal       = 1
	TransmisionContingencia = 2
)

// =============================================================================
// CAT-011 Tipo de ítem / CAT-014 Unidad de medida
// =============================================================================

const (
	TipoItemBienes    = 1
	TipoItemServicios = 2
	TipoItemAmbos     = 3

	UnidadMedidaUnidad = 59
	UnidadMedidaOtra   = 99
)

// =============================================================================
// CAT-015 Tributos
// =============================================================================

const (
	TributoIVA            = "20"
	TributoIVADescripcion = "Impuesto al Valor Agregado 13%"
)

// =============================================================================
// CAT-016 Condición de la operación
// =============================================================================

const (
	CondicionContado = 1
	CondicionCredito = 2
	CondicionOtro    = 3
)

// =============================================================================
// CAT-017 Forma de pago
// =============================================================================

const (
	FormaPagoEfectivo       = "01" // Billetes y monedas
	FormaPagoTarjetaDebito  = "02"
	FormaPagoTarjetaCredito = "03"
	FormaPagoCheque         = "04"
	FormaPagoTransferencia  = "05"
	FormaPagoOtros          = "99"
)

// =============================================================================
// CAT-007 Tipo de generación del documento relacionado
// =============================================================================

const (
	GeneracionFisico      = 1
	GeneracionElectronico = 2
)

// =============================================================================
// CAT-022 Tipo de documento de identificación del receptor
// =============================================================================

const (
	DocIdentificacionNIT       = "36"
	DocIdentificacionDUI       = "13"
	DocIdentificacionPasaporte = "03"
	DocIdentificacionCarnet    = "02"
	DocIdentificacionOtro      = "37"
)

// =============================================================================
// CAT-024 Tipo de invalidación
// =============================================================================

const (
	AnulacionErrorInformacion = 1 // Error en la información del DTE; requiere documento de reemplazo
	AnulacionRescindir        = 2 // Rescindir de la operación
	AnulacionOtro             = 3 // Otro; requiere documento de reemplazo
)

// AnulacionRequiereReemplazo indica si el tipo de invalidación exige codigoGeneracionR.
func AnulacionRequiereReemplazo(tipo int) bool {
	return tipo == AnulacionErrorInformacion || tipo == AnulacionOtro
}

// =============================================================================
// CAT-012 Departamentos
// =============================================================================

// Departamentos código -> nombre.
var Departamentos = map[string]string{
	"01": "Ahuachapán",
	"02": "Santa Ana",
	"03": "Sonsonate",
	"04": "Chalatenango",
	"05": "La Libertad",
	"06": "San Salvador",
	"07": "Cuscatlán",
	"08": "La Paz",
	"09": "Cabañas",
	"10": "San Vicente",
	"11": "Usulután",
	"12": "San Miguel",
	"13": "Morazán",
	"14": "La Unión",
}

package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// EstadoTransmision estado del ciclo de vida de un DTE frente a MH.
type EstadoTransmision string

const (
	EstadoCreado    EstadoTransmision = "CREADO"    // Documento armado y validado, correlativo reservado
	EstadoFirmado   EstadoTransmision = "FIRMADO"   // JWS generado, pendiente de envío
	EstadoProcesado EstadoTransmision = "PROCESADO" // Recibido por MH con sello
	EstadoRechazado EstadoTransmision = "RECHAZADO" // MH rechazó; se puede reintentar
	EstadoAnulado   EstadoTransmision = "ANULADO"   // Invalidado ante MH (terminal)
)

// Transmitible indica si desde este estado se puede enviar a MH.
func (e EstadoTransmision) Transmitible() bool {
	return e == EstadoFirmado || e == EstadoRechazado
}

// Anulable indica si desde este estado se puede invalidar.
func (e EstadoTransmision) Anulable() bool {
	return e == EstadoProcesado
}

// Transmision registro operativo de un DTE. Nunca se elimina: solo cambia de estado.
type Transmision struct {
	ID               string
	TenantID         string
	TipoDte          string
	Version          int
	Ambiente         string
	CodEstable       string
	Correlativo      int64
	NumeroControl    string
	CodigoGeneracion string
	Estado           EstadoTransmision
	Intentos         int
	SelloRecibido    *string
	FhProcesamiento  *time.Time
	CodigoMsg        string
	DescripcionMsg   string
	Observaciones    []string
	MontoTotal       decimal.Decimal
	Documento        json.RawMessage // DTE sin firmar
	DocumentoFirmado string          // JWS compacto
	UltimoError      string

	// Invalidación
	AnulacionCodigo  *string // codigoGeneracion del evento
	AnulacionSello   *string
	AnulacionFirmada string
	FechaAnulacion   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Package hacienda modela el intercambio con la API de recepción del Ministerio de Hacienda.
// El resultado de cada llamada es una unión cerrada: Aceptado, Rechazado o ErrorRed.
package hacienda

import (
	"fmt"
	"strings"
	"time"
)

// Credenciales usuario (NIT del emisor) y contraseña de la API de MH.
type Credenciales struct {
	Nit      string `json:"nit"`
	Password string `json:"password"`
}

// Respuesta resultado de una llamada a MH. Solo Aceptado, Rechazado y ErrorRed la implementan.
type Respuesta interface {
	respuesta()
}

// Aceptado MH recibió y procesó el documento.
type Aceptado struct {
	Estado          string    `json:"estado"`
	SelloRecibido   string    `json:"selloRecibido"`
	FhProcesamiento time.Time `json:"fhProcesamiento"`
	CodigoMsg       string    `json:"codigoMsg"`
	DescripcionMsg  string    `json:"descripcionMsg"`
	Observaciones   []string  `json:"observaciones"`
}

// Rechazado MH respondió y rechazó el documento; los mensajes van tal cual los devuelve MH.
type Rechazado struct {
	Estado          string     `json:"estado"`
	CodigoMsg       string     `json:"codigoMsg"`
	DescripcionMsg  string     `json:"descripcionMsg"`
	Observaciones   []string   `json:"observaciones"`
	FhProcesamiento *time.Time `json:"fhProcesamiento,omitempty"`
}

// ErrorRed no hubo respuesta utilizable de MH (red, timeout, autenticación, cuerpo ilegible).
type ErrorRed struct {
	Err error
}

func (Aceptado) respuesta()  {}
func (Rechazado) respuesta() {}
func (ErrorRed) respuesta()  {}

// Mensaje texto de rechazo: descripción de MH seguida de sus observaciones.
func (r Rechazado) Mensaje() string {
	partes := make([]string, 0, len(r.Observaciones)+1)
	if r.DescripcionMsg != "" {
		partes = append(partes, r.DescripcionMsg)
	}
	partes = append(partes, r.Observaciones...)
	if len(partes) == 0 {
		return "documento rechazado por MH"
	}
	return strings.Join(partes, "; ")
}

func (e ErrorRed) Error() string {
	if e.Err == nil {
		return "error de comunicación con MH"
	}
	return fmt.Sprintf("error de comunicación con MH: %v", e.Err)
}

func (e ErrorRed) Unwrap() error { return e.Err }

// Envio solicitud de recepción de un DTE firmado.
type Envio struct {
	Ambiente         string `json:"ambiente"`
	IdEnvio          int    `json:"idEnvio"`
	Version          int    `json:"version"`
	TipoDte          string `json:"tipoDte"`
	Documento        string `json:"documento"`
	CodigoGeneracion string `json:"codigoGeneracion"`
}

// EnvioAnulacion solicitud de invalidación firmada.
type EnvioAnulacion struct {
	Ambiente  string `json:"ambiente"`
	IdEnvio   int    `json:"idEnvio"`
	Version   int    `json:"version"`
	Documento string `json:"documento"`
}

// Consulta consulta del estado de un DTE por código de generación.
type Consulta struct {
	NitEmisor        string `json:"nitEmisor"`
	TipoDte          string `json:"tdte"`
	CodigoGeneracion string `json:"codigoGeneracion"`
}

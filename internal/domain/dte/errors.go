package dte

import "errors"

// Errores de construcción. Son fatales: el builder no devuelve documentos parciales.
var (
	ErrTipoDteNoSoportado            = errors.New("tipo de DTE no soportado")
	ErrSinItems                      = errors.New("el documento debe tener al menos un ítem")
	ErrReceptorRequerido             = errors.New("el tipo de DTE requiere receptor")
	ErrDocumentoRelacionadoRequerido = errors.New("el tipo de DTE requiere documento relacionado")
	ErrCodigoEstablecimiento         = errors.New("código de establecimiento inválido")
	ErrCorrelativo                   = errors.New("correlativo fuera de rango")
	ErrItemInvalido                  = errors.New("ítem inválido")
	ErrAmbienteInvalido              = errors.New("ambiente inválido")
	ErrCondicionOperacion            = errors.New("condición de operación inválida")
	ErrMotivoAnulacion               = errors.New("motivo de anulación inválido")
)

package dte

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/dte-api/internal/domain"
	"github.com/jhoicas/dte-api/internal/domain/dte/schema"
)

var (
	// ErrTransmision MH no respondió (red, timeout o 5xx). El estado no cambia.
	ErrTransmision = errors.New("error de transmisión con MH")
	// ErrTransicionInvalida la operación no es legal desde el estado actual.
	ErrTransicionInvalida = errors.New("transición de estado inválida")
	// ErrTransmisionEnCurso otra operación sobre el mismo registro está en vuelo.
	ErrTransmisionEnCurso = errors.New("transmisión en curso para el registro")
	// ErrAnulacionRechazada MH rechazó el evento de invalidación.
	ErrAnulacionRechazada = errors.New("MH rechazó la invalidación")
)

// ValidacionError el documento armado no pasó el esquema de MH.
type ValidacionError struct {
	Errores []schema.FieldError
}

func (e *ValidacionError) Error() string {
	partes := make([]string, 0, len(e.Errores))
	for _, fe := range e.Errores {
		partes = append(partes, fe.Path+": "+fe.Message)
	}
	return fmt.Sprintf("documento inválido (%d errores): %s", len(e.Errores), strings.Join(partes, "; "))
}

func (e *ValidacionError) Unwrap() error { return domain.ErrInvalidInput }

package dte

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/dte-api/pkg/mh"
)

// MaxCorrelativo mayor correlativo representable en 15 dígitos.
const MaxCorrelativo int64 = 999_999_999_999_999

// ZonaElSalvador hora local de El Salvador (UTC-6, sin horario de verano).
var ZonaElSalvador = time.FixedZone("CST", -6*60*60)

// NuevoCodigoGeneracion genera un UUID v4 en mayúsculas.
func NuevoCodigoGeneracion() string {
	return strings.ToUpper(uuid.NewString())
}

// NumeroControl compone DTE-<tipo>-<establecimiento>-<correlativo>.
// El código de establecimiento (codEstableMH + codPuntoVentaMH) se rellena con ceros a la
// izquierda hasta 8 caracteres; el correlativo hasta 15 dígitos.
func NumeroControl(tipo mh.TipoDte, codEstable string, correlativo int64) (string, error) {
	cod := strings.ToUpper(strings.TrimSpace(codEstable))
	if cod == "" || len(cod) > 8 {
		return "", fmt.Errorf("%w: %q", ErrCodigoEstablecimiento, codEstable)
	}
	cod = strings.Repeat("0", 8-len(cod)) + cod
	if !mh.ValidarNumeroControl("DTE-"+string(tipo)+"-"+cod+"-000000000000001", string(tipo)) {
		return "", fmt.Errorf("%w: %q", ErrCodigoEstablecimiento, codEstable)
	}
	if correlativo < 1 || correlativo > MaxCorrelativo {
		return "", fmt.Errorf("%w: %d", ErrCorrelativo, correlativo)
	}
	return fmt.Sprintf("DTE-%s-%s-%015d", tipo, cod, correlativo), nil
}

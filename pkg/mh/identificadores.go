package mh

import (
	"fmt"
	"regexp"
	"unicode"
)

// Patrones oficiales (JSON Schema de MH). Se comparten con el validador de documentos
// para que builder, validador y pre-chequeos usen exactamente la misma expresión.
const (
	PatronCodigoGeneracion = `^[A-F0-9]{8}-[A-F0-9]{4}-[A-F0-9]{4}-[A-F0-9]{4}-[A-F0-9]{12}$`
	PatronNit              = `^([0-9]{14}|[0-9]{9})$`
	PatronNrc              = `^[0-9]{1,8}$`
	PatronDui              = `^[0-9]{8}-[0-9]{1}$`
	PatronDepartamento     = `^(0[1-9]|1[0-4])$`
	PatronMunicipio        = `^[0-9]{2}$`
	PatronCodEstable       = `^[A-Z0-9]{8}$`
)

var (
	reCodigoGeneracion = regexp.MustCompile(PatronCodigoGeneracion)
	reNit              = regexp.MustCompile(PatronNit)
	reNrc              = regexp.MustCompile(PatronNrc)
	reDui              = regexp.MustCompile(PatronDui)
	reDepartamento     = regexp.MustCompile(PatronDepartamento)
	reTipoDte          = regexp.MustCompile(`^[0-9]{2}$`)
	reNumeroControl    = regexp.MustCompile(`^DTE-([0-9]{2})-[A-Z0-9]{8}-[0-9]{15}$`)
)

// PatronNumeroControl devuelve el patrón del número de control anclado al tipo de DTE.
// Formato: DTE-<tipo>-<establecimiento 8>-<correlativo 15>.
func PatronNumeroControl(tipo string) string {
	return `^DTE-` + regexp.QuoteMeta(tipo) + `-[A-Z0-9]{8}-[0-9]{15}$`
}

// ValidarNumeroControl indica si nc es un número de control válido para el tipo indicado.
// Un número de control de otro tipo es inválido aunque el formato general coincida.
func ValidarNumeroControl(nc, tipo string) bool {
	if !reTipoDte.MatchString(tipo) {
		return false
	}
	m := reNumeroControl.FindStringSubmatch(nc)
	return m != nil && m[1] == tipo
}

// ValidarCodigoGeneracion indica si s es un UUID canónico en mayúsculas.
func ValidarCodigoGeneracion(s string) bool {
	return reCodigoGeneracion.MatchString(s)
}

// ValidarDepartamento indica si el código pertenece al CAT-012.
func ValidarDepartamento(cod string) bool {
	return reDepartamento.MatchString(cod)
}

// ValidarNrc valida el formato del Número de Registro de Contribuyente (1 a 8 dígitos, sin guiones).
func ValidarNrc(nrc string) bool {
	return reNrc.MatchString(nrc)
}

// ValidarNit valida el formato del NIT: 14 dígitos (NIT tradicional) o 9 dígitos
// (NIT homologado al DUI). En el segundo caso se verifica el dígito del DUI.
func ValidarNit(nit string) error {
	if !reNit.MatchString(nit) {
		return fmt.Errorf("mh: NIT debe tener 14 o 9 dígitos sin guiones, se recibió %q", nit)
	}
	if len(nit) == 9 {
		return ValidarDui(nit[:8] + "-" + nit[8:])
	}
	return nil
}

// ValidarDui valida el formato "00000000-0" y el dígito verificador del DUI
// (pesos 9..2 sobre los 8 primeros dígitos, módulo 10).
func ValidarDui(dui string) error {
	if !reDui.MatchString(dui) {
		return fmt.Errorf("mh: DUI debe tener el formato 00000000-0, se recibió %q", dui)
	}
	digits := extractDigits(dui)
	expected, err := ComputeDuiVerificationDigit(string(digits[:8]))
	if err != nil {
		return err
	}
	if digits[8] != expected {
		return fmt.Errorf("mh: dígito verificador del DUI inválido: esperado %c, recibido %c", expected, digits[8])
	}
	return nil
}

// ComputeDuiVerificationDigit calcula el dígito verificador para los 8 dígitos base del DUI.
func ComputeDuiVerificationDigit(base string) (byte, error) {
	digits := extractDigits(base)
	if len(digits) != 8 {
		return 0, fmt.Errorf("mh: se requieren 8 dígitos para calcular el verificador del DUI, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits {
		sum += int(d-'0') * (9 - i)
	}
	dv := (10 - sum%10) % 10
	return byte('0' + dv), nil
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}

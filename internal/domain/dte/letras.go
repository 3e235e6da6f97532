package dte

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LimiteLetras valor máximo (exclusivo) que NumeroALetras sabe expresar.
var LimiteLetras = decimal.New(1, 12)

var (
	unidades = [...]string{"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE"}

	especiales = [...]string{"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE",
		"DIECISEIS", "DIECISIETE", "DIECIOCHO", "DIECINUEVE"}

	decenas = [...]string{"", "", "VEINTE", "TREINTA", "CUARENTA", "CINCUENTA",
		"SESENTA", "SETENTA", "OCHENTA", "NOVENTA"}

	centenas = [...]string{"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS",
		"SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS"}
)

// NumeroALetras expresa un monto en dólares como lo exige totalLetras:
// parte entera en palabras (español, mayúsculas, sin tildes) y centavos como "NN/100 USD".
//
//	22.60   -> "VEINTIDOS 60/100 USD"
//	100     -> "CIEN 00/100 USD"
//	1000000 -> "UN MILLON 00/100 USD"
//
// Los montos negativos se expresan por su valor absoluto. Devuelve error si el monto
// alcanza LimiteLetras.
func NumeroALetras(monto decimal.Decimal) (string, error) {
	m := Round2(monto.Abs())
	if m.GreaterThanOrEqual(LimiteLetras) {
		return "", fmt.Errorf("dte: monto %s fuera del rango expresable en letras", m.String())
	}
	entero := m.Truncate(0)
	centavos := m.Sub(entero).Mul(decimal.NewFromInt(100)).IntPart()
	return fmt.Sprintf("%s %02d/100 USD", EnteroALetras(entero.IntPart()), centavos), nil
}

// EnteroALetras expresa un entero no negativo menor que 10^12 en palabras.
func EnteroALetras(n int64) string {
	if n <= 0 {
		return "CERO"
	}
	return strings.TrimSpace(enLetras(n, false))
}

// enLetras convierte n (> 0). apocope indica que el grupo precede a MIL o MILLON(ES),
// en cuyo caso UNO se abrevia a UN (VEINTIUN MIL, TREINTA Y UN MILLONES).
func enLetras(n int64, apocope bool) string {
	switch {
	case n < 1_000:
		return cientos(int(n), apocope)
	case n < 1_000_000:
		miles, resto := n/1_000, n%1_000
		s := "MIL"
		if miles > 1 {
			s = cientos(int(miles), true) + " MIL"
		}
		if resto > 0 {
			s += " " + cientos(int(resto), apocope)
		}
		return s
	default:
		millones, resto := n/1_000_000, n%1_000_000
		s := "UN MILLON"
		if millones > 1 {
			s = enLetras(millones, true) + " MILLONES"
		}
		if resto > 0 {
			s += " " + enLetras(resto, apocope)
		}
		return s
	}
}

func cientos(n int, apocope bool) string {
	if n == 100 {
		return "CIEN"
	}
	c, r := n/100, n%100
	var partes []string
	if c > 0 {
		partes = append(partes, centenas[c])
	}
	if r > 0 {
		partes = append(partes, dieces(r, apocope))
	}
	return strings.Join(partes, " ")
}

func dieces(n int, apocope bool) string {
	switch {
	case n < 10:
		return unidad(n, apocope)
	case n < 20:
		return especiales[n-10]
	case n == 20:
		return "VEINTE"
	case n < 30:
		return "VEINTI" + unidad(n-20, apocope)
	}
	d, u := n/10, n%10
	if u == 0 {
		return decenas[d]
	}
	return decenas[d] + " Y " + unidad(u, apocope)
}

func unidad(n int, apocope bool) string {
	if n == 1 && apocope {
		return "UN"
	}
	return unidades[n]
}

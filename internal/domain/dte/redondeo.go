package dte

import "github.com/shopspring/decimal"

// TasaIVA tasa general del IVA en El Salvador.
var TasaIVA = decimal.RequireFromString("0.13")

// Round2 redondea a 2 decimales alejándose de cero en el punto medio (2.345 -> 2.35, -2.345 -> -2.35).
// MH aplica el redondeo en cada paso derivado, no solo al total.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Monto convierte un decimal ya redondeado al float64 que viaja en el JSON del DTE.
func Monto(d decimal.Decimal) float64 {
	return Round2(d).InexactFloat64()
}

// ptrMonto devuelve un puntero al monto (campos opcionales según tipo de DTE).
func ptrMonto(d decimal.Decimal) *float64 {
	v := Monto(d)
	return &v
}

func sumar(vals ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range vals {
		total = Round2(total.Add(v))
	}
	return total
}

package schema

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/dte-api/internal/domain/dte"
	"github.com/jhoicas/dte-api/pkg/mh"
)

// verificarTotales recalcula los montos derivados con el mismo redondeo por paso que usa
// el builder y reporta cada campo que no coincide. Si el documento no decodifica a la
// estructura tipada (tipos de dato incorrectos) no agrega nada: el esquema ya lo reportó.
func verificarTotales(tipo mh.TipoDte, raw []byte) []FieldError {
	var doc dte.Documento
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	var errs []FieldError
	fallo := func(path string, esperado, actual decimal.Decimal) {
		errs = append(errs, FieldError{
			Path:    path,
			Message: fmt.Sprintf("valor %s no coincide con el calculado %s", actual.StringFixed(2), esperado.StringFixed(2)),
		})
	}
	dec := func(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

	var noSuj, exenta, gravada, iva decimal.Decimal
	for i, it := range doc.CuerpoDocumento {
		base := fmt.Sprintf("cuerpoDocumento[%d]", i)
		if it.NumItem != i+1 {
			errs = append(errs, FieldError{Path: base + ".numItem", Message: fmt.Sprintf("se esperaba %d", i+1)})
		}
		venta := dte.Round2(dte.Round2(dec(it.Cantidad).Mul(dec(it.PrecioUni))).Sub(dec(it.MontoDescu)))
		declarada := dte.Round2(dec(it.VentaNoSuj).Add(dec(it.VentaExenta)).Add(dec(it.VentaGravada)))
		if !venta.Equal(declarada) {
			fallo(base+".ventaGravada", venta, declarada)
		}
		ivaItem := dte.Round2(dec(it.VentaGravada).Mul(dte.TasaIVA))
		if tipo.IvaEnItem() && it.IvaItem != nil && !ivaItem.Equal(dec(*it.IvaItem)) {
			fallo(base+".ivaItem", ivaItem, dec(*it.IvaItem))
		}
		noSuj = sumar(noSuj, dec(it.VentaNoSuj))
		exenta = sumar(exenta, dec(it.VentaExenta))
		gravada = sumar(gravada, dec(it.VentaGravada))
		iva = sumar(iva, ivaItem)
	}

	r := doc.Resumen
	comparar := func(campo string, esperado decimal.Decimal, actual float64) {
		if !esperado.Equal(dec(actual)) {
			fallo("resumen."+campo, esperado, dec(actual))
		}
	}
	comparar("totalNoSuj", noSuj, r.TotalNoSuj)
	comparar("totalExenta", exenta, r.TotalExenta)
	comparar("totalGravada", gravada, r.TotalGravada)

	subTotalVentas := sumar(dec(r.TotalNoSuj), dec(r.TotalExenta), dec(r.TotalGravada))
	comparar("subTotalVentas", subTotalVentas, r.SubTotalVentas)

	subTotal := dte.Round2(dec(r.SubTotalVentas).Sub(dec(r.DescuNoSuj)).Sub(dec(r.DescuExenta)).Sub(dec(r.DescuGravada)))
	comparar("subTotal", subTotal, r.SubTotal)

	tributos := decimal.Zero
	for _, t := range r.Tributos {
		if t.Codigo == mh.TributoIVA {
			comparar("tributos.valor", iva, t.Valor)
		}
		tributos = sumar(tributos, dec(t.Valor))
	}

	var montoTotal decimal.Decimal
	if tipo.IvaEnItem() {
		if r.TotalIva != nil {
			comparar("totalIva", iva, *r.TotalIva)
			montoTotal = sumar(dec(r.SubTotal), dec(*r.TotalIva))
		} else {
			montoTotal = sumar(dec(r.SubTotal), iva)
		}
	} else {
		montoTotal = sumar(dec(r.SubTotal), tributos)
		if r.IvaPerci1 != nil {
			montoTotal = sumar(montoTotal, dec(*r.IvaPerci1))
		}
	}
	comparar("montoTotalOperacion", montoTotal, r.MontoTotalOperacion)

	totalPagar := dte.Round2(dec(r.MontoTotalOperacion).Sub(dec(r.IvaRete1)).Sub(dec(r.ReteRenta)).Add(dec(r.TotalNoGravado)))
	comparar("totalPagar", totalPagar, r.TotalPagar)

	if letras, err := dte.NumeroALetras(dec(r.TotalPagar)); err == nil && letras != r.TotalLetras {
		errs = append(errs, FieldError{Path: "resumen.totalLetras", Message: fmt.Sprintf("se esperaba %q", letras)})
	}

	if len(r.Pagos) > 0 {
		pagado := decimal.Zero
		for _, p := range r.Pagos {
			pagado = sumar(pagado, dec(p.MontoPago))
		}
		comparar("pagos", dec(r.TotalPagar), dte.Monto(pagado))
	}
	return errs
}

func sumar(vals ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range vals {
		total = dte.Round2(total.Add(v))
	}
	return total
}

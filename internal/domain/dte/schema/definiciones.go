package schema

import (
	"fmt"

	"github.com/jhoicas/dte-api/pkg/mh"
)

// Esquemas JSON por tipo de DTE, armados como mapas (se serializan y compilan una sola vez).
// La identificación base se extiende por tipo: el patrón del número de control y la
// versión quedan fijados al tipo que se valida.

type m = map[string]any

const (
	patronHora      = `^(0[0-9]|1[0-9]|2[0-3]):[0-5][0-9]:[0-5][0-9]$`
	patronSello     = `^[A-Z0-9]{40}$`
	patronActividad = `^[0-9]{2,6}$`
	limiteMonto     = 100000000000 // 10^11, exclusivo
)

// municipiosPorDepartamento cantidad de municipios de cada departamento (CAT-013).
var municipiosPorDepartamento = map[string]int{
	"01": 12, "02": 13, "03": 16, "04": 33, "05": 22, "06": 19, "07": 16,
	"08": 22, "09": 9, "10": 13, "11": 23, "12": 20, "13": 26, "14": 18,
}

// ── primitivas ────────────────────────────────────────────────────────────────

func objeto(props m, required ...string) m {
	return m{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func cadena(min, max int) m {
	return m{"type": "string", "minLength": min, "maxLength": max}
}

func patron(p string) m {
	return m{"type": "string", "pattern": p}
}

func anulable(s m) m {
	out := m{}
	for k, v := range s {
		out[k] = v
	}
	switch t := s["type"].(type) {
	case string:
		out["type"] = []string{t, "null"}
	default:
		return m{"anyOf": []m{{"type": "null"}, s}}
	}
	if enum, ok := s["enum"].([]any); ok {
		out["enum"] = append(append([]any{}, enum...), nil)
	}
	return out
}

// monto valor monetario no negativo con 2 decimales y menor a 10^11.
func monto() m {
	return m{"type": "number", "minimum": 0, "exclusiveMaximum": limiteMonto, "multipleOf": 0.01}
}

// montoPreciso cantidades y precios unitarios (hasta 8 decimales).
func montoPreciso() m {
	return m{"type": "number", "minimum": 0, "exclusiveMaximum": limiteMonto, "multipleOf": 0.00000001}
}

func enumCadenas(vals ...string) m {
	e := make([]any, len(vals))
	for i, v := range vals {
		e[i] = v
	}
	return m{"type": "string", "enum": e}
}

func enumEnteros(vals ...int) m {
	e := make([]any, len(vals))
	for i, v := range vals {
		e[i] = v
	}
	return m{"type": "integer", "enum": e}
}

func keys(props m) []string {
	out := make([]string, 0, len(props))
	for k := range props {
		out = append(out, k)
	}
	return out
}

// ── bloques compartidos ───────────────────────────────────────────────────────

func direccion() m {
	s := objeto(m{
		"departamento": patron(mh.PatronDepartamento),
		"municipio":    patron(mh.PatronMunicipio),
		"complemento":  cadena(1, 200),
	}, "departamento", "municipio", "complemento")

	var reglas []m
	for dep, n := range municipiosPorDepartamento {
		validos := make([]string, n)
		for i := range validos {
			validos[i] = fmt.Sprintf("%02d", i+1)
		}
		reglas = append(reglas, m{
			"if":   m{"properties": m{"departamento": m{"const": dep}}},
			"then": m{"properties": m{"municipio": enumCadenas(validos...)}},
		})
	}
	s["allOf"] = reglas
	return s
}

func identificacion(tipo mh.TipoDte) m {
	props := m{
		"version":          m{"const": tipo.Version()},
		"ambiente":         enumCadenas(mh.AmbientePruebas, mh.AmbienteProduccion),
		"tipoDte":          m{"const": string(tipo)},
		"numeroControl":    m{"type": "string", "minLength": 31, "maxLength": 31, "pattern": mh.PatronNumeroControl(string(tipo))},
		"codigoGeneracion": m{"type": "string", "minLength": 36, "maxLength": 36, "pattern": mh.PatronCodigoGeneracion},
		"tipoModelo":       enumEnteros(mh.ModeloPrevio, mh.ModeloDiferido),
		"tipoOperacion":    enumEnteros(mh.TransmisionNormal, mh.TransmisionContingencia),
		"tipoContingencia": anulable(enumEnteros(1, 2, 3, 4, 5)),
		"motivoContin":     anulable(cadena(5, 150)),
		"fecEmi":           m{"type": "string", "format": "date"},
		"horEmi":           patron(patronHora),
		"tipoMoneda":       m{"const": "USD"},
	}
	s := objeto(props, keys(props)...)
	s["allOf"] = []m{
		{
			"if":   m{"properties": m{"tipoOperacion": m{"const": mh.TransmisionNormal}}},
			"then": m{"properties": m{"tipoContingencia": m{"type": "null"}, "motivoContin": m{"type": "null"}}},
		},
		{
			"if":   m{"properties": m{"tipoOperacion": m{"const": mh.TransmisionContingencia}}},
			"then": m{"properties": m{"tipoContingencia": m{"type": "integer"}}},
		},
	}
	return s
}

func documentoRelacionado(tipo mh.TipoDte) m {
	item := objeto(m{
		"tipoDocumento":   patron(`^[0-9]{2}$`),
		"tipoGeneracion":  enumEnteros(mh.GeneracionFisico, mh.GeneracionElectronico),
		"numeroDocumento": cadena(1, 36),
		"fechaEmision":    m{"type": "string", "format": "date"},
	}, "tipoDocumento", "tipoGeneracion", "numeroDocumento", "fechaEmision")
	item["allOf"] = []m{{
		"if":   m{"properties": m{"tipoGeneracion": m{"const": mh.GeneracionElectronico}}},
		"then": m{"properties": m{"numeroDocumento": patron(mh.PatronCodigoGeneracion)}},
	}}

	arr := m{"type": "array", "minItems": 1, "maxItems": 50, "items": item}
	if tipo.RequiereDocumentoRelacionado() {
		item["properties"].(m)["tipoDocumento"] = enumCadenas(string(mh.TipoCCF), "07")
		return arr
	}
	return anulable(arr)
}

func emisor() m {
	props := m{
		"nit":                 patron(mh.PatronNit),
		"nrc":                 patron(mh.PatronNrc),
		"nombre":              cadena(1, 250),
		"codActividad":        patron(patronActividad),
		"descActividad":       cadena(1, 150),
		"nombreComercial":     anulable(cadena(1, 150)),
		"tipoEstablecimiento": enumCadenas("01", "02", "04", "07", "20"),
		"direccion":           direccion(),
		"telefono":            cadena(8, 30),
		"correo":              m{"type": "string", "format": "email", "maxLength": 100},
		"codEstableMH":        anulable(cadena(4, 4)),
		"codEstable":          anulable(cadena(1, 10)),
		"codPuntoVentaMH":     anulable(cadena(4, 4)),
		"codPuntoVenta":       anulable(cadena(1, 15)),
	}
	return objeto(props, keys(props)...)
}

func receptor(tipo mh.TipoDte) m {
	if tipo.RequiereReceptor() {
		props := m{
			"nit":             patron(mh.PatronNit),
			"nrc":             patron(mh.PatronNrc),
			"nombre":          cadena(1, 250),
			"codActividad":    patron(patronActividad),
			"descActividad":   cadena(1, 150),
			"nombreComercial": anulable(cadena(1, 150)),
			"direccion":       direccion(),
			"telefono":        cadena(8, 30),
			"correo":          m{"type": "string", "format": "email", "maxLength": 100},
		}
		return objeto(props, "nit", "nrc", "nombre", "codActividad", "descActividad", "direccion", "telefono", "correo")
	}

	props := m{
		"tipoDocumento": anulable(enumCadenas(mh.DocIdentificacionNIT, mh.DocIdentificacionDUI,
			mh.DocIdentificacionPasaporte, mh.DocIdentificacionCarnet, mh.DocIdentificacionOtro)),
		"numDocumento":  anulable(cadena(3, 20)),
		"nrc":           anulable(patron(mh.PatronNrc)),
		"nombre":        cadena(1, 250),
		"codActividad":  anulable(patron(patronActividad)),
		"descActividad": anulable(cadena(1, 150)),
		"direccion":     anulable(direccion()),
		"telefono":      anulable(cadena(8, 30)),
		"correo":        anulable(m{"type": "string", "format": "email", "maxLength": 100}),
	}
	s := objeto(props, "nrc", "nombre", "codActividad", "descActividad", "direccion", "telefono", "correo")
	s["dependentRequired"] = m{"numDocumento": []string{"tipoDocumento"}, "tipoDocumento": []string{"numDocumento"}}
	s["allOf"] = []m{
		{
			"if":   m{"properties": m{"tipoDocumento": m{"const": mh.DocIdentificacionDUI}}, "required": []string{"tipoDocumento"}},
			"then": m{"properties": m{"numDocumento": patron(mh.PatronDui)}},
		},
		{
			"if":   m{"properties": m{"tipoDocumento": m{"const": mh.DocIdentificacionNIT}}, "required": []string{"tipoDocumento"}},
			"then": m{"properties": m{"numDocumento": patron(mh.PatronNit)}},
		},
	}
	return anulable(s)
}

func item(tipo mh.TipoDte) m {
	props := m{
		"numItem":         m{"type": "integer", "minimum": 1, "maximum": 2000},
		"tipoItem":        enumEnteros(1, 2, 3, 4),
		"numeroDocumento": anulable(cadena(1, 36)),
		"cantidad":        m{"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": limiteMonto, "multipleOf": 0.00000001},
		"codigo":          anulable(cadena(1, 25)),
		"codTributo":      anulable(cadena(2, 2)),
		"uniMedida":       m{"type": "integer", "minimum": 1, "maximum": 99},
		"descripcion":     cadena(1, 1000),
		"precioUni":       montoPreciso(),
		"montoDescu":      monto(),
		"ventaNoSuj":      monto(),
		"ventaExenta":     monto(),
		"ventaGravada":    monto(),
		"tributos":        anulable(m{"type": "array", "minItems": 1, "uniqueItems": true, "items": patron(`^[0-9A-Z]{2}$`)}),
	}
	if tipo.RequiereDocumentoRelacionado() {
		props["numeroDocumento"] = cadena(1, 36)
	} else {
		props["psv"] = monto()
		props["noGravado"] = m{"type": "number", "exclusiveMinimum": -limiteMonto, "exclusiveMaximum": limiteMonto, "multipleOf": 0.01}
	}
	if tipo.IvaEnItem() {
		props["ivaItem"] = monto()
	}
	s := objeto(props, keys(props)...)
	s["allOf"] = []m{{
		"if":   m{"properties": m{"ventaGravada": m{"exclusiveMinimum": 0}}},
		"then": m{"properties": m{"tributos": m{"type": "array"}}},
		"else": m{"properties": m{"tributos": m{"type": "null"}}},
	}}
	return s
}

func pago() m {
	return objeto(m{
		"codigo":     patron(`^(0[1-9]|1[0-4]|99)$`),
		"montoPago":  monto(),
		"referencia": anulable(cadena(0, 50)),
		"plazo":      anulable(enumCadenas("01", "02", "03")),
		"periodo":    anulable(m{"type": "integer", "minimum": 1}),
	}, "codigo", "montoPago", "referencia", "plazo", "periodo")
}

func resumen(tipo mh.TipoDte) m {
	tributo := objeto(m{
		"codigo":      patron(`^[0-9A-Z]{2}$`),
		"descripcion": cadena(2, 150),
		"valor":       monto(),
	}, "codigo", "descripcion", "valor")

	props := m{
		"totalNoSuj":          monto(),
		"totalExenta":         monto(),
		"totalGravada":        monto(),
		"subTotalVentas":      monto(),
		"descuNoSuj":          monto(),
		"descuExenta":         monto(),
		"descuGravada":        monto(),
		"porcentajeDescuento": m{"type": "number", "minimum": 0, "maximum": 100, "multipleOf": 0.01},
		"totalDescu":          monto(),
		"tributos":            anulable(m{"type": "array", "minItems": 1, "items": tributo}),
		"subTotal":            monto(),
		"ivaRete1":            monto(),
		"reteRenta":           monto(),
		"montoTotalOperacion": monto(),
		"totalNoGravado":      m{"type": "number", "exclusiveMinimum": -limiteMonto, "exclusiveMaximum": limiteMonto, "multipleOf": 0.01},
		"totalPagar":          monto(),
		"totalLetras":         cadena(1, 200),
		"saldoFavor":          m{"type": "number", "maximum": 0, "multipleOf": 0.01},
		"condicionOperacion":  enumEnteros(mh.CondicionContado, mh.CondicionCredito, mh.CondicionOtro),
		"pagos":               anulable(m{"type": "array", "minItems": 1, "items": pago()}),
		"numPagoElectronico":  anulable(cadena(0, 100)),
	}
	if tipo.IvaEnItem() {
		props["totalIva"] = monto()
	} else {
		props["ivaPerci1"] = monto()
	}
	if tipo.RequiereDocumentoRelacionado() {
		props["pagos"] = m{"type": "null"}
	}
	s := objeto(props, keys(props)...)
	if !tipo.RequiereDocumentoRelacionado() {
		s["allOf"] = []m{{
			"if":   m{"properties": m{"condicionOperacion": m{"const": mh.CondicionContado}}},
			"then": m{"properties": m{"pagos": m{"type": "array"}}},
		}}
	}
	return s
}

func extension() m {
	return anulable(objeto(m{
		"nombEntrega":   anulable(cadena(1, 100)),
		"docuEntrega":   anulable(cadena(1, 25)),
		"nombRecibe":    anulable(cadena(1, 100)),
		"docuRecibe":    anulable(cadena(1, 25)),
		"observaciones": anulable(cadena(0, 3000)),
		"placaVehiculo": anulable(cadena(2, 10)),
	}, "nombEntrega", "docuEntrega", "nombRecibe", "docuRecibe", "observaciones", "placaVehiculo"))
}

func apendice() m {
	return anulable(m{"type": "array", "minItems": 1, "maxItems": 10, "items": objeto(m{
		"campo":    cadena(2, 25),
		"etiqueta": cadena(3, 50),
		"valor":    cadena(1, 150),
	}, "campo", "etiqueta", "valor")})
}

// ── documentos ────────────────────────────────────────────────────────────────

func esquemaDTE(tipo mh.TipoDte) m {
	props := m{
		"identificacion":       identificacion(tipo),
		"documentoRelacionado": documentoRelacionado(tipo),
		"emisor":               emisor(),
		"receptor":             receptor(tipo),
		"ventaTercero": anulable(objeto(m{
			"nit":    patron(mh.PatronNit),
			"nombre": cadena(3, 200),
		}, "nit", "nombre")),
		"cuerpoDocumento": m{"type": "array", "minItems": 1, "maxItems": 2000, "items": item(tipo)},
		"resumen":         resumen(tipo),
		"extension":       extension(),
		"apendice":        apendice(),
	}
	s := objeto(props, keys(props)...)
	s["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	s["title"] = fmt.Sprintf("%s v%d", tipo.Nombre(), tipo.Version())
	return s
}

func esquemaAnulacion() m {
	tipos := make([]string, 0)
	reglasNC := make([]m, 0)
	for _, t := range mh.TiposSoportados() {
		tipos = append(tipos, string(t))
		reglasNC = append(reglasNC, m{
			"if":   m{"properties": m{"tipoDte": m{"const": string(t)}}},
			"then": m{"properties": m{"numeroControl": patron(mh.PatronNumeroControl(string(t)))}},
		})
	}

	docIdent := anulable(enumCadenas(mh.DocIdentificacionNIT, mh.DocIdentificacionDUI,
		mh.DocIdentificacionPasaporte, mh.DocIdentificacionCarnet, mh.DocIdentificacionOtro))

	documento := objeto(m{
		"tipoDte":           enumCadenas(tipos...),
		"codigoGeneracion":  patron(mh.PatronCodigoGeneracion),
		"selloRecibido":     patron(patronSello),
		"numeroControl":     patron(`^DTE-[0-9]{2}-[A-Z0-9]{8}-[0-9]{15}$`),
		"fecEmi":            m{"type": "string", "format": "date"},
		"montoIva":          anulable(monto()),
		"codigoGeneracionR": anulable(patron(mh.PatronCodigoGeneracion)),
		"tipoDocumento":     docIdent,
		"numDocumento":      anulable(cadena(3, 20)),
		"nombre":            anulable(cadena(3, 200)),
		"telefono":          anulable(cadena(8, 30)),
		"correo":            anulable(m{"type": "string", "format": "email", "maxLength": 100}),
	}, "tipoDte", "codigoGeneracion", "selloRecibido", "numeroControl", "fecEmi", "montoIva",
		"codigoGeneracionR", "tipoDocumento", "numDocumento", "nombre")
	documento["allOf"] = reglasNC

	motivo := objeto(m{
		"tipoAnulacion":     enumEnteros(mh.AnulacionErrorInformacion, mh.AnulacionRescindir, mh.AnulacionOtro),
		"motivoAnulacion":   anulable(cadena(5, 250)),
		"nombreResponsable": cadena(5, 100),
		"tipDocResponsable": enumCadenas(mh.DocIdentificacionNIT, mh.DocIdentificacionDUI, mh.DocIdentificacionPasaporte, mh.DocIdentificacionCarnet, mh.DocIdentificacionOtro),
		"numDocResponsable": cadena(3, 20),
		"nombreSolicita":    cadena(5, 100),
		"tipDocSolicita":    enumCadenas(mh.DocIdentificacionNIT, mh.DocIdentificacionDUI, mh.DocIdentificacionPasaporte, mh.DocIdentificacionCarnet, mh.DocIdentificacionOtro),
		"numDocSolicita":    cadena(3, 20),
	}, "tipoAnulacion", "motivoAnulacion", "nombreResponsable", "tipDocResponsable", "numDocResponsable",
		"nombreSolicita", "tipDocSolicita", "numDocSolicita")

	props := m{
		"identificacion": objeto(m{
			"version":          m{"const": mh.VersionAnulacion},
			"ambiente":         enumCadenas(mh.AmbientePruebas, mh.AmbienteProduccion),
			"codigoGeneracion": patron(mh.PatronCodigoGeneracion),
			"fecAnula":         m{"type": "string", "format": "date"},
			"horAnula":         patron(patronHora),
		}, "version", "ambiente", "codigoGeneracion", "fecAnula", "horAnula"),
		"emisor": objeto(m{
			"nit":                 patron(mh.PatronNit),
			"nombre":              cadena(3, 250),
			"tipoEstablecimiento": enumCadenas("01", "02", "04", "07", "20"),
			"nomEstablecimiento":  anulable(cadena(3, 150)),
			"codEstableMH":        anulable(cadena(4, 4)),
			"codEstable":          anulable(cadena(1, 10)),
			"codPuntoVentaMH":     anulable(cadena(4, 4)),
			"codPuntoVenta":       anulable(cadena(1, 15)),
			"telefono":            anulable(cadena(8, 30)),
			"correo":              m{"type": "string", "format": "email", "maxLength": 100},
		}, "nit", "nombre", "tipoEstablecimiento", "telefono", "correo"),
		"documento": documento,
		"motivo":    motivo,
	}
	s := objeto(props, keys(props)...)
	s["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	s["title"] = fmt.Sprintf("Anulación v%d", mh.VersionAnulacion)
	s["allOf"] = []m{
		{
			"if":   m{"properties": m{"motivo": m{"properties": m{"tipoAnulacion": m{"const": mh.AnulacionRescindir}}}}},
			"then": m{"properties": m{"documento": m{"properties": m{"codigoGeneracionR": m{"type": "null"}}}}},
			"else": m{"properties": m{"documento": m{"properties": m{"codigoGeneracionR": m{"type": "string"}}}}},
		},
		{
			"if":   m{"properties": m{"motivo": m{"properties": m{"tipoAnulacion": m{"const": mh.AnulacionOtro}}}}},
			"then": m{"properties": m{"motivo": m{"properties": m{"motivoAnulacion": m{"type": "string"}}}}},
		},
	}
	return s
}

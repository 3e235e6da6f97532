// Package dte modela los Documentos Tributarios Electrónicos de El Salvador y contiene
// el builder que los arma a partir de una entrada simplificada.
package dte

// Documento es el JSON que se firma y se transmite a MH. Los campos que dependen del tipo
// de DTE son punteros con omitempty: Factura lleva ivaItem/totalIva, los demás ivaPerci1.
type Documento struct {
	Identificacion       Identificacion         `json:"identificacion"`
	DocumentoRelacionado []DocumentoRelacionado `json:"documentoRelacionado"`
	Emisor               Emisor                 `json:"emisor"`
	Receptor             *Receptor              `json:"receptor"`
	VentaTercero         *VentaTercero          `json:"ventaTercero"`
	CuerpoDocumento      []Item                 `json:"cuerpoDocumento"`
	Resumen              Resumen                `json:"resumen"`
	Extension            *Extension             `json:"extension"`
	Apendice             []Apendice             `json:"apendice"`
}

// Identificacion bloque de identificación del DTE.
type Identificacion struct {
	Version          int     `json:"version"`
	Ambiente         string  `json:"ambiente"`
	TipoDte          string  `json:"tipoDte"`
	NumeroControl    string  `json:"numeroControl"`
	CodigoGeneracion string  `json:"codigoGeneracion"`
	TipoModelo       int     `json:"tipoModelo"`
	TipoOperacion    int     `json:"tipoOperacion"`
	TipoContingencia *int    `json:"tipoContingencia"`
	MotivoContin     *string `json:"motivoContin"`
	FecEmi           string  `json:"fecEmi"`
	HorEmi           string  `json:"horEmi"`
	TipoMoneda       string  `json:"tipoMoneda"`
}

// DocumentoRelacionado referencia al CCF que corrige una nota de crédito o débito.
type DocumentoRelacionado struct {
	TipoDocumento   string `json:"tipoDocumento"`
	TipoGeneracion  int    `json:"tipoGeneracion"`
	NumeroDocumento string `json:"numeroDocumento"`
	FechaEmision    string `json:"fechaEmision"`
}

// Direccion domicilio según CAT-012/CAT-013.
type Direccion struct {
	Departamento string `json:"departamento"`
	Municipio    string `json:"municipio"`
	Complemento  string `json:"complemento"`
}

// Emisor contribuyente que emite el documento.
type Emisor struct {
	Nit                 string    `json:"nit"`
	Nrc                 string    `json:"nrc"`
	Nombre              string    `json:"nombre"`
	CodActividad        string    `json:"codActividad"`
	DescActividad       string    `json:"descActividad"`
	NombreComercial     *string   `json:"nombreComercial"`
	TipoEstablecimiento string    `json:"tipoEstablecimiento"`
	Direccion           Direccion `json:"direccion"`
	Telefono            string    `json:"telefono"`
	Correo              string    `json:"correo"`
	CodEstableMH        *string   `json:"codEstableMH"`
	CodEstable          *string   `json:"codEstable"`
	CodPuntoVentaMH     *string   `json:"codPuntoVentaMH"`
	CodPuntoVenta       *string   `json:"codPuntoVenta"`
}

// Receptor destinatario. En Factura se identifica con tipoDocumento/numDocumento;
// en CCF y notas, con nit.
type Receptor struct {
	TipoDocumento   *string    `json:"tipoDocumento,omitempty"`
	NumDocumento    *string    `json:"numDocumento,omitempty"`
	Nit             *string    `json:"nit,omitempty"`
	Nrc             *string    `json:"nrc"`
	Nombre          string     `json:"nombre"`
	CodActividad    *string    `json:"codActividad"`
	DescActividad   *string    `json:"descActividad"`
	NombreComercial *string    `json:"nombreComercial,omitempty"`
	Direccion       *Direccion `json:"direccion"`
	Telefono        *string    `json:"telefono"`
	Correo          *string    `json:"correo"`
}

// VentaTercero venta por cuenta de terceros.
type VentaTercero struct {
	Nit    string `json:"nit"`
	Nombre string `json:"nombre"`
}

// Item línea del cuerpo del documento.
type Item struct {
	NumItem         int      `json:"numItem"`
	TipoItem        int      `json:"tipoItem"`
	NumeroDocumento *string  `json:"numeroDocumento"`
	Cantidad        float64  `json:"cantidad"`
	Codigo          *string  `json:"codigo"`
	CodTributo      *string  `json:"codTributo"`
	UniMedida       int      `json:"uniMedida"`
	Descripcion     string   `json:"descripcion"`
	PrecioUni       float64  `json:"precioUni"`
	MontoDescu      float64  `json:"montoDescu"`
	VentaNoSuj      float64  `json:"ventaNoSuj"`
	VentaExenta     float64  `json:"ventaExenta"`
	VentaGravada    float64  `json:"ventaGravada"`
	Tributos        []string `json:"tributos"`
	Psv             *float64 `json:"psv,omitempty"`
	NoGravado       *float64 `json:"noGravado,omitempty"`
	IvaItem         *float64 `json:"ivaItem,omitempty"`
}

// Tributo entrada del resumen por código de CAT-015.
type Tributo struct {
	Codigo      string  `json:"codigo"`
	Descripcion string  `json:"descripcion"`
	Valor       float64 `json:"valor"`
}

// Pago forma de pago (CAT-017).
type Pago struct {
	Codigo     string  `json:"codigo"`
	MontoPago  float64 `json:"montoPago"`
	Referencia *string `json:"referencia"`
	Plazo      *string `json:"plazo"`
	Periodo    *int    `json:"periodo"`
}

// Resumen totales del documento.
type Resumen struct {
	TotalNoSuj          float64   `json:"totalNoSuj"`
	TotalExenta         float64   `json:"totalExenta"`
	TotalGravada        float64   `json:"totalGravada"`
	SubTotalVentas      float64   `json:"subTotalVentas"`
	DescuNoSuj          float64   `json:"descuNoSuj"`
	DescuExenta         float64   `json:"descuExenta"`
	DescuGravada        float64   `json:"descuGravada"`
	PorcentajeDescuento float64   `json:"porcentajeDescuento"`
	TotalDescu          float64   `json:"totalDescu"`
	Tributos            []Tributo `json:"tributos"`
	SubTotal            float64   `json:"subTotal"`
	IvaPerci1           *float64  `json:"ivaPerci1,omitempty"`
	IvaRete1            float64   `json:"ivaRete1"`
	ReteRenta           float64   `json:"reteRenta"`
	MontoTotalOperacion float64   `json:"montoTotalOperacion"`
	TotalNoGravado      float64   `json:"totalNoGravado"`
	TotalPagar          float64   `json:"totalPagar"`
	TotalLetras         string    `json:"totalLetras"`
	TotalIva            *float64  `json:"totalIva,omitempty"`
	SaldoFavor          float64   `json:"saldoFavor"`
	CondicionOperacion  int       `json:"condicionOperacion"`
	Pagos               []Pago    `json:"pagos"`
	NumPagoElectronico  *string   `json:"numPagoElectronico"`
}

// Extension datos de entrega y observaciones.
type Extension struct {
	NombEntrega   *string `json:"nombEntrega"`
	DocuEntrega   *string `json:"docuEntrega"`
	NombRecibe    *string `json:"nombRecibe"`
	DocuRecibe    *string `json:"docuRecibe"`
	Observaciones *string `json:"observaciones"`
	PlacaVehiculo *string `json:"placaVehiculo"`
}

// Apendice campo libre clave/valor.
type Apendice struct {
	Campo    string `json:"campo"`
	Etiqueta string `json:"etiqueta"`
	Valor    string `json:"valor"`
}

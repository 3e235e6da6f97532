package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dtedoc "github.com/jhoicas/dte-api/internal/domain/dte"
	"github.com/jhoicas/dte-api/internal/domain/entity"
	"github.com/jhoicas/dte-api/internal/domain/hacienda"
	"github.com/jhoicas/dte-api/pkg/mh"
)

// CredencialesRequest usuario y contraseña de la API de MH del emisor.
type CredencialesRequest struct {
	Nit      string `json:"nit" validate:"required,numeric,min=9,max=14"`
	Password string `json:"password" validate:"required"`
}

// ToCredenciales convierte a la forma del dominio.
func (r CredencialesRequest) ToCredenciales() hacienda.Credenciales {
	return hacienda.Credenciales{Nit: r.Nit, Password: r.Password}
}

// DireccionRequest domicilio (CAT-012/CAT-013).
type DireccionRequest struct {
	Departamento string `json:"departamento" validate:"required,len=2,numeric"`
	Municipio    string `json:"municipio" validate:"required,len=2,numeric"`
	Complemento  string `json:"complemento" validate:"required,min=1,max=200"`
}

func (r DireccionRequest) toDireccion() dtedoc.Direccion {
	return dtedoc.Direccion{Departamento: r.Departamento, Municipio: r.Municipio, Complemento: r.Complemento}
}

// EmisorRequest contribuyente que emite.
type EmisorRequest struct {
	Nit                 string           `json:"nit" validate:"required,numeric,min=9,max=14"`
	Nrc                 string           `json:"nrc" validate:"required,numeric,max=8"`
	Nombre              string           `json:"nombre" validate:"required,max=250"`
	CodActividad        string           `json:"codActividad" validate:"required,numeric,min=2,max=6"`
	DescActividad       string           `json:"descActividad" validate:"required,max=150"`
	NombreComercial     *string          `json:"nombreComercial" validate:"omitempty,max=150"`
	TipoEstablecimiento string           `json:"tipoEstablecimiento" validate:"required,len=2"`
	Direccion           DireccionRequest `json:"direccion"`
	Telefono            string           `json:"telefono" validate:"required,min=8,max=30"`
	Correo              string           `json:"correo" validate:"required,email,max=100"`
	CodEstableMH        *string          `json:"codEstableMH" validate:"omitempty,len=4"`
	CodEstable          *string          `json:"codEstable" validate:"omitempty,max=10"`
	CodPuntoVentaMH     *string          `json:"codPuntoVentaMH" validate:"omitempty,len=4"`
	CodPuntoVenta       *string          `json:"codPuntoVenta" validate:"omitempty,max=15"`
}

func (r EmisorRequest) toEmisor() dtedoc.Emisor {
	return dtedoc.Emisor{
		Nit:                 r.Nit,
		Nrc:                 r.Nrc,
		Nombre:              r.Nombre,
		CodActividad:        r.CodActividad,
		DescActividad:       r.DescActividad,
		NombreComercial:     r.NombreComercial,
		TipoEstablecimiento: r.TipoEstablecimiento,
		Direccion:           r.Direccion.toDireccion(),
		Telefono:            r.Telefono,
		Correo:              r.Correo,
		CodEstableMH:        r.CodEstableMH,
		CodEstable:          r.CodEstable,
		CodPuntoVentaMH:     r.CodPuntoVentaMH,
		CodPuntoVenta:       r.CodPuntoVenta,
	}
}

// ReceptorRequest destinatario. Factura se identifica con tipoDocumento/numDocumento; CCF y
// notas con nit (el builder exige lo que corresponde a cada tipo).
type ReceptorRequest struct {
	TipoDocumento   string            `json:"tipoDocumento" validate:"omitempty,len=2"`
	NumDocumento    string            `json:"numDocumento" validate:"omitempty,max=20"`
	Nit             string            `json:"nit" validate:"omitempty,numeric,min=9,max=14"`
	Nrc             string            `json:"nrc" validate:"omitempty,numeric,max=8"`
	Nombre          string            `json:"nombre" validate:"required,max=250"`
	CodActividad    string            `json:"codActividad" validate:"omitempty,numeric,min=2,max=6"`
	DescActividad   string            `json:"descActividad" validate:"omitempty,max=150"`
	NombreComercial string            `json:"nombreComercial" validate:"omitempty,max=150"`
	Direccion       *DireccionRequest `json:"direccion"`
	Telefono        string            `json:"telefono" validate:"omitempty,min=8,max=30"`
	Correo          string            `json:"correo" validate:"omitempty,email,max=100"`
}

func (r *ReceptorRequest) toReceptor() *dtedoc.ReceptorInput {
	if r == nil {
		return nil
	}
	in := &dtedoc.ReceptorInput{
		TipoDocumento:   r.TipoDocumento,
		NumDocumento:    r.NumDocumento,
		Nit:             r.Nit,
		Nrc:             r.Nrc,
		Nombre:          r.Nombre,
		CodActividad:    r.CodActividad,
		DescActividad:   r.DescActividad,
		NombreComercial: r.NombreComercial,
		Telefono:        r.Telefono,
		Correo:          r.Correo,
	}
	if r.Direccion != nil {
		d := r.Direccion.toDireccion()
		in.Direccion = &d
	}
	return in
}

// ItemRequest línea del cuerpo del documento. precioUni incluye IVA en Factura.
type ItemRequest struct {
	TipoItem        int             `json:"tipoItem" validate:"omitempty,oneof=1 2 3 4"`
	Codigo          string          `json:"codigo" validate:"max=25"`
	Descripcion     string          `json:"descripcion" validate:"required,max=1000"`
	Cantidad        decimal.Decimal `json:"cantidad" validate:"gt=0"`
	PrecioUni       decimal.Decimal `json:"precioUni" validate:"gte=0"`
	MontoDescu      decimal.Decimal `json:"montoDescu" validate:"gte=0"`
	UniMedida       int             `json:"uniMedida" validate:"omitempty,min=1,max=99"`
	EsGravado       *bool           `json:"esGravado"`
	NoSujeto        bool            `json:"noSujeto"`
	NumeroDocumento string          `json:"numeroDocumento" validate:"omitempty,max=36"`
}

// DocumentoRelacionadoRequest documento al que aplica una nota de crédito o débito.
type DocumentoRelacionadoRequest struct {
	TipoDocumento   string `json:"tipoDocumento" validate:"required,len=2"`
	TipoGeneracion  int    `json:"tipoGeneracion" validate:"required,oneof=1 2"`
	NumeroDocumento string `json:"numeroDocumento" validate:"required,max=36"`
	FechaEmision    string `json:"fechaEmision" validate:"required,datetime=2006-01-02"`
}

// EmitirRequest cuerpo de POST /api/dte/:tipo y /preview. El tipo viaja en la ruta.
type EmitirRequest struct {
	Emisor                 EmisorRequest                 `json:"emisor"`
	Receptor               *ReceptorRequest              `json:"receptor"`
	Items                  []ItemRequest                 `json:"items" validate:"required,min=1,max=2000,dive"`
	CodEstablecimiento     string                        `json:"codEstablecimiento" validate:"omitempty,max=8,alphanum"`
	CondicionOperacion     int                           `json:"condicionOperacion" validate:"required,oneof=1 2 3"`
	FormaPago              string                        `json:"formaPago" validate:"omitempty,len=2,numeric"`
	DocumentosRelacionados []DocumentoRelacionadoRequest `json:"documentosRelacionados" validate:"omitempty,max=50,dive"`
	FechaEmision           string                        `json:"fechaEmision" validate:"omitempty,datetime=2006-01-02"`
	Extension              *dtedoc.Extension             `json:"extension"`
	Apendice               []dtedoc.Apendice             `json:"apendice" validate:"omitempty,max=10"`
}

// ToBuildInput convierte la petición a la entrada del builder para el tipo de la ruta.
func (r EmitirRequest) ToBuildInput(tipo mh.TipoDte) dtedoc.BuildInput {
	in := dtedoc.BuildInput{
		TipoDte:            tipo,
		Emisor:             r.Emisor.toEmisor(),
		Receptor:           r.Receptor.toReceptor(),
		CodEstablecimiento: strings.ToUpper(r.CodEstablecimiento),
		CondicionOperacion: r.CondicionOperacion,
		FormaPago:          r.FormaPago,
		Extension:          r.Extension,
		Apendice:           r.Apendice,
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, dtedoc.ItemInput{
			TipoItem:        it.TipoItem,
			Codigo:          it.Codigo,
			Descripcion:     it.Descripcion,
			Cantidad:        it.Cantidad,
			PrecioUni:       it.PrecioUni,
			MontoDescu:      it.MontoDescu,
			UniMedida:       it.UniMedida,
			EsGravado:       it.EsGravado,
			NoSujeto:        it.NoSujeto,
			NumeroDocumento: it.NumeroDocumento,
		})
	}
	for _, d := range r.DocumentosRelacionados {
		in.DocumentosRelacionados = append(in.DocumentosRelacionados, dtedoc.DocumentoRelacionado{
			TipoDocumento:   d.TipoDocumento,
			TipoGeneracion:  d.TipoGeneracion,
			NumeroDocumento: d.NumeroDocumento,
			FechaEmision:    d.FechaEmision,
		})
	}
	if r.FechaEmision != "" {
		// Validado con datetime=2006-01-02; se interpreta a mediodía en hora de El Salvador.
		if f, err := time.ParseInLocation("2006-01-02", r.FechaEmision, dtedoc.ZonaElSalvador); err == nil {
			in.FechaEmision = f.Add(12 * time.Hour)
		}
	}
	return in
}

// TransmitirRequest cuerpo de POST /api/transmisiones/:id/transmitir(-async).
type TransmitirRequest struct {
	Credenciales CredencialesRequest `json:"credenciales"`
}

// AnularRequest cuerpo de POST /api/transmisiones/:id/anular.
type AnularRequest struct {
	Credenciales      CredencialesRequest `json:"credenciales"`
	TipoAnulacion     int                 `json:"tipoAnulacion" validate:"required,oneof=1 2 3"`
	MotivoAnulacion   *string             `json:"motivoAnulacion" validate:"omitempty,min=5,max=250"`
	NombreResponsable string              `json:"nombreResponsable" validate:"required,min=5,max=100"`
	TipDocResponsable string              `json:"tipDocResponsable" validate:"required,len=2"`
	NumDocResponsable string              `json:"numDocResponsable" validate:"required,max=25"`
	NombreSolicita    string              `json:"nombreSolicita" validate:"required,min=5,max=100"`
	TipDocSolicita    string              `json:"tipDocSolicita" validate:"required,len=2"`
	NumDocSolicita    string              `json:"numDocSolicita" validate:"required,max=25"`
	CodigoGeneracionR string              `json:"codigoGeneracionR" validate:"omitempty,len=36"`
}

// ToMotivo arma el motivo del evento de invalidación.
func (r AnularRequest) ToMotivo() dtedoc.Motivo {
	return dtedoc.Motivo{
		TipoAnulacion:     r.TipoAnulacion,
		MotivoAnulacion:   r.MotivoAnulacion,
		NombreResponsable: r.NombreResponsable,
		TipDocResponsable: r.TipDocResponsable,
		NumDocResponsable: r.NumDocResponsable,
		NombreSolicita:    r.NombreSolicita,
		TipDocSolicita:    r.TipDocSolicita,
		NumDocSolicita:    r.NumDocSolicita,
	}
}

// ConsultaRequest cuerpo de POST /api/transmisiones/consulta.
type ConsultaRequest struct {
	Credenciales     CredencialesRequest `json:"credenciales"`
	CodigoGeneracion string              `json:"codigoGeneracion" validate:"required,len=36"`
	TipoDte          string              `json:"tipoDte" validate:"omitempty,len=2,numeric"`
}

// VerificarFirmaRequest cuerpo de POST /api/firma/verificar. Sin llavePublica se usa el
// certificado del tenant.
type VerificarFirmaRequest struct {
	JWS          string `json:"jws" validate:"required"`
	LlavePublica string `json:"llavePublica"`
}

// TransmisionResponse registro tal como lo ve el cliente (sin el documento firmado completo).
type TransmisionResponse struct {
	ID               string     `json:"id"`
	TipoDte          string     `json:"tipoDte"`
	Version          int        `json:"version"`
	Ambiente         string     `json:"ambiente"`
	NumeroControl    string     `json:"numeroControl"`
	CodigoGeneracion string     `json:"codigoGeneracion"`
	Estado           string     `json:"estado"`
	Intentos         int        `json:"intentos"`
	SelloRecibido    *string    `json:"selloRecibido"`
	FhProcesamiento  *time.Time `json:"fhProcesamiento"`
	CodigoMsg        string     `json:"codigoMsg,omitempty"`
	DescripcionMsg   string     `json:"descripcionMsg,omitempty"`
	Observaciones    []string   `json:"observaciones"`
	MontoTotal       string     `json:"montoTotal"`
	UltimoError      string     `json:"ultimoError,omitempty"`
	AnulacionCodigo  *string    `json:"anulacionCodigo,omitempty"`
	AnulacionSello   *string    `json:"anulacionSello,omitempty"`
	FechaAnulacion   *time.Time `json:"fechaAnulacion,omitempty"`
	Documento        any        `json:"documento,omitempty"`
	DocumentoFirmado string     `json:"documentoFirmado,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// NewTransmisionResponse arma la respuesta. conDocumento incluye el DTE y su JWS.
func NewTransmisionResponse(t *entity.Transmision, conDocumento bool) TransmisionResponse {
	obs := t.Observaciones
	if obs == nil {
		obs = []string{}
	}
	r := TransmisionResponse{
		ID:               t.ID,
		TipoDte:          t.TipoDte,
		Version:          t.Version,
		Ambiente:         t.Ambiente,
		NumeroControl:    t.NumeroControl,
		CodigoGeneracion: t.CodigoGeneracion,
		Estado:           string(t.Estado),
		Intentos:         t.Intentos,
		SelloRecibido:    t.SelloRecibido,
		FhProcesamiento:  t.FhProcesamiento,
		CodigoMsg:        t.CodigoMsg,
		DescripcionMsg:   t.DescripcionMsg,
		Observaciones:    obs,
		MontoTotal:       t.MontoTotal.StringFixed(2),
		UltimoError:      t.UltimoError,
		AnulacionCodigo:  t.AnulacionCodigo,
		AnulacionSello:   t.AnulacionSello,
		FechaAnulacion:   t.FechaAnulacion,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
	if conDocumento {
		if len(t.Documento) > 0 {
			r.Documento = t.Documento
		}
		r.DocumentoFirmado = t.DocumentoFirmado
	}
	return r
}

// JobResponse estado de un trabajo. Los parámetros no se exponen: llevan las credenciales de MH.
type JobResponse struct {
	ID        string    `json:"id"`
	Operacion string    `json:"operacion"`
	Estado    string    `json:"estado"`
	Resultado any       `json:"resultado,omitempty"`
	Error     string    `json:"error,omitempty"`
	Intentos  int       `json:"intentos"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewJobResponse arma la respuesta del trabajo.
func NewJobResponse(j *entity.Job) JobResponse {
	r := JobResponse{
		ID:        j.ID,
		Operacion: j.Operacion,
		Estado:    string(j.Estado),
		Error:     j.Error,
		Intentos:  j.Intentos,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if len(j.Resultado) > 0 {
		r.Resultado = j.Resultado
	}
	return r
}

// JobEncoladoResponse respuesta 202 de la transmisión asíncrona.
type JobEncoladoResponse struct {
	JobID  string `json:"jobId"`
	Estado string `json:"estado"`
}

// CertificadoResponse metadatos del certificado del tenant.
type CertificadoResponse struct {
	SubjectCN string    `json:"subjectCN"`
	IssuerCN  string    `json:"issuerCN"`
	Serial    string    `json:"serial"`
	NotBefore time.Time `json:"notBefore"`
	NotAfter  time.Time `json:"notAfter"`
	Vigente   bool      `json:"vigente"`
}

// CampoInvalido error de validación de la petición o del esquema.
type CampoInvalido struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidacionErrorResponse 422 con los campos que no pasaron la validación.
type ValidacionErrorResponse struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Errores []CampoInvalido `json:"errores"`
}

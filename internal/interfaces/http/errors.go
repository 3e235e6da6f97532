package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/shopspring/decimal"

	appdte "github.com/jhoicas/dte-api/internal/application/dte"
	"github.com/jhoicas/dte-api/internal/application/dto"
	"github.com/jhoicas/dte-api/internal/domain"
	dtedoc "github.com/jhoicas/dte-api/internal/domain/dte"
	"github.com/jhoicas/dte-api/internal/infrastructure/mh/signer"
	"github.com/jhoicas/dte-api/internal/infrastructure/queue"
)

var validate = validator.New()

func init() {
	// decimal.Decimal se valida como número (gt=0, gte=0).
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// Los errores usan el nombre JSON del campo.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// errorHTTP respuesta de error ya decidida por el handler.
type errorHTTP struct {
	status int
	body   any
}

func (e *errorHTTP) Error() string { return utils.StatusMessage(e.status) }

func nuevoError(status int, code, message string) *errorHTTP {
	return &errorHTTP{status: status, body: dto.ErrorResponse{Code: code, Message: message}}
}

// bindAndValidate parsea el cuerpo JSON y aplica las reglas validate de la petición.
func bindAndValidate(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return nuevoError(fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido: "+err.Error())
	}
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return nuevoError(fiber.StatusBadRequest, "VALIDATION", err.Error())
		}
		campos := make([]dto.CampoInvalido, 0, len(ve))
		for _, fe := range ve {
			campos = append(campos, dto.CampoInvalido{Path: rutaCampo(fe.Namespace()), Message: mensajeRegla(fe)})
		}
		return &errorHTTP{status: fiber.StatusUnprocessableEntity, body: dto.ValidacionErrorResponse{
			Code: "VALIDATION", Message: "la petición no es válida", Errores: campos,
		}}
	}
	return nil
}

// rutaCampo quita el nombre del tipo raíz: "EmitirRequest.emisor.nit" → "emisor.nit".
func rutaCampo(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func mensajeRegla(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo requerido"
	case "email":
		return "correo inválido"
	case "numeric":
		return "solo dígitos"
	case "len":
		return "longitud debe ser " + fe.Param()
	case "min", "gte":
		return "mínimo " + fe.Param()
	case "max", "lte":
		return "máximo " + fe.Param()
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "datetime":
		return "formato de fecha " + fe.Param()
	default:
		return "no cumple la regla " + fe.Tag()
	}
}

// erroresDeArmado errores del builder: la entrada no permite armar el documento.
var erroresDeArmado = []error{
	dtedoc.ErrTipoDteNoSoportado,
	dtedoc.ErrSinItems,
	dtedoc.ErrReceptorRequerido,
	dtedoc.ErrDocumentoRelacionadoRequerido,
	dtedoc.ErrCodigoEstablecimiento,
	dtedoc.ErrCorrelativo,
	dtedoc.ErrItemInvalido,
	dtedoc.ErrAmbienteInvalido,
	dtedoc.ErrCondicionOperacion,
	dtedoc.ErrMotivoAnulacion,
}

// responderError traduce errores de dominio y de aplicación a dto.ErrorResponse.
func responderError(c *fiber.Ctx, err error) error {
	var eh *errorHTTP
	if errors.As(err, &eh) {
		return c.Status(eh.status).JSON(eh.body)
	}
	var verr *appdte.ValidacionError
	if errors.As(err, &verr) {
		campos := make([]dto.CampoInvalido, 0, len(verr.Errores))
		for _, fe := range verr.Errores {
			campos = append(campos, dto.CampoInvalido{Path: fe.Path, Message: fe.Message})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ValidacionErrorResponse{
			Code: "SCHEMA", Message: "el documento no cumple el esquema de MH", Errores: campos,
		})
	}
	for _, e := range erroresDeArmado {
		if errors.Is(err, e) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "BUILD", Message: err.Error()})
		}
	}

	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrMissingTenant):
		status, code = fiber.StatusBadRequest, "MISSING_TENANT"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, appdte.ErrTransmisionEnCurso):
		status, code = fiber.StatusConflict, "IN_PROGRESS"
	case errors.Is(err, appdte.ErrTransicionInvalida):
		status, code = fiber.StatusConflict, "INVALID_STATE"
	case errors.Is(err, appdte.ErrAnulacionRechazada):
		status, code = fiber.StatusUnprocessableEntity, "REJECTED"
	case errors.Is(err, appdte.ErrTransmision):
		status, code = fiber.StatusBadGateway, "MH_UNAVAILABLE"
	case errors.Is(err, queue.ErrColaLlena):
		status, code = fiber.StatusServiceUnavailable, "QUEUE_FULL"
	case errors.Is(err, signer.ErrSinCertificado):
		status, code = fiber.StatusPreconditionFailed, "NO_CERTIFICATE"
	case errors.Is(err, signer.ErrCertificadoExpirado), errors.Is(err, signer.ErrCertificadoNoVigente):
		status, code = fiber.StatusPreconditionFailed, "CERTIFICATE_NOT_VALID"
	case errors.Is(err, signer.ErrPasswordIncorrecto), errors.Is(err, signer.ErrCertificadoMalformado):
		status, code = fiber.StatusBadRequest, "INVALID_CERTIFICATE"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

package http

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dte-api/internal/application/dto"
	dtedoc "github.com/jhoicas/dte-api/internal/domain/dte"
	"github.com/jhoicas/dte-api/internal/domain/dte/schema"
	"github.com/jhoicas/dte-api/internal/domain/entity"
	"github.com/jhoicas/dte-api/pkg/mh"
)

// EmisionService casos de uso de emisión que expone la API.
type EmisionService interface {
	Emitir(ctx context.Context, tenantID string, in dtedoc.BuildInput) (*entity.Transmision, error)
	Preview(in dtedoc.BuildInput) (*dtedoc.Documento, *schema.Result, error)
	Firmar(ctx context.Context, tenantID, id string) (*entity.Transmision, error)
	Obtener(ctx context.Context, tenantID, id string) (*entity.Transmision, error)
	Listar(ctx context.Context, tenantID string, estado entity.EstadoTransmision, limit int) ([]*entity.Transmision, error)
}

// ValidadorDTE valida JSON arbitrario contra el esquema del tipo.
type ValidadorDTE interface {
	Validate(doc any, tipoDte string) (*schema.Result, error)
}

// DTEHandler emisión, previsualización y validación de documentos.
type DTEHandler struct {
	emision   EmisionService
	validador ValidadorDTE
}

// NewDTEHandler construye el handler.
func NewDTEHandler(emision EmisionService, validador ValidadorDTE) *DTEHandler {
	return &DTEHandler{emision: emision, validador: validador}
}

// tipoDeRuta lee :tipo y verifica que sea un tipo soportado (01, 03, 05, 06).
func tipoDeRuta(c *fiber.Ctx) (mh.TipoDte, error) {
	tipo := mh.TipoDte(c.Params("tipo"))
	if tipo.Version() == 0 {
		return "", nuevoError(fiber.StatusNotFound, "UNSUPPORTED_TYPE", "tipo de DTE no soportado: "+string(tipo))
	}
	return tipo, nil
}

// Emitir godoc
// @Summary      Emitir DTE
// @Tags         dte
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Param        tipo  path  string  true  "01, 03, 05 o 06"
// @Param        body  body  dto.EmitirRequest  true  "emisor, receptor, items"
// @Success      201  {object}  dto.TransmisionResponse
// @Success      202  {object}  dto.TransmisionResponse  "creado sin firma"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      412  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ValidacionErrorResponse
// @Router       /api/dte/{tipo} [post]
func (h *DTEHandler) Emitir(c *fiber.Ctx) error {
	tipo, err := tipoDeRuta(c)
	if err != nil {
		return responderError(c, err)
	}
	var in dto.EmitirRequest
	if err := bindAndValidate(c, &in); err != nil {
		return responderError(c, err)
	}
	rec, err := h.emision.Emitir(c.UserContext(), GetTenantID(c), in.ToBuildInput(tipo))
	if err != nil {
		if rec != nil {
			// Quedó CREADO sin firma: se informa el registro para reintentar con /firmar.
			return c.Status(fiber.StatusAccepted).JSON(dto.NewTransmisionResponse(rec, true))
		}
		return responderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransmisionResponse(rec, true))
}

// Preview godoc
// @Summary      Previsualizar DTE
// @Tags         dte
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Param        tipo  path  string  true  "01, 03, 05 o 06"
// @Param        body  body  dto.EmitirRequest  true  "emisor, receptor, items"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ValidacionErrorResponse
// @Router       /api/dte/{tipo}/preview [post]
func (h *DTEHandler) Preview(c *fiber.Ctx) error {
	tipo, err := tipoDeRuta(c)
	if err != nil {
		return responderError(c, err)
	}
	var in dto.EmitirRequest
	if err := bindAndValidate(c, &in); err != nil {
		return responderError(c, err)
	}
	doc, res, err := h.emision.Preview(in.ToBuildInput(tipo))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(fiber.Map{"documento": doc, "validacion": res})
}

// Validar godoc
// @Summary      Validar JSON contra el esquema de MH
// @Tags         dte
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Param        tipo  path  string  true  "01, 03, 05 o 06"
// @Param        body  body  object  true  "documento armado"
// @Success      200  {object}  schema.Result
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/dte/{tipo}/validar [post]
func (h *DTEHandler) Validar(c *fiber.Ctx) error {
	tipo, err := tipoDeRuta(c)
	if err != nil {
		return responderError(c, err)
	}
	body := c.Body()
	if !json.Valid(body) {
		return responderError(c, nuevoError(fiber.StatusBadRequest, "INVALID_BODY", "el cuerpo debe ser JSON"))
	}
	res, err := h.validador.Validate(json.RawMessage(body), string(tipo))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(res)
}

// Obtener godoc
// @Summary      Obtener transmisión
// @Tags         transmisiones
// @Security     Bearer
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Param        id  path  string  true  "ID del registro"
// @Success      200  {object}  dto.TransmisionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transmisiones/{id} [get]
func (h *DTEHandler) Obtener(c *fiber.Ctx) error {
	rec, err := h.emision.Obtener(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(dto.NewTransmisionResponse(rec, true))
}

// Listar godoc
// @Summary      Listar transmisiones
// @Tags         transmisiones
// @Security     Bearer
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Param        estado  query  string  false  "CREADO, FIRMADO, PROCESADO, RECHAZADO, ANULADO"
// @Param        limit  query  int  false  "máximo 500"
// @Success      200  {array}  dto.TransmisionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transmisiones [get]
func (h *DTEHandler) Listar(c *fiber.Ctx) error {
	estado := entity.EstadoTransmision(strings.ToUpper(c.Query("estado")))
	recs, err := h.emision.Listar(c.UserContext(), GetTenantID(c), estado, c.QueryInt("limit", 50))
	if err != nil {
		return responderError(c, err)
	}
	out := make([]dto.TransmisionResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, dto.NewTransmisionResponse(r, false))
	}
	return c.JSON(out)
}

// Firmar godoc
// @Summary      Firmar registro creado
// @Tags         transmisiones
// @Security     Bearer
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Param        id  path  string  true  "ID del registro"
// @Success      200  {object}  dto.TransmisionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      412  {object}  dto.ErrorResponse
// @Router       /api/transmisiones/{id}/firmar [post]
func (h *DTEHandler) Firmar(c *fiber.Ctx) error {
	rec, err := h.emision.Firmar(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(dto.NewTransmisionResponse(rec, true))
}

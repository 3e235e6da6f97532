package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	appdte "github.com/jhoicas/dte-api/internal/application/dte"
	"github.com/jhoicas/dte-api/internal/application/dto"
	"github.com/jhoicas/dte-api/internal/domain/entity"
	"github.com/jhoicas/dte-api/internal/domain/hacienda"
)

// TransmisionService operaciones con MH sobre un registro.
type TransmisionService interface {
	TransmitirSync(ctx context.Context, tenantID, id string, cred hacienda.Credenciales) (*appdte.Resultado, error)
	TransmitirAsync(ctx context.Context, tenantID, id string, cred hacienda.Credenciales) (string, error)
	EstadoJob(ctx context.Context, tenantID, jobID string) (*entity.Job, error)
	ConsultarEstado(ctx context.Context, tenantID string, in appdte.ConsultaInput) (*appdte.Resultado, error)
	Anular(ctx context.Context, tenantID, id string, in appdte.AnulacionInput, cred hacienda.Credenciales) (*appdte.Resultado, error)
}

// TransmisionHandler transmisión, consulta e invalidación.
type TransmisionHandler struct {
	svc TransmisionService
}

// NewTransmisionHandler construye el handler.
func NewTransmisionHandler(svc TransmisionService) *TransmisionHandler {
	return &TransmisionHandler{svc: svc}
}

// Transmitir godoc
// @Summary      Transmitir a MH (síncrono)
// @Tags         transmisiones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Param        id  path  string  true  "ID del registro"
// @Param        body  body  dto.TransmitirRequest  true  "credenciales de MH"
// @Success      200  {object}  appdte.Resultado
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ValidacionErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/transmisiones/{id}/transmitir [post]
func (h *TransmisionHandler) Transmitir(c *fiber.Ctx) error {
	var in dto.TransmitirRequest
	if err := bindAndValidate(c, &in); err != nil {
		return responderError(c, err)
	}
	res, err := h.svc.TransmitirSync(c.UserContext(), GetTenantID(c), c.Params("id"), in.Credenciales.ToCredenciales())
	if err != nil {
		if res != nil && errors.Is(err, appdte.ErrTransmision) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"code": "MH_UNAVAILABLE", "message": err.Error(), "resultado": res,
			})
		}
		return responderError(c, err)
	}
	return c.JSON(res)
}

// TransmitirAsync godoc
// @Summary      Transmitir a MH (asíncrono)
// @Tags         transmisiones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Param        id  path  string  true  "ID del registro"
// @Param        body  body  dto.TransmitirRequest  true  "credenciales de MH"
// @Success      202  {object}  dto.JobEncoladoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/transmisiones/{id}/transmitir-async [post]
func (h *TransmisionHandler) TransmitirAsync(c *fiber.Ctx) error {
	var in dto.TransmitirRequest
	if err := bindAndValidate(c, &in); err != nil {
		return responderError(c, err)
	}
	jobID, err := h.svc.TransmitirAsync(c.UserContext(), GetTenantID(c), c.Params("id"), in.Credenciales.ToCredenciales())
	if err != nil {
		return responderError(c, err)
	}
	c.Location("/api/jobs/" + jobID)
	return c.Status(fiber.StatusAccepted).JSON(dto.JobEncoladoResponse{JobID: jobID, Estado: string(entity.JobPendiente)})
}

// Job godoc
// @Summary      Estado de un trabajo
// @Tags         jobs
// @Security     Bearer
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Param        id  path  string  true  "ID del trabajo"
// @Success      200  {object}  dto.JobResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/jobs/{id} [get]
func (h *TransmisionHandler) Job(c *fiber.Ctx) error {
	job, err := h.svc.EstadoJob(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(dto.NewJobResponse(job))
}

// Consultar godoc
// @Summary      Consultar estado en MH
// @Tags         transmisiones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Param        body  body  dto.ConsultaRequest  true  "codigoGeneracion, tipoDte, credenciales"
// @Success      200  {object}  appdte.Resultado
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/transmisiones/consulta [post]
func (h *TransmisionHandler) Consultar(c *fiber.Ctx) error {
	var in dto.ConsultaRequest
	if err := bindAndValidate(c, &in); err != nil {
		return responderError(c, err)
	}
	res, err := h.svc.ConsultarEstado(c.UserContext(), GetTenantID(c), appdte.ConsultaInput{
		CodigoGeneracion: in.CodigoGeneracion,
		TipoDte:          in.TipoDte,
		Credenciales:     in.Credenciales.ToCredenciales(),
	})
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(res)
}

// Anular godoc
// @Summary      Invalidar DTE
// @Tags         transmisiones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Param        id  path  string  true  "ID del registro"
// @Param        body  body  dto.AnularRequest  true  "motivo y credenciales"
// @Success      200  {object}  appdte.Resultado
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/transmisiones/{id}/anular [post]
func (h *TransmisionHandler) Anular(c *fiber.Ctx) error {
	var in dto.AnularRequest
	if err := bindAndValidate(c, &in); err != nil {
		return responderError(c, err)
	}
	res, err := h.svc.Anular(c.UserContext(), GetTenantID(c), c.Params("id"), appdte.AnulacionInput{
		Motivo:            in.ToMotivo(),
		CodigoGeneracionR: in.CodigoGeneracionR,
	}, in.Credenciales.ToCredenciales())
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(res)
}

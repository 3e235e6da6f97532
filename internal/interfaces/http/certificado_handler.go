package http

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dte-api/internal/application/dto"
	"github.com/jhoicas/dte-api/internal/infrastructure/mh/signer"
)

// tamañoMaximoP12 límite del archivo subido.
const tamañoMaximoP12 = 64 << 10

// CertificadoService certificados .p12 por tenant.
type CertificadoService interface {
	Subir(ctx context.Context, tenantID string, p12 []byte, password string) (*signer.CertificateInfo, error)
	Info(ctx context.Context, tenantID string) (signer.CertificateInfo, error)
	Signer(ctx context.Context, tenantID string) (*signer.Signer, error)
}

// CertificadoHandler carga de certificados y verificación de firmas.
type CertificadoHandler struct {
	store CertificadoService
	now   func() time.Time
}

// NewCertificadoHandler construye el handler.
func NewCertificadoHandler(store CertificadoService) *CertificadoHandler {
	return &CertificadoHandler{store: store, now: time.Now}
}

func (h *CertificadoHandler) respuesta(info signer.CertificateInfo) dto.CertificadoResponse {
	return dto.CertificadoResponse{
		SubjectCN: info.SubjectCN,
		IssuerCN:  info.IssuerCN,
		Serial:    info.Serial,
		NotBefore: info.NotBefore,
		NotAfter:  info.NotAfter,
		Vigente:   info.Vigente(h.now()),
	}
}

// Subir godoc
// @Summary      Subir certificado .p12
// @Tags         certificados
// @Security     Bearer
// @Accept       mpfd
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Param        archivo  formData  file  true  "certificado .p12"
// @Param        password  formData  string  true  "contraseña del certificado"
// @Success      201  {object}  dto.CertificadoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      413  {object}  dto.ErrorResponse
// @Router       /api/certificados [post]
func (h *CertificadoHandler) Subir(c *fiber.Ctx) error {
	fh, err := c.FormFile("archivo")
	if err != nil {
		return responderError(c, nuevoError(fiber.StatusBadRequest, "VALIDATION", "archivo requerido"))
	}
	if fh.Size > tamañoMaximoP12 {
		return responderError(c, nuevoError(fiber.StatusRequestEntityTooLarge, "TOO_LARGE", "el certificado excede 64 KiB"))
	}
	f, err := fh.Open()
	if err != nil {
		return responderError(c, err)
	}
	defer f.Close()
	p12, err := io.ReadAll(io.LimitReader(f, tamañoMaximoP12))
	if err != nil {
		return responderError(c, err)
	}

	info, err := h.store.Subir(c.UserContext(), GetTenantID(c), p12, c.FormValue("password"))
	if err != nil {
		return responderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.respuesta(*info))
}

// Obtener godoc
// @Summary      Certificado del tenant
// @Tags         certificados
// @Security     Bearer
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Success      200  {object}  dto.CertificadoResponse
// @Failure      412  {object}  dto.ErrorResponse
// @Router       /api/certificados [get]
func (h *CertificadoHandler) Obtener(c *fiber.Ctx) error {
	info, err := h.store.Info(c.UserContext(), GetTenantID(c))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(h.respuesta(info))
}

// Verificar godoc
// @Summary      Verificar firma JWS
// @Tags         certificados
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID  header  string  false  "Tenant (sin JWT)"
// @Param        body  body  dto.VerificarFirmaRequest  true  "jws y llave pública opcional"
// @Success      200  {object}  signer.VerifyResult
// @Failure      412  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ValidacionErrorResponse
// @Router       /api/firma/verificar [post]
func (h *CertificadoHandler) Verificar(c *fiber.Ctx) error {
	var in dto.VerificarFirmaRequest
	if err := bindAndValidate(c, &in); err != nil {
		return responderError(c, err)
	}
	if in.LlavePublica != "" {
		return c.JSON(signer.VerifySignatureWithPEM(in.JWS, []byte(in.LlavePublica)))
	}
	sg, err := h.store.Signer(c.UserContext(), GetTenantID(c))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(sg.VerifySignature(in.JWS))
}

package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dte-api/internal/application/dto"
	"github.com/jhoicas/dte-api/pkg/jwt"
)

// Locals keys para el tenant y el cliente autenticado.
const (
	LocalTenantID = "tenant_id"
	LocalSubject  = "subject"
	HeaderTenant  = "X-Tenant-ID"
)

// TenantMiddleware resuelve el tenant de la petición. Con jwtSecret exige un Bearer token y
// toma el tenant de sus claims (un X-Tenant-ID distinto se rechaza). Sin jwtSecret el tenant
// viene en el header X-Tenant-ID.
func TenantMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get(HeaderTenant))
		if jwtSecret == "" {
			if header == "" {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_TENANT", Message: "header X-Tenant-ID requerido"})
			}
			c.Locals(LocalTenantID, header)
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tenantID, subject, err := jwt.Parse(jwtSecret, strings.TrimSpace(parts[1]))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if header != "" && header != tenantID {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el token no pertenece a ese tenant"})
		}
		c.Locals(LocalTenantID, tenantID)
		c.Locals(LocalSubject, subject)
		return c.Next()
	}
}

// GetTenantID devuelve el tenant resuelto por TenantMiddleware.
func GetTenantID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalTenantID).(string)
	return s
}

// GetSubject devuelve el cliente autenticado (vacío sin JWT).
func GetSubject(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalSubject).(string)
	return s
}

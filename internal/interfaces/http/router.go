package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Emision      EmisionService
	Transmision  TransmisionService
	Certificados CertificadoService
	Validador    ValidadorDTE
	JWTSecret    string
}

// Router registra las rutas de la API. Todas exigen tenant (header o JWT).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", TenantMiddleware(deps.JWTSecret))

	// Documentos
	dteHandler := NewDTEHandler(deps.Emision, deps.Validador)
	dte := api.Group("/dte")
	dte.Post("/:tipo", dteHandler.Emitir)
	dte.Post("/:tipo/preview", dteHandler.Preview)
	dte.Post("/:tipo/validar", dteHandler.Validar)

	// Transmisiones
	transHandler := NewTransmisionHandler(deps.Transmision)
	trans := api.Group("/transmisiones")
	trans.Get("/", dteHandler.Listar)
	trans.Post("/consulta", transHandler.Consultar)
	trans.Get("/:id", dteHandler.Obtener)
	trans.Post("/:id/firmar", dteHandler.Firmar)
	trans.Post("/:id/transmitir", transHandler.Transmitir)
	trans.Post("/:id/transmitir-async", transHandler.TransmitirAsync)
	trans.Post("/:id/anular", transHandler.Anular)

	api.Get("/jobs/:id", transHandler.Job)

	// Certificados y firma
	certHandler := NewCertificadoHandler(deps.Certificados)
	api.Post("/certificados", certHandler.Subir)
	api.Get("/certificados", certHandler.Obtener)
	api.Post("/firma/verificar", certHandler.Verificar)
}

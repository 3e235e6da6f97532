package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/dte-api/docs"
	appdte "github.com/jhoicas/dte-api/internal/application/dte"
	"github.com/jhoicas/dte-api/internal/domain/dte/schema"
	"github.com/jhoicas/dte-api/internal/infrastructure/cache"
	"github.com/jhoicas/dte-api/internal/infrastructure/mh/cliente"
	"github.com/jhoicas/dte-api/internal/infrastructure/mh/signer"
	"github.com/jhoicas/dte-api/internal/infrastructure/postgres"
	"github.com/jhoicas/dte-api/internal/infrastructure/queue"
	httpRouter "github.com/jhoicas/dte-api/internal/interfaces/http"
	"github.com/jhoicas/dte-api/pkg/config"
	"github.com/jhoicas/dte-api/pkg/logger"
)

// colaTrabajos cola con ciclo de vida propio (memoria o Redis).
type colaTrabajos interface {
	appdte.JobQueue
	Registrar(operacion string, h queue.Handler)
	Start(ctx context.Context)
	Stop()
}

// @title                       DTE API
// @version                     1.0
// @description                 Emisión, firma y transmisión de Documentos Tributarios Electrónicos al Ministerio de Hacienda de El Salvador.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("ambiente_mh", cfg.MH.Ambiente).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(pool, log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	transRepo := postgres.NewTransmisionRepository(pool)
	certRepo := postgres.NewCertificadoRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	validador, err := schema.NewValidator()
	if err != nil {
		log.Fatal().Err(err).Msg("compilar esquemas de MH")
	}

	// Certificados por tenant; CertPath queda precargado para DefaultTenant.
	certStore := signer.NewCertificateStore(certRepo)
	if cfg.MH.CertPath != "" {
		p12, err := os.ReadFile(cfg.MH.CertPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.MH.CertPath).Msg("leer certificado")
		}
		info, err := certStore.Precargar(cfg.MH.DefaultTenant, p12, cfg.MH.CertPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("cargar certificado")
		}
		log.Info().Str("tenant_id", cfg.MH.DefaultTenant).Str("subject", info.SubjectCN).
			Time("not_after", info.NotAfter).Msg("certificado precargado")
	}
	firmantes := appdte.FirmantesFunc(func(ctx context.Context, tenantID string) (appdte.Firmante, error) {
		s, err := certStore.Signer(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		return s, nil
	})

	mhClient := cliente.NewClient(cliente.Config{
		APIURL:   cfg.MH.APIURL,
		AuthURL:  cfg.MH.AuthURL,
		Timeout:  cfg.MH.Timeout(),
		TokenTTL: cfg.MH.TokenTTL(),
	}, log.Zerolog())

	// Candados y cola: Redis cuando hay varias instancias, memoria en una sola.
	var (
		locker appdte.Locker
		cola   colaTrabajos
	)
	if cfg.Queue.Driver == "redis" {
		rdb, err := cache.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = cache.NewRedisLocker(rdb, "")
		cola = queue.NewRedisQueue(rdb, cfg.Queue.Workers, log.Zerolog())
	} else {
		locker = cache.NewMemoryLocker()
		cola = queue.NewMemoryQueue(cfg.Queue.Workers, 0, log.Zerolog())
	}

	emision := appdte.NewEmision(txRunner, transRepo, validador, firmantes, cfg.MH.Ambiente, log.Zerolog())
	transmitter := appdte.NewTransmitter(
		transRepo, mhClient, firmantes, validador, locker, cola,
		appdte.TransmitterConfig{LockTTL: cfg.MH.LockTTL()},
		log.Zerolog(),
	)
	cola.Registrar(appdte.OperacionTransmitir, transmitter.ProcesarJob)

	workersCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	cola.Start(workersCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.MH.Timeout() + 10*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "DTE API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		if err := pool.Ping(c.UserContext()); err != nil {
			status = "degraded"
		}
		return c.JSON(fiber.Map{
			"status":   status,
			"service":  cfg.App.Name,
			"ambiente": cfg.MH.Ambiente,
			"esquemas": validador.Versiones(),
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Emision:      emision,
		Transmision:  transmitter,
		Certificados: certStore,
		Validador:    validador,
		JWTSecret:    cfg.Auth.JWTSecret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Los trabajos en curso terminan; los pendientes quedan en la cola (Redis) o se pierden (memoria).
	stopWorkers()
	cola.Stop()

	log.Info().Msg("aplicación detenida")
}

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
	"github.com/jhoicas/emprestei/internal/application/auth"
	"github.com/jhoicas/emprestei/internal/application/provision"
	"github.com/jhoicas/emprestei/internal/application/realtime"
	"github.com/jhoicas/emprestei/internal/application/report"
	"github.com/jhoicas/emprestei/internal/domain/repository"
	"github.com/jhoicas/emprestei/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/emprestei/internal/infrastructure/pdf"
	"github.com/jhoicas/emprestei/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/emprestei/internal/interfaces/http"
	"github.com/jhoicas/emprestei/pkg/config"
	"github.com/jhoicas/emprestei/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	logCfg := logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}
	log := logger.New(logCfg)
	if cfg.Log.File != "" {
		fileLog, f, err := logger.NewFile(logCfg, cfg.Log.File)
		if err != nil {
			log.Fatal().Err(err).Msg("archivo de log")
		}
		defer f.Close()
		log = fileLog
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	var (
		nodes    repository.NodeRepository
		accounts repository.AccountRepository
	)
	switch cfg.DB.Driver {
	case config.DriverMemory:
		log.Warn().Msg("árbol en memoria: los datos se pierden al reiniciar")
		nodes = memory.NewNodeRepository()
		accounts = memory.NewAccountRepository()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		nodes = postgres.NewNodeRepository(pool)
		accounts = postgres.NewAccountRepository(pool)
	}

	realtimeSvc := realtime.NewService(nodes, log.Zerolog())
	authUC := auth.NewAuthUseCase(accounts, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// PDF: empréstimos visibles para la loja del usuario
	reportUC := report.NewLoanReportUseCase(realtimeSvc, infrapdf.NewMarotoLoanReport(), log.Zerolog())

	if cfg.App.SeedFile != "" {
		fixture, err := provision.Load(cfg.App.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Msg("provisión")
		}
		if _, err := provision.NewProvisioner(authUC, realtimeSvc, log.Zerolog()).Apply(ctx, fixture); err != nil {
			log.Fatal().Err(err).Msg("aplicar provisión")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		// sin WriteTimeout: las suscripciones SSE son respuestas de larga duración
		IdleTimeout: time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Emprestei API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		Realtime:  realtimeSvc,
		ReportUC:  reportUC,
		JWTSecret: cfg.JWT.Secret,
		Logger:    log.Zerolog(),
		KeepAlive: httpRouter.DefaultKeepAlive,
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

	// Cerrar las suscripciones primero para que los streams SSE terminen.
	realtimeSvc.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

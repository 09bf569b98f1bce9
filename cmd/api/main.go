// @title                       Obrica API
// @version                     1.0
// @description                 Flujo de stock de materiales de obra: compras, entradas, salidas y ajustes con historial.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
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

	_ "github.com/jhoicas/obrica-api/docs"
	"github.com/jhoicas/obrica-api/internal/application/inventory"
	"github.com/jhoicas/obrica-api/internal/application/usecase"
	"github.com/jhoicas/obrica-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/obrica-api/internal/infrastructure/pdf"
	"github.com/jhoicas/obrica-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/obrica-api/internal/interfaces/http"
	"github.com/jhoicas/obrica-api/pkg/config"
	"github.com/jhoicas/obrica-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Inventario.StoreDriver).
		Msg("iniciando aplicación")

	loc, err := cfg.Inventario.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria de inventario")
	}

	ctx := context.Background()

	// STORE_DRIVER=memory levanta la API sin PostgreSQL (desarrollo local); los datos se pierden al salir.
	var txRunner inventory.TxRunner
	switch cfg.Inventario.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("almacén en memoria: los datos no se persisten")
		txRunner = memory.NewStore()
	default:
		log.Info().Str("dsn", postgres.DescribeDSN(cfg.DB)).Msg("conectando a PostgreSQL")
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, log.Component("migraciones")); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		txRunner = postgres.NewTxRunner(pool)
	}

	engine := inventory.NewEngine(txRunner, inventory.EngineConfig{
		Location: loc,
		Logger:   log.Component("motor"),
	})
	materialUC := usecase.NewMaterialUseCase(txRunner)
	kardexUC := inventory.NewKardexUseCase(engine, infrapdf.NewKardexPDFGenerator(loc))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Obrica API - Inventario de materiales",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Inventario.StoreDriver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:     engine,
		MaterialUC: materialUC,
		Kardex:     kardexUC,
		Location:   loc,
		Logger:     log.Component("http"),
		JWTSecret:  cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}

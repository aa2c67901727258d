package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adanjr/inventory-management-sub000/internal/application/availability"
	"github.com/adanjr/inventory-management-sub000/internal/application/inventory"
	"github.com/adanjr/inventory-management-sub000/internal/application/ports"
	"github.com/adanjr/inventory-management-sub000/internal/application/sales"
	"github.com/adanjr/inventory-management-sub000/internal/domain/repository"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/events"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/memory"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/postgres"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/seed"
	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/txretry"
	httpRouter "github.com/adanjr/inventory-management-sub000/internal/interfaces/http"
	"github.com/adanjr/inventory-management-sub000/pkg/config"
	"github.com/adanjr/inventory-management-sub000/pkg/logger"
	"github.com/adanjr/inventory-management-sub000/pkg/telemetry"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// txRunner lo que ambos casos de uso necesitan del motor de almacenamiento.
type txRunner interface {
	inventory.TxRunner
	sales.TxRunner
}

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
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Telemetry.Endpoint,
		AuthHeader:  cfg.Telemetry.AuthHeader,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	policy := txretry.Policy{
		MaxRetries: cfg.Tx.MaxRetries,
		Backoff:    cfg.Tx.Backoff,
		Timeout:    cfg.Tx.Timeout,
	}

	var (
		runner   txRunner
		statuses repository.AvailabilityStatusRepository
	)
	switch cfg.Storage.Driver {
	case "memory":
		inv, err := seed.ReadFile(cfg.Storage.SeedCSV, cfg.Storage.SeedLatin1)
		if err != nil {
			log.Fatal().Err(err).Msg("inventario inicial")
		}
		store := memory.NewStore()
		store.LoadInventory(inv)
		runner = memory.NewTxRunner(store, policy)
		statuses = store.Statuses()
		log.Warn().Str("seed_csv", cfg.Storage.SeedCSV).Int("locations", len(inv.Locations)).
			Int("vehicles", len(inv.Vehicles)).Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		runner = postgres.NewTxRunner(pool, policy, cfg.Tx.Isolation)
		statuses = postgres.NewAvailabilityStatusRepository(pool)
	}

	// Estados de disponibilidad: se resuelven una vez y se inyectan.
	catalog, err := availability.LoadCatalog(ctx, statuses)
	if err != nil {
		log.Fatal().Err(err).Msg("catálogo de disponibilidad")
	}

	var publisher ports.EventPublisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer kp.Close()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos activa")
	}

	ledger := inventory.NewMovementLedger(runner, catalog, publisher, log)
	saleUC := sales.NewCreateSaleUseCase(runner, ledger, catalog, publisher, sales.Config{
		EnforceTotal: cfg.Sales.EnforceTotal,
	}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventory Management API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:    ledger,
		Sales:     saleUC,
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
		Log:       log,
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
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}

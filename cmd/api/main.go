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

	"github.com/tu-usuario/pos-pro/internal/application/catalog"
	"github.com/tu-usuario/pos-pro/internal/application/inventory"
	"github.com/tu-usuario/pos-pro/internal/application/ports"
	"github.com/tu-usuario/pos-pro/internal/application/returns"
	"github.com/tu-usuario/pos-pro/internal/application/sales"
	"github.com/tu-usuario/pos-pro/internal/domain/repository"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/memory"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/metrics"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/notify"
	infrapdf "github.com/tu-usuario/pos-pro/internal/infrastructure/pdf"
	"github.com/tu-usuario/pos-pro/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/pos-pro/internal/interfaces/http"
	"github.com/tu-usuario/pos-pro/pkg/config"
	"github.com/tu-usuario/pos-pro/pkg/logger"
)

// storage agrupa los repositorios y el TxRunner del driver elegido.
type storage struct {
	txRunner  inventory.TxRunner
	balances  repository.BalanceRepository
	movements repository.MovementRepository
	sales     repository.SaleRepository
	returns   repository.ReturnRepository
	products  repository.ProductRepository
	locations repository.LocationRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := buildStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	var notifier ports.Notifier = notify.NoopNotifier{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, log.Zerolog())
	}

	stockLedger := inventory.NewStockLedger()
	inventoryUC := inventory.NewUseCase(
		store.txRunner, stockLedger,
		store.balances, store.movements, store.products, store.locations, log,
	)
	createSaleUC := sales.NewCreateSaleUseCase(
		store.txRunner, stockLedger,
		store.products, store.locations, store.sales, store.returns, notifier, log,
	)
	receiptUC := sales.NewReceiptUseCase(
		store.sales, store.products, store.locations,
		infrapdf.NewMarotoReceiptGenerator(),
	)
	returnsUC := returns.NewUseCase(
		store.txRunner, stockLedger,
		store.sales, store.returns, store.products, notifier, log,
	)
	catalogUC := catalog.NewUseCase(store.products, store.locations)

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
		Title:    "POS Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		InventoryUC: inventoryUC,
		CreateSale:  createSaleUC,
		Receipt:     receiptUC,
		ReturnsUC:   returnsUC,
		CatalogUC:   catalogUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	var metricsSrv *metrics.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metrics.NewServer(cfg.Metrics.Addr)
		go func() {
			if err := metricsSrv.Start(); err != nil {
				log.Warn().Err(err).Msg("servidor de métricas finalizado")
			}
		}()
	}

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
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado del servidor de métricas")
		}
	}

	log.Info().Msg("aplicación detenida")
}

// buildStorage arma el juego de repositorios según DB_DRIVER.
func buildStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.DB.Driver == "memory" {
		s := memory.NewStore(cfg.Ledger.LockTimeoutMS)
		return &storage{
			txRunner:  s,
			balances:  s.Balances(),
			movements: s.Movements(),
			sales:     s.Sales(),
			returns:   s.Returns(),
			products:  s.Products(),
			locations: s.Locations(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		txRunner:  postgres.NewTxRunner(pool, cfg.Ledger.LockTimeoutMS),
		balances:  postgres.NewBalanceRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		sales:     postgres.NewSaleRepository(pool),
		returns:   postgres.NewReturnRepository(pool),
		products:  postgres.NewProductRepository(pool),
		locations: postgres.NewLocationRepository(pool),
		close:     pool.Close,
	}, nil
}

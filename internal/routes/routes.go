package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/andino-pay/andino_pay/internal/clients"
	"github.com/andino-pay/andino_pay/internal/config"
	"github.com/andino-pay/andino_pay/internal/ledger"
	"github.com/andino-pay/andino_pay/internal/middleware"
	"github.com/andino-pay/andino_pay/internal/notification"
	"github.com/andino-pay/andino_pay/internal/payments"
	"github.com/andino-pay/andino_pay/internal/session"
	"github.com/andino-pay/andino_pay/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health and metrics
	RegisterHealthRoutes(app, d)
	RegisterMetricsRoute(app)

	// Storage backends
	var ledgerBackend ledger.Ledger
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgresLedger(d.DB)
	} else {
		ledgerBackend = ledger.NewInMemory()
	}

	var clientRepo clients.Repository
	if d.DB != nil {
		clientRepo = clients.NewPostgresRepository(d.DB)
	} else {
		clientRepo = clients.NewMemoryRepository(ledgerBackend)
	}

	var sessionStore session.Store
	if d.Cache != nil {
		sessionStore = session.NewRedisStore(d.Cache, d.Cfg.SessionTTL)
	} else {
		sessionStore = session.NewMemoryStore(d.Cfg.SessionTTL)
	}

	// Services and handlers
	notifier := notification.NewLoggerNotifier(d.Logger)
	walletSvc := wallet.NewService(clientRepo, ledgerBackend, notifier, d.Cfg.UpstreamTimeout)
	paymentSvc := payments.NewService(clientRepo, ledgerBackend, sessionStore, notifier, d.Cfg.UpstreamTimeout)

	walletHandler := wallet.NewHandler(walletSvc)
	paymentHandler := payments.NewHandler(paymentSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	var idem fiber.Handler
	if d.Cache != nil {
		idem = middleware.IdempotentReplay(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	confirmLimit := middleware.ConfirmRateLimit(d.Cache, d.Cfg.ConfirmPerMin)

	RegisterClientRoutes(api, walletHandler)
	RegisterWalletRoutes(api, walletHandler, idem)
	RegisterPaymentRoutes(api, paymentHandler, confirmLimit)

	return nil
}

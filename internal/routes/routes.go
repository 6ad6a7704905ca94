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

	"github.com/Scannty/nft-marketplace-backend/internal/account"
	"github.com/Scannty/nft-marketplace-backend/internal/auth"
	"github.com/Scannty/nft-marketplace-backend/internal/config"
	"github.com/Scannty/nft-marketplace-backend/internal/market"
	"github.com/Scannty/nft-marketplace-backend/internal/middleware"
	"github.com/Scannty/nft-marketplace-backend/internal/nft"
	"github.com/Scannty/nft-marketplace-backend/internal/notification"
	"github.com/Scannty/nft-marketplace-backend/internal/payout"
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
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Storage backends
	var store market.Store
	var accountRepo account.Repository
	if d.DB != nil {
		store = market.NewPostgresStore(d.DB)
		accountRepo = account.NewPostgresRepository(d.DB)
	} else {
		store = market.NewInMemoryStore()
		accountRepo = account.NewMemoryRepository()
	}

	// The asset registry is an external system; the in-process simulator
	// stands in for it in every environment this service ships to.
	registry := nft.NewInMemoryRegistry()
	if d.DB != nil {
		// Listings outlive a restart but the simulator does not, so persisted
		// listings may reference tokens the registry no longer knows.
		d.Logger.Warn("asset registry is in-process; listings persisted in postgres may reference unknown tokens after a restart")
	}

	var notifier notification.Notifier
	if d.Cache != nil {
		notifier = notification.NewRedisNotifier(d.Cache, d.Cfg.EventsChannel, d.Logger)
	} else {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	// Services and handlers
	accountSvc := account.NewService(accountRepo)
	authSvc := auth.NewService(d.Cfg, accountRepo)
	authHandler := auth.NewHandler(accountSvc, authSvc)
	marketSvc := market.NewService(store, registry, payout.StaticGateway{}, notifier)
	marketHandler := market.NewHandler(marketSvc)
	nftHandler := nft.NewHandler(registry, market.OperatorAddress)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDKey).(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterAccountRoutes(api, accountSvc, d.Logger)
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes. Idempotency runs after JWT so stored responses are
	// scoped to the authenticated caller.
	jwtmw := middleware.JWTAuth(d.Cfg, accountRepo)
	protected := api.Group("", jwtmw)
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	protected.Post("/auth/logout", authHandler.Logout)
	RegisterNFTRoutes(protected, nftHandler)
	RegisterMarketRoutes(protected, marketHandler)

	return nil
}

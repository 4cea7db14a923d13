// Package main is the entrypoint for the Chronoshop API server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"github.com/chronoshop/chronoshop/internal/analytics"
	"github.com/chronoshop/chronoshop/internal/auth"
	"github.com/chronoshop/chronoshop/internal/cache"
	"github.com/chronoshop/chronoshop/internal/config"
	"github.com/chronoshop/chronoshop/internal/handler"
	"github.com/chronoshop/chronoshop/internal/metrics"
	"github.com/chronoshop/chronoshop/internal/middleware"
	"github.com/chronoshop/chronoshop/internal/repository"
	"github.com/chronoshop/chronoshop/internal/server"
	"github.com/chronoshop/chronoshop/internal/service"
	"github.com/chronoshop/chronoshop/internal/webhook"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Primary database pool, used by the API services.
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	if err := repo.Migrate(ctx); err != nil {
		logger.Error("migration failed", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
		os.Exit(1)
	}

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	signer := auth.NewTokenSigner(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)

	if cfg.SeedSampleData {
		if err := repo.Seed(ctx, hasher.Hash); err != nil {
			logger.Error("seeding failed", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			os.Exit(1)
		}
		logger.Info("sample data seeded")
	}

	// Separate connection for the webhook delivery pipeline so slow
	// deliveries never starve the API pool.
	webhookDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open webhook database connection",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
		os.Exit(1)
	}
	defer webhookDB.Close()
	webhookDB.SetMaxOpenConns(4)

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Metrics recorder. Prometheus when enabled, in-memory snapshot otherwise.
	var (
		recorder    metrics.Recorder
		promHandler http.Handler
		snapshotter metrics.Snapshotter
	)
	if cfg.MetricsEnabled {
		prom := metrics.NewPrometheus()
		recorder = prom
		promHandler = prom.Handler()
	} else {
		inmem := metrics.NewInMemory()
		recorder = inmem
		snapshotter = inmem
	}

	// Analytics pipeline: view events flow through a Redis stream into
	// Postgres daily stats.
	viewEvents := repository.NewViewEventRepository(repo)
	analyticsPublisher := analytics.NewPublisher(cacheClient.Client(), logger, recorder)
	analyticsWorker := analytics.NewWorker(
		cacheClient.Client(), viewEvents, repo, logger, analytics.NewConsumerID(), recorder,
	)

	// Webhook pipeline: order events fan out to registered endpoints.
	webhookRepo := webhook.NewRepository(webhookDB)
	webhookPublisher := webhook.NewPublisher(webhookRepo, logger)
	webhookWorker := webhook.NewWorker(webhookRepo, logger, recorder)
	webhookWorker.SetBatchSize(cfg.WebhookBatchSize)
	webhookWorker.SetPollInterval(cfg.WebhookPollInterval)

	authService := service.NewAuthService(repo, hasher, signer, recorder)
	catalogService := service.NewCatalogService(repo, cacheClient, analyticsPublisher, recorder)
	cartService := service.NewCartService(repo)
	orderService := service.NewOrderService(repo, webhookPublisher, recorder)
	statsService := service.NewStatsService(viewEvents)

	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(promHandler, snapshotter)
	authHandler := handler.NewAuthHandler(authService, logger)
	productHandler := handler.NewProductHandler(catalogService, logger)
	categoryHandler := handler.NewCategoryHandler(catalogService, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	adminHandler := handler.NewAdminHandler(catalogService, orderService, statsService, logger)
	webhookHandler := handler.NewWebhookHandler(
		webhookRepo, logger, cfg.IsDevelopment() || cfg.WebhookAllowInsecureURLs,
	)

	r := setupRouter(routerDeps{
		cfg:        cfg,
		logger:     logger,
		signer:     signer,
		cache:      cacheClient,
		health:     healthHandler,
		metrics:    metricsHandler,
		auth:       authHandler,
		products:   productHandler,
		categories: categoryHandler,
		cart:       cartHandler,
		orders:     orderHandler,
		admin:      adminHandler,
		webhooks:   webhookHandler,
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Background workers run for the lifetime of the server and drain
	// on shutdown, after the HTTP listener has stopped.
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	go func() {
		if err := analyticsWorker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("analytics worker exited", "error", err)
		}
	}()
	srv.OnShutdown("analytics-worker", analyticsWorker.Shutdown)

	if cfg.WebhookDeliveryEnabled {
		webhookDone := make(chan struct{})
		go func() {
			defer close(webhookDone)
			if err := webhookWorker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("webhook worker exited", "error", err)
			}
		}()
		srv.OnShutdown("webhook-worker", func(ctx context.Context) error {
			stopWorkers()
			select {
			case <-webhookDone:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	cfg        *config.Config
	logger     *slog.Logger
	signer     *auth.TokenSigner
	cache      *cache.Cache
	health     *handler.HealthHandler
	metrics    *handler.MetricsHandler
	auth       *handler.AuthHandler
	products   *handler.ProductHandler
	categories *handler.CategoryHandler
	cart       *handler.CartHandler
	orders     *handler.OrderHandler
	admin      *handler.AdminHandler
	webhooks   *handler.WebhookHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      d.cfg.IsDevelopment(),
		MaxRequestBodySize: d.cfg.MaxRequestBodySize,
	}))
	if origins := d.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: origins}))
	}
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))
	r.Use(middleware.RequireJSON)

	// Operational endpoints, no auth
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Get("/metrics", d.metrics.Metrics)

	rateCfg := middleware.DefaultRateLimitConfig()
	rateCfg.UserRatePerMinute = d.cfg.RateLimitUserPerMinute
	rateCfg.UserBurst = d.cfg.RateLimitUserBurst
	rateCfg.IPRatePerSecond = d.cfg.RateLimitCatalogRPS
	rateCfg.IPBurst = d.cfg.RateLimitCatalogBurst
	if !d.cfg.RateLimitAPIEnabled {
		rateCfg.UserRatePerMinute = 0
	}
	if !d.cfg.RateLimitCatalogEnabled {
		rateCfg.IPRatePerSecond = 0
	}

	requireAuth := middleware.Authenticate(d.signer, d.logger)
	requireAdmin := middleware.RequireAdmin(d.logger)
	limitByUser := middleware.RateLimitUser(d.cache, rateCfg, d.logger)
	limitByIP := middleware.RateLimitIP(d.cache, rateCfg, d.logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth and catalog routes, IP rate limited
		r.Group(func(r chi.Router) {
			r.Use(limitByIP)

			r.Post("/auth/register", d.auth.Register)
			r.Post("/auth/login", d.auth.Login)

			r.Get("/products", d.products.List)
			r.Get("/products/{id}", d.products.Get)
			r.Get("/categories", d.categories.List)
			r.Get("/categories/{id}", d.categories.Get)
		})

		// Authenticated routes, per-user rate limited
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(limitByUser)

			r.Get("/auth/me", d.auth.Me)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", d.cart.Get)
				r.Post("/items", d.cart.AddItem)
				r.Patch("/items/{id}", d.cart.UpdateItem)
				r.Delete("/items/{id}", d.cart.RemoveItem)
				r.Delete("/", d.cart.Clear)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", d.orders.Checkout)
				r.Get("/", d.orders.List)
				r.Get("/{id}", d.orders.Get)
				r.Post("/{id}/cancel", d.orders.Cancel)
			})

			// Store administration
			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)

				r.Post("/products", d.admin.CreateProduct)
				r.Patch("/products/{id}", d.admin.UpdateProduct)
				r.Delete("/products/{id}", d.admin.DeleteProduct)
				r.Post("/categories", d.admin.CreateCategory)
				r.Patch("/categories/{id}", d.admin.UpdateCategory)
				r.Patch("/orders/{id}/status", d.admin.UpdateOrderStatus)
				r.Patch("/orders/{id}/payment", d.admin.UpdatePaymentStatus)

				r.Get("/analytics/products/{id}/daily", d.admin.ProductDailyStats)
				r.Get("/analytics/products/{id}/summary", d.admin.ProductStatsSummary)
				r.Get("/analytics/top-products", d.admin.TopProducts)

				r.Route("/webhooks", func(r chi.Router) {
					r.Post("/", d.webhooks.Create)
					r.Get("/", d.webhooks.List)
					r.Get("/{id}", d.webhooks.Get)
					r.Patch("/{id}", d.webhooks.Update)
					r.Delete("/{id}", d.webhooks.Delete)
					r.Post("/{id}/rotate-secret", d.webhooks.RotateSecret)
					r.Get("/{id}/deliveries", d.webhooks.ListDeliveries)
					r.Post("/deliveries/{deliveryID}/retry", d.webhooks.RetryDelivery)
				})
			})
		})
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}

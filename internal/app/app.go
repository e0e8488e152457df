package app

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/santiagoavs/expo2025-sub004/internal/module/order"
	orderentity "github.com/santiagoavs/expo2025-sub004/internal/module/order/entity"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment"
	paymententity "github.com/santiagoavs/expo2025-sub004/internal/module/payment/entity"
	paymentprovider "github.com/santiagoavs/expo2025-sub004/internal/module/payment/provider"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/cache"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/config"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/database"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/logger"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/metrics"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/middleware"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/notify"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// confirmLockTTL bounds a leaked confirmation lease.
const confirmLockTTL = 15 * time.Second

// App wires the settlement service together.
type App struct {
	config *config.Config
	db     *gorm.DB
	redis  redis.UniversalClient
	router *gin.Engine
	logger *zap.Logger

	orderHandler   *order.Handler
	paymentHandler *payment.Handler
	webhookHandler *payment.WebhookHandler
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	app := &App{config: cfg, logger: log}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	if err := db.AutoMigrate(
		&orderentity.OrderEntity{},
		&paymententity.PaymentEntity{},
		&paymententity.WebhookEventEntity{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	app.redis = redisClient

	m := metrics.New(prometheus.DefaultRegisterer)

	if err := app.initModules(m); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}

	app.router = app.setupRouter(m)
	return app, nil
}

// initModules builds the order and payment modules and their providers.
func (a *App) initModules(m *metrics.Metrics) error {
	notifier := notify.NewLogNotifier(a.logger)

	var blobs storage.BlobStore
	s3Store, err := storage.NewS3Store(&a.config.Storage)
	if err != nil {
		// Proof uploads need object storage; everything else works
		// without it.
		a.logger.Warn("object storage unavailable, proof uploads disabled", zap.Error(err))
		blobs = storage.Disabled{}
	} else {
		blobs = s3Store
	}

	orderRepo := order.NewRepository(a.db)
	orderService := order.NewService(orderRepo, a.logger)
	a.orderHandler = order.NewHandler(orderService)

	gatewayProvider := paymentprovider.NewGatewayProvider(
		&a.config.Gateway,
		a.config.IsDevelopment(),
		notifier,
		m,
		a.logger,
	)
	registry := paymentprovider.NewRegistry(
		gatewayProvider,
		paymentprovider.NewCashProvider(notifier, a.logger),
		paymentprovider.NewBankTransferProvider(&a.config.Transfer, blobs, notifier, a.logger),
	)

	paymentRepo := payment.NewRepository(a.db)
	locker := cache.NewLocker(a.redis, confirmLockTTL)
	processor := payment.NewProcessor(paymentRepo, registry, orderService, locker, m, a.logger)

	a.paymentHandler = payment.NewHandler(processor)
	a.webhookHandler = payment.NewWebhookHandler(processor, gatewayProvider, a.logger)
	return nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter(m *metrics.Metrics) *gin.Engine {
	if a.config.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.Metrics(m))
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.Actor(a.config.Auth.JWTSecret))
	a.orderHandler.RegisterRoutes(api)
	a.paymentHandler.RegisterRoutes(api)

	// Webhooks authenticate by signature, not bearer token.
	webhooks := r.Group("/webhooks")
	a.webhookHandler.RegisterRoutes(webhooks)

	return r
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases application resources.
func (a *App) Stop() {
	if a.redis != nil {
		if err := cache.Close(a.redis); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.Warn("close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/jainam01/FOURKID-sub000/internal/infrastructure/email"
	"github.com/jainam01/FOURKID-sub000/internal/metrics"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"github.com/jainam01/FOURKID-sub000/internal/service"
	"github.com/jainam01/FOURKID-sub000/internal/token"
	"github.com/jainam01/FOURKID-sub000/internal/transport/http"
	"github.com/jainam01/FOURKID-sub000/internal/transport/http/handler"
	kafkaTransport "github.com/jainam01/FOURKID-sub000/internal/transport/kafka"
	"github.com/jainam01/FOURKID-sub000/internal/validator"
	"github.com/jainam01/FOURKID-sub000/pkg/config"
	"github.com/jainam01/FOURKID-sub000/pkg/db"
	"github.com/jainam01/FOURKID-sub000/pkg/kafka"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	outboxRepository "github.com/jainam01/FOURKID-sub000/pkg/outbox/repository"
	"github.com/jainam01/FOURKID-sub000/pkg/outbox/worker"
	"github.com/jainam01/FOURKID-sub000/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger, err := config.NewLogger(config.LoggerConfig{
		Level: cfg.LogLevel,
		Env:   cfg.Env,
	})
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	shutdownTracer := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		tp, err := utils.InitTracer(ctx, "storefront", cfg.Tracing.Endpoint, cfg.Env)
		if err != nil {
			logger.Fatal("Failed to init tracer", zap.Error(err))
		}
		shutdownTracer = tp.Shutdown
	}

	if err := db.Migrate(cfg.Postgres.URL, cfg.Postgres.MigrationsPath); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	pool, err := db.NewPostgresDB(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("Failed to create postgres pool", zap.Error(err))
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("Error closing redis client", zap.Error(err))
		}
	}()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis is unreachable, product cache falls back to postgres", zap.Error(err))
	}

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	if err != nil {
		logger.Fatal("Failed to create kafka producer", zap.Error(err))
	}
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Warn("Error closing kafka producer", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	tokens, err := token.NewManager(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	if err != nil {
		logger.Fatal("Failed to create token manager", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(pool, logger)
	sessionRepo := repository.NewSessionRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	bannerRepo := repository.NewBannerRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	watchlistRepo := repository.NewWatchlistRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)
	outboxRepo := outboxRepository.NewOutboxRepository(logger)

	authService := service.NewAuthService(
		pool,
		userRepo,
		sessionRepo,
		outboxRepo,
		tokens,
		validator.NewPasswordPolicy(),
		service.AuthConfig{UserTopic: cfg.Kafka.UserTopic, ResetTTL: cfg.Auth.ResetTTL},
		logger,
	)
	productService := service.NewCachedProductService(
		service.NewProductService(productRepo, logger),
		rdb,
		cfg.Redis.CacheTTL,
		appMetrics,
		logger,
	)
	catalogService := service.NewCatalogService(categoryRepo, bannerRepo, logger)
	cartService := service.NewCartService(pool, cartRepo, productRepo, appMetrics, logger)
	watchlistService := service.NewWatchlistService(watchlistRepo, productRepo, logger)
	reviewService := service.NewReviewService(reviewRepo, productRepo, logger)
	orderService := service.NewOrderService(
		pool,
		orderRepo,
		productRepo,
		cartRepo,
		outboxRepo,
		productService,
		service.OrderConfig{
			TaxRate: decimal.NewFromFloat(cfg.Orders.TaxRate),
			Topic:   cfg.Kafka.OrderTopic,
		},
		appMetrics,
		logger,
	)

	emailSender := email.NewSender(email.Config{
		Token:  cfg.Email.PostmarkToken,
		From:   cfg.Email.From,
		AppURL: cfg.Email.AppURL,
	}, logger)
	notificationService := service.NewNotificationService(emailSender, userRepo, orderRepo, logger, pool)

	outboxProcessor := worker.NewOutboxProcessor(pool, outboxRepo, producer, logger)
	go outboxProcessor.Start(ctx)

	consumer := kafkaTransport.NewConsumer(notificationService, logger)
	go func() {
		topics := []string{cfg.Kafka.OrderTopic, cfg.Kafka.UserTopic}
		if err := consumer.Start(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, topics); err != nil {
			mylogger.Error(ctx, logger, "Notification consumer stopped", zap.Error(err))
		}
	}()

	app := http.NewApp(cfg.HTTP, cfg.Limiter)
	handlers := &http.Handlers{
		Auth: handler.NewAuthHandler(authService, handler.CookieConfig{
			Secure:    cfg.Auth.CookieSecure,
			AccessTTL: cfg.Auth.AccessTTL,
		}, logger),
		Product:   handler.NewProductHandler(productService, catalogService, logger),
		Catalog:   handler.NewCatalogHandler(catalogService, logger),
		Cart:      handler.NewCartHandler(cartService, logger),
		Watchlist: handler.NewWatchlistHandler(watchlistService, logger),
		Order:     handler.NewOrderHandler(orderService, logger),
		Review:    handler.NewReviewHandler(reviewService, logger),
	}
	http.RegisterRoutes(app, handlers, authService, cfg.Metrics.Path, registry)

	go func() {
		logger.Info("HTTP service listening", zap.String("port", cfg.HTTP.Port))
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			logger.Fatal("Error listening on HTTP port", zap.String("port", cfg.HTTP.Port), zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("Error shutting down HTTP app", zap.Error(err))
	} else {
		logger.Info("HTTP app stopped gracefully")
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Warn("Error shutting down telemetry", zap.Error(err))
	}
}

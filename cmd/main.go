package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"telemart/storecore/internal/config"
	"telemart/storecore/internal/handler"
	"telemart/storecore/internal/model"
	"telemart/storecore/internal/payment"
	"telemart/storecore/internal/repository"
	"telemart/storecore/internal/service"
	"telemart/storecore/internal/worker"
	jwtpkg "telemart/storecore/pkg/jwt"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Connect to PostgreSQL
	db, err := config.NewPostgresDB(cfg.Database.Postgres)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}

	// 4. Auto-migrate if enabled
	if cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		logger.Info("database migration completed")
	}

	// 5. Initialize state store (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		logger.Info("using in-memory state store")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	// 6. Initialize the store
	store := repository.NewPGStore(db)

	// 7. Initialize JWT manager
	jwtManager := jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer)

	// 8. Initialize services
	userService := service.NewUserService(store)
	referralService := service.NewReferralService(store)
	inviteService := service.NewInviteService(store)
	productService := service.NewProductService(store)
	orderService := service.NewOrderService(store, cfg.Order.DefaultRateValidSeconds)
	fulfillmentService := service.NewFulfillmentService(store)

	// 9. Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	inviteHandler := handler.NewInviteHandler(inviteService, cfg.Invite.DefaultTTL)
	referralHandler := handler.NewReferralHandler(referralService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	fulfillmentHandler := handler.NewFulfillmentHandler(fulfillmentService)
	webhookHandler := handler.NewWebhookHandler(orderService, stateStore, logger)

	// 10. Start background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	sweeper := worker.NewSweeper(orderService, stateStore, logger,
		cfg.Sweep.Interval, cfg.Sweep.BatchSize, cfg.Sweep.LeaseTTL)
	go sweeper.Run(workerCtx)

	if cfg.Payment.BaseURL != "" {
		provider := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.APIKey, cfg.Payment.RequestTimeout)
		poller := worker.NewPoller(orderService, store, provider, stateStore, logger,
			cfg.Payment.PollInterval, cfg.Payment.PollBatchSize)
		go poller.Run(workerCtx)
	} else {
		logger.Info("payment provider not configured, polling disabled")
	}

	// 11. Setup router
	router := handler.SetupRouter(cfg, logger, jwtManager,
		userHandler, inviteHandler, referralHandler, productHandler,
		orderHandler, fulfillmentHandler, webhookHandler)

	// 12. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 13. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}

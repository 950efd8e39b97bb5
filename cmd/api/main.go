package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/srgjo27/resort_booking/internal/adapter/handler"
	"github.com/srgjo27/resort_booking/internal/adapter/queue"
	"github.com/srgjo27/resort_booking/internal/adapter/repository/cache"
	"github.com/srgjo27/resort_booking/internal/adapter/repository/postgres"
	"github.com/srgjo27/resort_booking/internal/core/ports"
	"github.com/srgjo27/resort_booking/internal/core/services"
	"github.com/srgjo27/resort_booking/internal/platform/config"
	"github.com/srgjo27/resort_booking/internal/platform/database"
	"github.com/srgjo27/resort_booking/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(ctx, database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	log.Info("connecting to redis", zap.String("addr", cfg.RedisAddr()))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// Status changes still go to the database without a broker; they are
	// just not announced downstream.
	var publisher ports.StatusPublisher
	if cfg.RabbitMQURL != "" {
		pub, closeFn, err := queue.Dial(cfg.RabbitMQURL, queue.DefaultStatusQueue, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, status commands will not be published", zap.Error(err))
		} else {
			publisher = pub
			defer closeFn()
		}
	} else {
		log.Warn("RABBITMQ_URL not set, status commands will not be published")
	}

	ledger := services.NewExtensionLedger(cfg.Currency)
	pricing := services.NewPricingEngine(ledger, services.PricingConfig{
		DownpaymentNumerator:   cfg.DownpaymentPercent,
		DownpaymentDenominator: 100,
	})

	reservationRepo := postgres.NewReservationRepository(db)
	cartStore := cache.NewCartStore(redisClient, cfg.CartTTL)

	bookingService := services.NewBookingService(reservationRepo, publisher, pricing, services.BookingServiceConfig{
		PendingTTL:      cfg.PendingTTL,
		CleanupInterval: cfg.CleanupInterval,
	}, log)
	cartService := services.NewCartService(cartStore, bookingService, pricing, cfg.Currency, services.MergeDuplicates, log)

	router := handler.NewRouter(
		handler.NewBookingHandler(bookingService, ledger, log),
		handler.NewCartHandler(cartService, log),
	)

	go bookingService.RunBackgroundCleanup(ctx)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server startup failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"eventscan/internal/cache"
	"eventscan/internal/config"
	"eventscan/internal/database"
	"eventscan/internal/logging"
	"eventscan/internal/marketdata"
	"eventscan/internal/services"
)

func main() {
	// Load .env if present; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	healthCtx, healthCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer healthCancel()
	if err := db.HealthCheck(healthCtx); err != nil {
		logger.Fatalf("Database health check failed: %v", err)
	}
	if err := redisClient.HealthCheck(healthCtx); err != nil {
		logger.Fatalf("Redis health check failed: %v", err)
	}

	markers := cache.NewDownloadMarkerCache(redisClient.Client, cfg.MarketData.MarkerTTL, logger)
	fetcher := marketdata.NewClient(cfg.MarketData)
	store := database.NewBarRepository(db.Pool, fetcher, markers, logger)
	scanner := services.NewScanner(store, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Scan.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Scan.TimeBudget)
		defer cancel()
	}

	result, err := scanner.Run(ctx)
	if err != nil {
		logger.Fatalf("Scan failed: %v", err)
	}

	for _, event := range result.ConfirmedEvents {
		logger.WithFields(logrus.Fields{
			"symbol":     event.Symbol,
			"event_type": event.EventType,
			"score":      event.Score,
			"tags":       event.Confirmation.StructureTags,
		}).Info("Confirmed event")
	}
}

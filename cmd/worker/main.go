package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medicloud/docs-api/internal/config"
	"github.com/medicloud/docs-api/internal/repository/postgres"
	eventService "github.com/medicloud/docs-api/internal/service/event"
	"github.com/medicloud/docs-api/pkg/logger"
	redisBroker "github.com/medicloud/docs-api/pkg/messaging/redis"
	"github.com/medicloud/docs-api/pkg/metrics"
	"github.com/medicloud/docs-api/pkg/worker"
)

const cleanupInterval = time.Hour

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	outboxRepo := postgres.NewOutboxRepository(db)

	broker, err := redisBroker.NewRedisBroker(redisBroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, log.Zerolog())
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	workerMetrics := metrics.NewMetrics("medicloud", "worker")
	events := eventService.NewService(outboxRepo, log)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
		},
		log,
		workerMetrics,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Start(ctx)
	go runCleanup(ctx, events, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker")
	cancel()

	// Give in-flight batches a moment to finish.
	time.Sleep(time.Second)
	log.Info("worker stopped")
}

// runCleanup periodically deletes processed outbox events older than the
// retention window so the table does not grow without bound.
func runCleanup(ctx context.Context, events *eventService.Service, log *logger.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := events.CleanupProcessedEvents(ctx); err != nil {
				log.Error(err, "outbox cleanup failed")
			}
		}
	}
}

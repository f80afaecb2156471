package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/airwallet/config"
	"github.com/Domenick1991/airwallet/internal/attempts"
	"github.com/Domenick1991/airwallet/internal/bootstrap"
	"github.com/Domenick1991/airwallet/internal/email"
	"github.com/Domenick1991/airwallet/internal/kafka"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, cleanup, err := bootstrap.InitializeLogger(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close()

	tracker := attempts.NewTracker(store.Attempts())
	sender := email.NewSender(logger)

	g, runCtx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer consumer.Close()

		g.Go(func() error {
			logger.Info("Consuming notifications", zap.String("topic", cfg.Kafka.NotificationsTopic))
			err := consumer.Consume(runCtx, sender.Send)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		logger.Warn("No Kafka brokers configured, notifications disabled")
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.Worker.PruneInterval())
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return nil
			case now := <-ticker.C:
				pruned, err := tracker.Prune(runCtx, now, cfg.Worker.AttemptRetention())
				if err != nil {
					logger.Error("Failed to prune booking attempts", zap.Error(err))
					continue
				}
				if pruned > 0 {
					logger.Info("Pruned booking attempts", zap.Int64("count", pruned))
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped", zap.Error(err))
		return
	}
	logger.Info("Worker shut down")
}

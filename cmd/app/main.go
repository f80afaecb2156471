package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airwallet/config"
	"github.com/Domenick1991/airwallet/internal/bootstrap"
	"github.com/Domenick1991/airwallet/internal/cache"
	"github.com/Domenick1991/airwallet/internal/kafka"
	"github.com/Domenick1991/airwallet/internal/service/booking"
	"github.com/Domenick1991/airwallet/internal/service/flights"
	"github.com/Domenick1991/airwallet/internal/service/wallet"
	"go.uber.org/zap"
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

	var (
		flightCache *cache.RedisCache
		producer    *kafka.Producer
	)
	if cfg.Redis.Addr != "" {
		flightCache = cache.NewRedisCache(cfg.Redis, cfg.Booking.FlightsCacheTTLDuration())
		defer flightCache.Close()
		if err := flightCache.Ping(ctx); err != nil {
			logger.Warn("Redis unavailable, flights will be read from the store", zap.Error(err))
		}
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logger.Warn("Kafka unavailable, events will be dropped", zap.Error(err))
		}
	}

	bookingOpts := []booking.BookingServiceOption{
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithPNRMaxAttempts(cfg.Booking.PNRMaxAttempts),
	}
	walletOpts := []wallet.WalletServiceOption{}
	var flightService *flights.FlightService
	if flightCache != nil {
		bookingOpts = append(bookingOpts, booking.WithFlightCache(flightCache))
		flightService = flights.NewFlightService(store.Flights(), flightCache)
	} else {
		flightService = flights.NewFlightService(store.Flights(), nil)
	}

	var bookingProducer booking.Producer
	if producer != nil {
		bookingProducer = producer
		walletOpts = append(walletOpts, wallet.WithEvents(producer, cfg.Kafka.BookingEventsTopic, cfg.Kafka.NotificationsTopic))
	}

	services := bootstrap.Services{
		Flights:  flightService,
		Bookings: booking.NewBookingService(store, bookingProducer, cfg.Kafka.BookingEventsTopic, bookingOpts...),
		Wallet:   wallet.NewWalletService(store, walletOpts...),
		Health:   store.Ping,
	}

	if err := bootstrap.Run(ctx, cfg, logger, services); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

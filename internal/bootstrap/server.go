package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/airwallet/api"
	"github.com/Domenick1991/airwallet/config"
	bookingsapi "github.com/Domenick1991/airwallet/internal/api/bookings_service_api"
	flightsapi "github.com/Domenick1991/airwallet/internal/api/flights_service_api"
	"github.com/Domenick1991/airwallet/internal/api/grpcutil"
	"github.com/Domenick1991/airwallet/internal/service/booking"
	"github.com/Domenick1991/airwallet/internal/service/flights"
	"github.com/Domenick1991/airwallet/internal/service/wallet"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 5 * time.Second

type Services struct {
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	Wallet   wallet.WalletUseCase
	// Health reports storage readiness to /health.
	Health func(ctx context.Context) error
}

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
}

// Run starts the gRPC and HTTP servers and blocks until ctx is cancelled or a
// server fails.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger, svc Services) error {
	s := NewServers(cfg, logger, svc)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}

	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting gRPC server", zap.String("address", cfg.GRPC.Address))
		if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("address", cfg.HTTP.Address))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("Shutting down servers")
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}

func NewServers(cfg *config.Config, logger *zap.Logger, svc Services) *Servers {
	secret := []byte(cfg.Auth.JWTSecret)
	verify := func(token string) (int64, error) {
		return api.ParseToken(secret, token)
	}
	grpcSrv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		grpcutil.UnaryLogging(logger),
		grpcutil.UnaryAuth(verify, flightsapi.ServiceName, healthpb.Health_ServiceDesc.ServiceName),
	))

	flightsapi.RegisterFlightsServiceServer(grpcSrv, flightsapi.NewServer(svc.Flights))
	bookingsapi.RegisterBookingsServiceServer(grpcSrv, bookingsapi.NewServer(svc.Bookings, svc.Wallet))

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus(bookingsapi.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(flightsapi.ServiceName, healthpb.HealthCheckResponse_SERVING)

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(logger, api.RouterConfig{
		JWTSecret:      secret,
		SwaggerEnabled: cfg.HTTP.SwaggerEnabled,
		Health:         svc.Health,
	}, svc.Flights, svc.Bookings, svc.Wallet)

	return &Servers{
		grpcServer: grpcSrv,
		health:     healthSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

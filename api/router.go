package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Domenick1991/airwallet/internal/service/booking"
	"github.com/Domenick1991/airwallet/internal/service/flights"
	"github.com/Domenick1991/airwallet/internal/service/wallet"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type RouterConfig struct {
	JWTSecret      []byte
	SwaggerEnabled bool
	// Health reports storage readiness; nil means always healthy.
	Health func(ctx context.Context) error
}

func NewRouter(
	logger *zap.Logger,
	cfg RouterConfig,
	flightSvc flights.FlightUseCase,
	bookingSvc booking.BookingUseCase,
	walletSvc wallet.WalletUseCase,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), CorrelationID(), RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		if cfg.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.Health(ctx); err != nil {
				logger.Warn("Health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", openAPISpec)
	})
	if cfg.SwaggerEnabled {
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/openapi.json"))))
	}

	apiGroup := router.Group("/api")
	NewFlightHandler(flightSvc).Register(apiGroup.Group("/flights"))

	authed := apiGroup.Group("", Auth(cfg.JWTSecret))
	NewBookingHandler(bookingSvc).Register(authed.Group("/bookings"))
	NewWalletHandler(walletSvc).Register(authed.Group("/wallet"))

	return router
}

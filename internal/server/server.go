package server

import (
	"net/http"
	"time"

	"promptpay-checkout/internal/config"
	"promptpay-checkout/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Server struct {
	echo           *echo.Echo
	paymentHandler *handler.PaymentHandler
}

func NewServer(cfg *config.Config, paymentHandler *handler.PaymentHandler, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(requestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.CORS.AllowOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{echo.HeaderContentType},
		AllowCredentials: true,
	}))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      requestRate(cfg.RateLimit),
			Burst:     cfg.RateLimit.Requests,
			ExpiresIn: time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute,
		},
	)))

	s := &Server{
		echo:           e,
		paymentHandler: paymentHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	s.echo.POST("/checkout", s.paymentHandler.Checkout)
	s.echo.GET("/payment-status/:chargeId", s.paymentHandler.PaymentStatus)
	s.echo.GET("/orders/:orderId", s.paymentHandler.GetOrder)
	s.echo.POST("/webhook", s.paymentHandler.Webhook)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Error(v.Error),
			)
			return nil
		},
	})
}

// requestRate spreads the configured per-window budget over the window,
// e.g. 100 requests / 15 min per client IP.
func requestRate(cfg config.RateLimit) rate.Limit {
	window := time.Duration(cfg.WindowMinutes) * time.Minute
	if window <= 0 {
		window = 15 * time.Minute
	}
	return rate.Limit(float64(cfg.Requests) / window.Seconds())
}

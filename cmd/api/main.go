package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"promptpay-checkout/internal/client"
	"promptpay-checkout/internal/config"
	"promptpay-checkout/internal/handler"
	"promptpay-checkout/internal/logger"
	"promptpay-checkout/internal/repository"
	"promptpay-checkout/internal/server"
	"promptpay-checkout/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := client.InitMysqlClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	omiseClient := client.NewOmiseClient(&cfg.Omise)

	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	reconciler := service.NewReconciler(orderRepo, log)
	paymentService := service.NewPaymentService(omiseClient, orderRepo, reconciler, log)
	webhookService := service.NewWebhookService(omiseClient, reconciler, webhookEventRepo, cfg.Omise.TrustWebhookPayload, log)

	paymentHandler := handler.NewPaymentHandler(paymentService, webhookService, log)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(cfg, paymentHandler, log)

	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}

package main

import (
	"context"
	"dryclean-pos/internal/client"
	"dryclean-pos/internal/config"
	"dryclean-pos/internal/repository"
	"dryclean-pos/internal/server"
	"dryclean-pos/internal/service"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

const textLogHeader = "${time_rfc3339} ${level} ${short_file}:${line}"

// newLogger builds the echo logger and applies the same level and header to
// the package-level logger used by the services.
func newLogger(cfg *config.Log) *log.Logger {
	logger := log.New("dryclean-pos")

	level := log.INFO
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = log.DEBUG
	case "warn":
		level = log.WARN
	case "error":
		level = log.ERROR
	}
	logger.SetLevel(level)
	log.SetLevel(level)

	if cfg.Format != "json" {
		logger.SetHeader(textLogHeader)
		log.SetHeader(textLogHeader)
	}
	return logger
}

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		log.Errorf("Failed to parse config: %v", err)
		os.Exit(1)
	}

	logger := newLogger(&cfg.Log)

	// money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	db, err := client.InitDBClient(&cfg.Database)
	if err != nil {
		logger.Fatalf("init database: %v", err)
	}

	paypalClient := client.NewPaypalClient(&cfg.Paypal)
	var cardCharger client.CardCharger
	if cfg.BrainTree.Enabled() {
		cardCharger = client.NewBraintreeClient(&cfg.BrainTree)
	} else {
		logger.Warn("Braintree is not configured, card payments use the hosted checkout only")
	}

	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	loyaltyRepo := repository.NewLoyaltyRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	businessSettings := service.NewBusinessSettingsService(settingsRepo, cfg.Currency)
	settingsService := service.NewLoyaltySettingsService(loyaltyRepo)
	loyaltyService := service.NewLoyaltyService(db, settingsService, customerRepo, orderRepo, loyaltyRepo)
	orderService := service.NewOrderService(db, settingsService, loyaltyService, orderRepo, customerRepo, catalogRepo)
	paymentService := service.NewPaymentService(
		db,
		paypalClient, cardCharger,
		cfg.BaseURL,
		businessSettings, settingsService, loyaltyService,
		orderRepo,
		customerRepo,
		paymentRepo,
		webhookEventRepo,
	)

	srv := server.NewServer(server.Services{
		User:            service.NewUserService(userRepo, []byte(cfg.Auth.JWTSecret), cfg.Auth.JWTTTL),
		Customer:        service.NewCustomerService(customerRepo, orderRepo),
		Catalog:         service.NewCatalogService(catalogRepo),
		Order:           orderService,
		Payment:         paymentService,
		Loyalty:         loyaltyService,
		LoyaltySettings: settingsService,
		Report:          service.NewReportService(orderRepo, customerRepo),
		Settings:        businessSettings,
	}, []byte(cfg.Auth.JWTSecret), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.RunExpirySweeper(ctx, loyaltyService, cfg.Loyalty.ExpirySweepInterval)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	logger.Infof("Starting HTTP server on %s (%s)", serverAddr, cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("Signal received, starting graceful shutdown...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server shutdown error: %v", err)
	}
}

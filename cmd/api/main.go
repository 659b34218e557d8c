package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kursadbilgin/reminder-relay/internal/config"
	"github.com/kursadbilgin/reminder-relay/internal/handler"
	"github.com/kursadbilgin/reminder-relay/internal/observability"
	"github.com/kursadbilgin/reminder-relay/internal/provider"
	"github.com/kursadbilgin/reminder-relay/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to read .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	providers, err := buildProviders(cfg, logger)
	if err != nil {
		logger.Fatal("provider initialization failed", zap.Error(err))
	}

	dispatcher, err := service.NewDispatcher(providers, cfg.ProviderTimeout(), logger)
	if err != nil {
		logger.Fatal("dispatcher initialization failed", zap.Error(err))
	}
	dispatcher.SetMetrics(metrics)

	app, err := handler.NewApp(handler.AppConfig{
		Dispatcher:     dispatcher,
		Logger:         logger,
		Metrics:        metrics,
		AllowedOrigins: cfg.AllowedOrigins(),
		ClinicName:     cfg.ClinicName,
		WriteTimeout:   cfg.ProviderTimeout() + 5*time.Second,
	})
	if err != nil {
		logger.Fatal("http app initialization failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		logger.Info("reminder-relay api started", zap.Int("port", cfg.APIPort))
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down reminder-relay api")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("reminder-relay api stopped with error", zap.Error(err))
	}
}

// buildProviders constructs every provider client up front. Missing secrets
// only produce a warning here; requests needing them fail individually.
func buildProviders(cfg *config.Config, logger *zap.Logger) ([]provider.Provider, error) {
	client := provider.NewHTTPClient(cfg.ProviderTimeout())

	telegram, err := provider.NewTelegramProvider(cfg.Telegram(), client)
	if err != nil {
		return nil, err
	}
	sendGrid, err := provider.NewSendGridProvider(cfg.SendGrid(), cfg.ClinicName, client)
	if err != nil {
		return nil, err
	}
	mercadoPago, err := provider.NewMercadoPagoProvider(cfg.MercadoPago(), client)
	if err != nil {
		return nil, err
	}

	providers := []provider.Provider{telegram, sendGrid, mercadoPago}
	for _, p := range providers {
		if err := p.Ready(); err != nil {
			logger.Warn("provider not configured", zap.String("kind", p.Kind().String()), zap.Error(err))
		}
	}

	return providers, nil
}

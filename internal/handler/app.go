package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/kursadbilgin/reminder-relay/internal/observability"
	"github.com/kursadbilgin/reminder-relay/internal/transport"
	"go.uber.org/zap"
)

const (
	appName     = "reminder-relay"
	readTimeout = 15 * time.Second
	bodyLimit   = 64 * 1024
)

// AppConfig carries the dependencies NewApp wires into the HTTP surface.
type AppConfig struct {
	Dispatcher     Dispatcher
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string
	ClinicName     string
	// WriteTimeout must exceed the provider timeout so dispatch results are delivered.
	WriteTimeout time.Duration
}

// NewApp builds the fiber application: request IDs, CORS, metrics, panic
// recovery, then routes.
func NewApp(cfg AppConfig) (*fiber.App, error) {
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:               appName,
		ErrorHandler:          transport.ErrorHandler(cfg.Logger),
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
		ReadTimeout:           readTimeout,
		WriteTimeout:          cfg.WriteTimeout,
	})

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(transport.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		app.Use(cfg.Metrics.HTTPMiddleware())
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}
	app.Use(recover.New())

	RegisterHealthRoutes(app, cfg.ClinicName)
	if err := RegisterNotificationRoutes(app, cfg.Dispatcher); err != nil {
		return nil, err
	}

	return app, nil
}

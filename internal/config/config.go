package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

// DefaultAllowedOrigins is the deployment's front-end hosting plus local development.
var DefaultAllowedOrigins = []string{
	"https://dentasoft-8f0a8.web.app",
	"https://dentasoft-8f0a8.firebaseapp.com",
	"http://127.0.0.1:5501",
	"http://localhost:5501",
}

// Provider secrets are optional here: a missing secret fails the requests that
// need it, not process startup.
type Config struct {
	APIPort                int    `env:"PORT,default=3000"`
	LogLevel               string `env:"LOG_LEVEL,default=info"`
	ClinicName             string `env:"CLINIC_NAME,default=Dentasoft"`
	AllowedOriginsRaw      string `env:"CORS_ALLOWED_ORIGINS"`
	ProviderTimeoutSeconds int    `env:"PROVIDER_TIMEOUT_SECONDS,default=10"`

	TelegramToken     string `env:"TELEGRAM_TOKEN"`
	TelegramAPIURL    string `env:"TELEGRAM_API_URL,default=https://api.telegram.org"`
	SendGridAPIKey    string `env:"SENDGRID_API_KEY"`
	SendGridFrom      string `env:"SENDGRID_FROM"`
	SendGridAPIURL    string `env:"SENDGRID_API_URL,default=https://api.sendgrid.com"`
	MercadoPagoToken  string `env:"MP_ACCESS_TOKEN"`
	MercadoPagoAPIURL string `env:"MP_API_URL,default=https://api.mercadopago.com"`
}

// ProviderConfig is the read-only view a single provider client is built from.
type ProviderConfig struct {
	Token   string
	Sender  string
	BaseURL string
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.APIPort < 1 || cfg.APIPort > 65535 {
		return nil, fmt.Errorf("failed to load config: invalid PORT %d", cfg.APIPort)
	}
	return &cfg, nil
}

func (c *Config) Telegram() ProviderConfig {
	return ProviderConfig{
		Token:   strings.TrimSpace(c.TelegramToken),
		BaseURL: strings.TrimSpace(c.TelegramAPIURL),
	}
}

func (c *Config) SendGrid() ProviderConfig {
	return ProviderConfig{
		Token:   strings.TrimSpace(c.SendGridAPIKey),
		Sender:  strings.TrimSpace(c.SendGridFrom),
		BaseURL: strings.TrimSpace(c.SendGridAPIURL),
	}
}

func (c *Config) MercadoPago() ProviderConfig {
	return ProviderConfig{
		Token:   strings.TrimSpace(c.MercadoPagoToken),
		BaseURL: strings.TrimSpace(c.MercadoPagoAPIURL),
	}
}

// AllowedOrigins returns the CORS allow-list, falling back to DefaultAllowedOrigins.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(c.AllowedOriginsRaw, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		return append([]string(nil), DefaultAllowedOrigins...)
	}
	return origins
}

func (c *Config) ProviderTimeout() time.Duration {
	if c.ProviderTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

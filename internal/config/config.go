package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Server
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	// Storage
	PostgresURL string `env:"POSTGRES_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"mlmadmin.db"`
	RedisURL    string `env:"REDIS_URL"`

	// Auth
	JWTSecret  string        `env:"JWT_SECRET" envDefault:"change-me"`
	JWTTTL     time.Duration `env:"JWT_TTL" envDefault:"1h"`
	CSRFSecret string        `env:"CSRF_SECRET" envDefault:"change-me-too"`

	// Mail
	MailProvider string `env:"MAIL_PROVIDER" envDefault:"smtp"` // "smtp" | "brevo"
	SMTPHost     string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPUseSSL   bool   `env:"SMTP_USE_SSL" envDefault:"false"`
	BrevoAPIKey  string `env:"BREVO_API_KEY"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"no-reply@example.com"`
	MailFromName string `env:"MAIL_FROM_NAME" envDefault:"MLM Admin"`
	AppName      string `env:"APP_NAME" envDefault:"MLM Admin"`
	AppBaseURL   string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	// Gateways
	CardGatewayURL     string `env:"CARD_GATEWAY_URL" envDefault:"https://api.cardprocessor.example"`
	CardGatewayKey     string `env:"CARD_GATEWAY_KEY"`
	PayPalBaseURL      string `env:"PAYPAL_BASE_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	PayPalClientID     string `env:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string `env:"PAYPAL_CLIENT_SECRET"`

	// Multilevel
	Currency         string        `env:"CURRENCY" envDefault:"USD"`
	MaxUplineDepth   int           `env:"MAX_UPLINE_DEPTH" envDefault:"5"`
	RenewalGraceDays int           `env:"RENEWAL_GRACE_DAYS" envDefault:"3"`
	RenewalInterval  time.Duration `env:"RENEWAL_INTERVAL" envDefault:"1h"`

	DashboardCacheTTL time.Duration `env:"DASHBOARD_CACHE_TTL" envDefault:"60s"`
}

func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using process environment")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.MaxUplineDepth < 1 {
		return nil, fmt.Errorf("MAX_UPLINE_DEPTH must be >= 1, got %d", cfg.MaxUplineDepth)
	}
	return cfg, nil
}

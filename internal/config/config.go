package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrBackendURLRequired = errors.New("BACKEND_BASE_URL is required")

type Config struct {
	Port string `mapstructure:"PORT"`

	// BackendBaseURL apunta al API que expone /api/species y /api/animal-consults.
	BackendBaseURL string        `mapstructure:"BACKEND_BASE_URL"`
	HTTPTimeout    time.Duration `mapstructure:"HTTP_TIMEOUT"`

	SuccessResetDelay time.Duration `mapstructure:"SUCCESS_RESET_DELAY"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	AppName   string `mapstructure:"APP_NAME"`

	// Opcional: si viene, la identidad del veterinario se resuelve contra Postgres.
	DatabaseDSN string `mapstructure:"DB_DSN"`

	// Opcional: si viene, se verifican bearer tokens HS256. Si no, modo dev (X-Debug-User-ID).
	AuthJWTSecret string `mapstructure:"AUTH_JWT_SECRET"`

	// Opcional: tokens opacos validados contra un servicio de identidad remoto.
	AuthVerifyURL    string `mapstructure:"AUTH_VERIFY_URL"`
	AuthAPIKey       string `mapstructure:"AUTH_API_KEY"`
	AuthAPIKeyHeader string `mapstructure:"AUTH_API_KEY_HEADER"`

	DefaultVeterinarianID string `mapstructure:"DEFAULT_VETERINARIAN_ID"`
}

var keys = []string{
	"PORT",
	"BACKEND_BASE_URL",
	"HTTP_TIMEOUT",
	"SUCCESS_RESET_DELAY",
	"SESSION_TTL",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"APP_NAME",
	"DB_DSN",
	"AUTH_JWT_SECRET",
	"AUTH_VERIFY_URL",
	"AUTH_API_KEY",
	"AUTH_API_KEY_HEADER",
	"DEFAULT_VETERINARIAN_ID",
}

// Load lee env vars (y .env si existe). No valida; ver Validate.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("SUCCESS_RESET_DELAY", "2s")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("APP_NAME", "vet-consult-intake")
	v.SetDefault("DEFAULT_VETERINARIAN_ID", "demo-vet-id")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env es opcional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.BackendBaseURL = strings.TrimRight(strings.TrimSpace(cfg.BackendBaseURL), "/")
	return cfg, nil
}

// Validate exige lo mínimo para hablar con el backend.
func (c *Config) Validate() error {
	if c.BackendBaseURL == "" {
		return ErrBackendURLRequired
	}
	if _, err := url.ParseRequestURI(c.BackendBaseURL); err != nil {
		return fmt.Errorf("BACKEND_BASE_URL is not a valid url: %w", err)
	}
	if c.SuccessResetDelay < 0 {
		return fmt.Errorf("SUCCESS_RESET_DELAY must not be negative, got %s", c.SuccessResetDelay)
	}
	if c.AuthVerifyURL != "" && c.AuthAPIKey == "" {
		return errors.New("AUTH_API_KEY is required with AUTH_VERIFY_URL")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

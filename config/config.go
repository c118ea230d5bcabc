// Package config handles loading and managing application configuration.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Logging configuration
	Logging LoggingConfig

	// Payment/payout provider configuration
	Providers ProvidersConfig

	// Webhook authentication settings
	Webhook WebhookConfig

	// Storefront backend configuration
	Storefront StorefrontConfig

	// Redis configuration (optional, for webhook deduplication)
	Redis RedisConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port    string
	GinMode string // "debug", "release", or "test"
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "text" or "json"
}

// ProvidersConfig holds provider selection and per-provider credentials.
type ProvidersConfig struct {
	// Default is the provider used when the caller does not name one.
	Default string

	// CallTimeout bounds every outbound provider call.
	CallTimeout time.Duration

	MercadoPago MercadoPagoConfig
	Atlas       AtlasConfig
}

// MercadoPagoConfig holds Mercado Pago credentials.
type MercadoPagoConfig struct {
	AccessToken string
}

// AtlasConfig holds credentials for the Atlas cross-border payout API.
type AtlasConfig struct {
	BaseURL   string
	APIKey    string
	ProfileID string
	Sandbox   bool
}

// WebhookConfig holds webhook authentication settings.
type WebhookConfig struct {
	// Secret is the pre-shared HMAC secret. Empty means misconfigured;
	// the webhook endpoint fails closed with a server error.
	Secret string
}

// StorefrontConfig holds the storefront backend callback configuration.
type StorefrontConfig struct {
	BaseURL string
	APIKey  string
}

// RedisConfig holds the optional Redis connection settings.
type RedisConfig struct {
	Addr     string // empty disables Redis; an in-memory store is used instead
	Password string
	DB       int
}

// Load reads configuration from environment variables.
// Returns a Config struct with all settings populated.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Providers: ProvidersConfig{
			Default:     getEnv("PAYMENT_PROVIDER", "mercadopago"),
			CallTimeout: getEnvDuration("PROVIDER_CALL_TIMEOUT", 30*time.Second),
			MercadoPago: MercadoPagoConfig{
				AccessToken: getEnv("MP_ACCESS_TOKEN", ""),
			},
			Atlas: AtlasConfig{
				BaseURL:   getEnv("ATLAS_BASE_URL", "https://api.sandbox.atlasremit.com"),
				APIKey:    getEnv("ATLAS_API_KEY", ""),
				ProfileID: getEnv("ATLAS_PROFILE_ID", ""),
				Sandbox:   getEnvBool("ATLAS_SANDBOX", true),
			},
		},
		Webhook: WebhookConfig{
			Secret: getEnv("WEBHOOK_SECRET", ""),
		},
		Storefront: StorefrontConfig{
			BaseURL: getEnv("STOREFRONT_CORE_URL", "http://localhost:8000"),
			APIKey:  getEnv("STOREFRONT_CORE_API_KEY", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}
}

// getEnv retrieves an environment variable with a fallback default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer with a fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean with a fallback.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration retrieves an environment variable as a duration with a fallback.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

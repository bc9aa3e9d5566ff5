package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Shopify  ShopifyConfig  `yaml:"shopify"`
	Forecast ForecastConfig `yaml:"forecast"`
	Insight  InsightConfig  `yaml:"insight"`
	Postgres PostgresConfig `yaml:"postgres"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address         string          `yaml:"address"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	AllowedOrigins  []string        `yaml:"allowedOrigins"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
	Retry           RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// ShopifyConfig holds app credentials and embedded-app settings.
type ShopifyConfig struct {
	APIKey             string        `yaml:"apiKey"`
	APISecret          string        `yaml:"apiSecret"`
	Scopes             []string      `yaml:"scopes"`
	AppURL             string        `yaml:"appUrl"`
	TokenEncryptionKey string        `yaml:"tokenEncryptionKey"`
	DevShopID          string        `yaml:"devShopId"`
	SessionLeeway      time.Duration `yaml:"sessionLeeway"`
}

// ForecastConfig bounds forecast requests.
type ForecastConfig struct {
	DefaultHorizonDays int `yaml:"defaultHorizonDays"`
	MaxHorizonDays     int `yaml:"maxHorizonDays"`
	MaxLag             int `yaml:"maxLag"`
}

// InsightConfig controls stats snapshot caching.
type InsightConfig struct {
	StatsTTL time.Duration `yaml:"statsTtl"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("SHOPIFY_API_KEY"); v != "" {
		cfg.Shopify.APIKey = v
	}
	if v := os.Getenv("SHOPIFY_API_SECRET"); v != "" {
		cfg.Shopify.APISecret = v
	}
	if v := os.Getenv("SHOPIFY_SCOPES"); v != "" {
		cfg.Shopify.Scopes = splitList(v)
	}
	if v := os.Getenv("SHOPIFY_APP_URL"); v != "" {
		cfg.Shopify.AppURL = v
	}
	if v := os.Getenv("SHOPIFY_TOKEN_ENCRYPTION_KEY"); v != "" {
		cfg.Shopify.TokenEncryptionKey = v
	}
	if v := os.Getenv("DEFAULT_SHOP_ID"); v != "" {
		cfg.Shopify.DevShopID = v
	}
	if v := os.Getenv("SHOPIFY_SESSION_LEEWAY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Shopify.SessionLeeway = parsed
		}
	}
	if v := os.Getenv("FORECAST_DEFAULT_HORIZON_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Forecast.DefaultHorizonDays = parsed
		}
	}
	if v := os.Getenv("FORECAST_MAX_HORIZON_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Forecast.MaxHorizonDays = parsed
		}
	}
	if v := os.Getenv("FORECAST_MAX_LAG"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Forecast.MaxLag = parsed
		}
	}
	if v := os.Getenv("INSIGHT_STATS_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Insight.StatsTTL = parsed
		}
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Valkey.Addr = v
	}
	if v := os.Getenv("VALKEY_PREFIX"); v != "" {
		cfg.Valkey.Prefix = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins: []string{
				"https://admin.shopify.com",
			},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/webhooks",
				},
			},
		},
		Shopify: ShopifyConfig{
			Scopes:        []string{"read_products", "read_orders"},
			AppURL:        "http://localhost:8080",
			SessionLeeway: 5 * time.Second,
		},
		Forecast: ForecastConfig{
			DefaultHorizonDays: 30,
			MaxHorizonDays:     365,
			MaxLag:             8,
		},
		Insight: InsightConfig{
			StatsTTL: 24 * time.Hour,
		},
		Postgres: PostgresConfig{
			DSN:      "",
			MaxConns: 4,
			MinConns: 0,
		},
		Valkey: ValkeyConfig{
			Enabled: false,
			Addr:    "",
			Prefix:  "merchant-insights",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.Shopify.SessionLeeway < 0 {
		return errors.New("shopify.sessionLeeway cannot be negative")
	}
	if c.Shopify.APISecret != "" && strings.TrimSpace(c.Shopify.APIKey) == "" {
		return errors.New("shopify.apiKey cannot be empty when apiSecret is set")
	}
	if c.Shopify.APISecret != "" && strings.TrimSpace(c.Shopify.DevShopID) != "" {
		return errors.New("shopify.devShopId must be empty when apiSecret is set")
	}
	if c.Forecast.MaxHorizonDays <= 0 {
		return errors.New("forecast.maxHorizonDays must be positive")
	}
	if c.Forecast.DefaultHorizonDays <= 0 || c.Forecast.DefaultHorizonDays > c.Forecast.MaxHorizonDays {
		return errors.New("forecast.defaultHorizonDays must be between 1 and forecast.maxHorizonDays")
	}
	if c.Forecast.MaxLag <= 0 {
		return errors.New("forecast.maxLag must be positive")
	}
	if c.Insight.StatsTTL < 0 {
		return errors.New("insight.statsTtl cannot be negative")
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when valkey cache is enabled")
	}
	return nil
}

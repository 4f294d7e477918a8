// Package config loads settings for the transfer explorer and proxy.
//
// Values are layered: built-in defaults, then an optional YAML file, then a
// .env file, then the process environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/jrh3k5/transfer-explorer/internal/alchemy"
)

// Config is the full set of settings.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Alchemy AlchemyConfig `yaml:"alchemy"`
	RPC     RPCConfig     `yaml:"rpc"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig describes the indexing API that transfers are fetched from.
type APIConfig struct {
	BaseURL   string          `yaml:"base_url"  env:"API_BASE_URL"` // when empty, Alchemy is queried directly
	Timeout   time.Duration   `yaml:"timeout"   env:"API_TIMEOUT"`
	PageSize  int             `yaml:"page_size" env:"API_PAGE_SIZE"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig throttles outgoing requests. A non-positive RPS disables throttling.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"   env:"API_RATE_LIMIT_RPS"`
	Burst int     `yaml:"burst" env:"API_RATE_LIMIT_BURST"`
}

// AlchemyConfig locates the Alchemy JSON-RPC endpoint.
type AlchemyConfig struct {
	URL    string `yaml:"url"     env:"ALCHEMY_URL"`
	APIKey string `yaml:"api_key" env:"ALCHEMY_API_KEY"`
}

// RPCConfig locates the node used for token contract calls.
type RPCConfig struct {
	URL string `yaml:"url" env:"RPC_URL"` // when empty, the Alchemy endpoint is used
}

// ServerConfig controls the transfer proxy.
type ServerConfig struct {
	Listen         string        `yaml:"listen"          env:"LISTEN_ADDRESS"`
	CacheTTL       time.Duration `yaml:"cache_ttl"       env:"CACHE_TTL"`
	CacheSize      int           `yaml:"cache_size"      env:"CACHE_SIZE"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"FRONTEND_URL"`
	AllowedMethods []string      `yaml:"allowed_methods" env:"ALLOWED_METHODS"`
	AllowedHeaders []string      `yaml:"allowed_headers" env:"ALLOWED_HEADERS"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// SlogLevel parses the configured level name, e.g. "debug" or "WARN".
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': %w", l.Level, err)
	}

	return level, nil
}

// Default returns the settings used when nothing else is configured.
func Default() *Config {
	return &Config{
		API: APIConfig{
			Timeout:  30 * time.Second, //nolint:mnd
			PageSize: 100,              //nolint:mnd
			RateLimit: RateLimitConfig{
				RPS:   5, //nolint:mnd
				Burst: 1,
			},
		},
		Alchemy: AlchemyConfig{
			URL: "https://eth-mainnet.g.alchemy.com/v2/",
		},
		Server: ServerConfig{
			Listen:         ":8000",
			CacheTTL:       time.Hour,
			CacheSize:      1024, //nolint:mnd
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. yamlPath may be empty, in which case no file is read;
// a non-empty path must exist. dotenvFiles default to ".env" in the working directory
// and are skipped when missing.
func Load(yamlPath string, dotenvFiles ...string) (*Config, error) {
	cfg := Default()

	if yamlPath != "" {
		if err := readYAMLFile(yamlPath, cfg); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(dotenvFiles...); err != nil {
		slog.Debug("No .env file loaded; relying on environment variables", "error", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	var errs []error

	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout))
	}

	if c.API.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("api.page_size must be positive, got %d", c.API.PageSize))
	}

	if c.Server.CacheSize > 0 && c.Server.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("server.cache_ttl must be positive when caching, got %s", c.Server.CacheTTL))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// AlchemyEndpoint returns the Alchemy URL with the API key appended.
func (c *Config) AlchemyEndpoint() string {
	return alchemy.EndpointURL(c.Alchemy.URL, c.Alchemy.APIKey)
}

// RPCEndpoint returns the node URL for token calls, falling back to Alchemy.
func (c *Config) RPCEndpoint() string {
	if c.RPC.URL != "" {
		return c.RPC.URL
	}

	return c.AlchemyEndpoint()
}

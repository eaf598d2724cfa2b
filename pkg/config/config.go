package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Barneyjm/camino-mcp/pkg/camino"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when no Camino API key is configured.
var ErrMissingAPIKey = errors.New("CAMINO_API_KEY environment variable is required")

// Config holds all application configuration.
type Config struct {
	Camino  CaminoConfig `mapstructure:"camino"`
	HTTP    HTTPConfig   `mapstructure:"http"`
	Debug   bool         `mapstructure:"debug"`
	Env     string       `mapstructure:"env"`
	LogFile string       `mapstructure:"log_file"`
}

// CaminoConfig describes how to reach the upstream API.
type CaminoConfig struct {
	APIKey    string  `mapstructure:"api_key"`
	BaseURL   string  `mapstructure:"base_url"`
	TimeoutMS int     `mapstructure:"timeout_ms"`
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// Timeout returns the per-call upstream timeout.
func (c CaminoConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// RequireAPIKey reports ErrMissingAPIKey when the key is empty.
func (c CaminoConfig) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"camino.api_key":    "CAMINO_API_KEY",
	"camino.base_url":   "CAMINO_API_BASE_URL",
	"camino.timeout_ms": "API_TIMEOUT",
	"camino.rate_limit": "CAMINO_RATE_LIMIT",
	"camino.rate_burst": "CAMINO_RATE_BURST",
	"debug":             "MCP_DEBUG",
	"env":               "NODE_ENV",
	"log_file":          "CAMINO_LOG_FILE",
	"http.addr":         "CAMINO_HTTP_ADDR",
}

// Load reads configuration from the optional file at path and the
// environment. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("camino.api_key", "")
	v.SetDefault("camino.base_url", camino.DefaultBaseURL)
	v.SetDefault("camino.timeout_ms", int(camino.DefaultTimeout/time.Millisecond))
	v.SetDefault("camino.rate_limit", 0)
	v.SetDefault("camino.rate_burst", 1)
	v.SetDefault("debug", false)
	v.SetDefault("env", "")
	v.SetDefault("log_file", "camino-mcp.log")
	v.SetDefault("http.addr", ":8080")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.Set("debug", truthy(v.GetString("debug")))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.EqualFold(cfg.Env, "development") {
		cfg.Debug = true
	}
	cfg.Camino.APIKey = strings.TrimSpace(cfg.Camino.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// truthy reads a loosely written switch such as MCP_DEBUG=yes. Empty, false,
// 0, no and off are off; anything else is on.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0", "no", "off":
		return false
	}
	return true
}

// Validate checks that configuration values are sane. A missing API key is
// not a validation error; see CaminoConfig.RequireAPIKey.
func (c *Config) Validate() error {
	var errs []string

	if u, err := url.Parse(c.Camino.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("camino.base_url must be an http(s) URL, got %q", c.Camino.BaseURL))
	}
	if c.Camino.TimeoutMS <= 0 {
		errs = append(errs, fmt.Sprintf("camino.timeout_ms must be positive, got %d", c.Camino.TimeoutMS))
	}
	if c.Camino.RateLimit < 0 {
		errs = append(errs, "camino.rate_limit must not be negative")
	}
	if c.Camino.RateBurst < 0 {
		errs = append(errs, "camino.rate_burst must not be negative")
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, "http.addr is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/obsidianstack/tgwebhooks-exporter/internal/registry"
	"github.com/obsidianstack/tgwebhooks-exporter/internal/scraper"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultListenAddr  = ":8000"
	DefaultMetricsPath = "/metrics"
	DefaultLogLevel    = "info"
)

// Config is the full exporter configuration.
type Config struct {
	// ListenAddr is the host:port the metrics endpoint listens on.
	ListenAddr string `yaml:"listen_addr"`

	// MetricsPath is the URL path serving the exposition.
	MetricsPath string `yaml:"metrics_path"`

	// APIBaseURL is the Bot API root; getWebhookInfo is appended per bot.
	APIBaseURL string `yaml:"api_base_url"`

	// RequestTimeout bounds each getWebhookInfo call.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	UserAgent string `yaml:"user_agent"`

	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	// TokensEnv names the environment variable holding the bot token map.
	TokensEnv string `yaml:"tokens_env"`

	// RuntimeMetrics adds the Go runtime and process collectors.
	RuntimeMetrics bool `yaml:"runtime_metrics"`
}

// Load reads and parses the YAML config file at path. An empty path yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		ListenAddr:     DefaultListenAddr,
		MetricsPath:    DefaultMetricsPath,
		APIBaseURL:     scraper.DefaultBaseURL,
		RequestTimeout: scraper.DefaultTimeout,
		UserAgent:      scraper.DefaultUserAgent,
		LogLevel:       DefaultLogLevel,
		TokensEnv:      registry.DefaultEnv,
		RuntimeMetrics: true,
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if !strings.HasPrefix(cfg.MetricsPath, "/") {
		return fmt.Errorf("metrics_path must start with /, got %q", cfg.MetricsPath)
	}
	if cfg.MetricsPath == "/" || cfg.MetricsPath == "/healthz" {
		return fmt.Errorf("metrics_path %q is reserved", cfg.MetricsPath)
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return fmt.Errorf("api_base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_base_url must be an absolute http(s) URL, got %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.TokensEnv == "" {
		return fmt.Errorf("tokens_env is required")
	}
	return nil
}

// FetcherOptions returns the scraper settings carried by cfg.
func (c *Config) FetcherOptions() scraper.Options {
	return scraper.Options{
		BaseURL:   c.APIBaseURL,
		Timeout:   c.RequestTimeout,
		UserAgent: c.UserAgent,
	}
}

// ParseLevel maps a log_level string onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level: unknown level %q", s)
	}
	return lvl, nil
}

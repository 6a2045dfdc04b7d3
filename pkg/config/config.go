package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// DatabaseConfig selects the relational export target.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "postgres", "sqlite" or empty to disable
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig holds the Redis connection used by the service mode.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Config holds the application configuration.
type Config struct {
	WebsitesFile string `mapstructure:"websites_file"`
	MaxThreads   int    `mapstructure:"max_threads"`
	DownloadDir  string `mapstructure:"download_dir"`
	OutputXLSX   string `mapstructure:"output_xlsx"`

	Browser             string   `mapstructure:"browser"` // "chromedp" or "static"
	SiteTimeoutSeconds  int      `mapstructure:"site_timeout_seconds"`
	FetchTimeoutSeconds int      `mapstructure:"fetch_timeout_seconds"`
	MaxPDFBytes         int64    `mapstructure:"max_pdf_bytes"`
	UserAgents          []string `mapstructure:"user_agents"`
	Proxies             []string `mapstructure:"proxies"`

	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`

	ServerPort  string `mapstructure:"server_port"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	LogLevel    string `mapstructure:"log_level"`
	DedupHours  int    `mapstructure:"dedup_hours"`
}

// SiteTimeout is the budget for scraping one site, including its PDF downloads.
func (c *Config) SiteTimeout() time.Duration {
	return time.Duration(c.SiteTimeoutSeconds) * time.Second
}

// FetchTimeout is the budget for a single HEAD or GET request.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// DedupWindow is how long a submitted site is considered recently scraped.
func (c *Config) DedupWindow() time.Duration {
	return time.Duration(c.DedupHours) * time.Hour
}

// Load reads the JSON config file at path, applies PDFSCRAPER_* environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("PDFSCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only reaches keys viper already knows; keys without a
	// default are bound explicitly so their env overrides apply too.
	for _, key := range []string{"websites_file", "max_threads", "user_agents", "proxies"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetDefault("download_dir", "pdf_files")
	v.SetDefault("output_xlsx", "pdf_metadata.xlsx")
	v.SetDefault("browser", "chromedp")
	v.SetDefault("site_timeout_seconds", 60)
	v.SetDefault("fetch_timeout_seconds", 60)
	v.SetDefault("max_pdf_bytes", 50*1024*1024)
	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("server_port", "8080")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("dedup_hours", 48)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields without which the process must not start.
func (c *Config) Validate() error {
	switch {
	case c.WebsitesFile == "":
		return fmt.Errorf("%w: websites_file is required", ErrInvalidConfig)
	case c.MaxThreads < 1:
		return fmt.Errorf("%w: max_threads must be >= 1, got %d", ErrInvalidConfig, c.MaxThreads)
	case c.DownloadDir == "":
		return fmt.Errorf("%w: download_dir must not be empty", ErrInvalidConfig)
	case c.Browser != "chromedp" && c.Browser != "static":
		return fmt.Errorf("%w: unknown browser %q", ErrInvalidConfig, c.Browser)
	case c.SiteTimeoutSeconds < 1 || c.FetchTimeoutSeconds < 1:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	case c.MaxPDFBytes < 1:
		return fmt.Errorf("%w: max_pdf_bytes must be positive", ErrInvalidConfig)
	}
	switch c.Database.Driver {
	case "":
	case "postgres", "sqlite":
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: database.dsn is required for driver %s", ErrInvalidConfig, c.Database.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	return nil
}

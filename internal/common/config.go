package common

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the root application configuration: built-in defaults, then
// TOML files, then command-line flag overrides. No environment variables
// are read.
type Config struct {
	Environment string       `toml:"environment"` // "development" or "production"
	Server      ServerConfig `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Crawl       CrawlConfig   `toml:"crawl"`
	Archive     ArchiveConfig `toml:"archive"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	SQLite SQLiteConfig `toml:"sqlite"`
}

// SQLiteConfig mirrors the teacher's connection-tuning knobs.
type SQLiteConfig struct {
	Path            string `toml:"path"`
	WALMode         bool   `toml:"wal_mode"`
	CacheSizeMB     int    `toml:"cache_size_mb"`
	BusyTimeoutMS   int    `toml:"busy_timeout_ms"`
	ResetOnStartup  bool   `toml:"reset_on_startup"`
	Environment     string `toml:"-"` // populated from Config.Environment at load time
}

type LoggingConfig struct {
	Level      string   `toml:"level"`
	Output     []string `toml:"output"`
	TimeFormat string   `toml:"time_format"`
}

// CrawlConfig holds the exhaustive configuration surface named in spec.md §6.
type CrawlConfig struct {
	PagesPerProvider  int `toml:"pages_per_provider"`
	BoardsPerProvider int `toml:"boards_per_provider"`
	BatchSize         int `toml:"batch_size"`
	PageErrorBudget   int `toml:"page_error_budget"`
}

type ArchiveConfig struct {
	BaseURL            string `toml:"base_url"`
	FallbackCollection string `toml:"fallback_collection"`
}

type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	CronExpr string `toml:"cron_expr"`
}

// Default returns the built-in defaults, used as the base layer before any
// file is applied.
func Default() *Config {
	return &Config{
		Environment: "development",
		Server:      ServerConfig{Port: 8085, Host: "0.0.0.0"},
		Storage: StorageConfig{SQLite: SQLiteConfig{
			Path:           "./data/atscrawl.db",
			WALMode:        true,
			CacheSizeMB:    64,
			BusyTimeoutMS:  5000,
			ResetOnStartup: false,
		}},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		Crawl: CrawlConfig{
			PagesPerProvider:  5,
			BoardsPerProvider: 15,
			BatchSize:         100,
			PageErrorBudget:   3,
		},
		Archive: ArchiveConfig{
			BaseURL:            "https://index.commoncrawl.org",
			FallbackCollection: "CC-MAIN-2026-04",
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			CronExpr: "*/15 * * * *",
		},
	}
}

// LoadFromFiles merges defaults with zero or more TOML files, later files
// overriding earlier ones, matching the teacher's LoadFromFiles contract.
func LoadFromFiles(paths ...string) (*Config, error) {
	cfg := Default()

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", p, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", p, err)
		}
	}

	cfg.Storage.SQLite.Environment = cfg.Environment
	return cfg, nil
}

// ApplyFlagOverrides layers command-line overrides on top of file config,
// highest priority, same order as the teacher's main().
func ApplyFlagOverrides(cfg *Config, port int, host string) {
	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
}

package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Duration wraps time.Duration so TOML duration strings ("2s", "500ms")
// decode via time.ParseDuration. go-toml has no native time.Duration support.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment" validate:"omitempty,oneof=development production"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Fetcher     FetcherConfig   `toml:"fetcher"`
	Extract     ExtractConfig   `toml:"extract"`
	Sources     []SourceConfig  `toml:"sources" validate:"dive"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
}

// SchedulerConfig controls cron evaluation and run-history retention.
type SchedulerConfig struct {
	Timezone    string `toml:"timezone"`     // IANA timezone for cron evaluation
	HistorySize int    `toml:"history_size"` // Bounded result history capacity
}

// FetcherConfig controls outbound HTTP and headless-browser behavior.
type FetcherConfig struct {
	UserAgent          string   `toml:"user_agent"`
	RequestDelay       Duration `toml:"request_delay"`   // Minimum delay between requests
	RequestTimeout     Duration `toml:"request_timeout"` // Per-request timeout
	MaxAttempts        int      `toml:"max_attempts" validate:"omitempty,gte=1"`
	CheckRobots        bool     `toml:"check_robots"`
	JavaScriptWaitTime Duration `toml:"javascript_wait_time"` // Render settle time for JS pages
}

// ExtractConfig controls content extraction gates.
type ExtractConfig struct {
	MinContentLength int `toml:"min_content_length" validate:"omitempty,gte=1"`
}

// SourceConfig declares one external knowledge source and its scrape job.
type SourceConfig struct {
	Name        string   `toml:"name" validate:"required"`
	Type        string   `toml:"type" validate:"required,oneof=moh hsa ndf spc"`
	Description string   `toml:"description"`
	Schedule    string   `toml:"schedule" validate:"required"`
	Enabled     bool     `toml:"enabled"`
	RenderJS    bool     `toml:"render_js"` // Use headless browser instead of plain HTTP
	URLs        []string `toml:"urls"`      // Fixed seed URLs, processed in declared order
}

// DefaultConfig returns the baseline configuration before file and
// environment overrides are applied.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "localhost",
			Port: 8085,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/harvest",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Scheduler: SchedulerConfig{
			Timezone:    "Asia/Singapore",
			HistorySize: 1000,
		},
		Fetcher: FetcherConfig{
			UserAgent:          "Harvest-Ingest/1.0",
			RequestDelay:       Duration(2 * time.Second),
			RequestTimeout:     Duration(30 * time.Second),
			MaxAttempts:        3,
			CheckRobots:        true,
			JavaScriptWaitTime: Duration(3 * time.Second),
		},
		Extract: ExtractConfig{
			MinContentLength: 100,
		},
	}
}

// LoadConfig loads configuration in priority order:
// defaults -> config file -> environment variables.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies HARVEST_* environment variables over the loaded config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("HARVEST_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("HARVEST_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("HARVEST_STORAGE_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("HARVEST_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("HARVEST_SCHEDULER_TIMEZONE"); v != "" {
		config.Scheduler.Timezone = v
	}
}

// Validate checks structural constraints, cron expressions, and the timezone.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid scheduler timezone %q: %w", c.Scheduler.Timezone, err)
	}

	for _, source := range c.Sources {
		if err := ValidateJobSchedule(source.Schedule); err != nil {
			return fmt.Errorf("source %s: %w", source.Name, err)
		}
	}

	return nil
}

// ValidateJobSchedule validates a five-field cron expression
func ValidateJobSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

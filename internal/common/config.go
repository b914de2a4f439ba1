package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Queue       QueueConfig     `toml:"queue"`
	Backend     BackendConfig   `toml:"backend"`
	Logging     LoggingConfig   `toml:"logging"`
	Janitor     JanitorConfig   `toml:"janitor"`
	WebSocket   WebSocketConfig `toml:"websocket"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

// QueueConfig controls the ingestion queue controller.
type QueueConfig struct {
	Concurrency    int    `toml:"concurrency" validate:"min=1"`      // Max items in-flight at once
	MaxRetries     int    `toml:"max_retries" validate:"min=0"`      // Retry budget per item
	RetryBaseDelay string `toml:"retry_base_delay"`                  // e.g. "1s" - backoff base
	RetryMaxDelay  string `toml:"retry_max_delay"`                   // e.g. "8s" - backoff cap
	MaxFrontier    int    `toml:"max_frontier" validate:"min=0"`     // Cap on total items from link discovery (0 = unlimited)
}

// BackendConfig locates the remote fetch/extraction and note-creation endpoints.
type BackendConfig struct {
	BaseURL        string `toml:"base_url" validate:"required,url"`
	RequestTimeout string `toml:"request_timeout"` // e.g. "30s"
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// JanitorConfig controls the periodic sweep of stale terminal items.
type JanitorConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
	MaxAge   string `toml:"max_age"`  // e.g. "1h" - terminal items older than this are swept
}

// WebSocketConfig contains configuration for the WebSocket event stream.
type WebSocketConfig struct {
	// Per-event minimum broadcast interval, e.g. {"item_updated" = "250ms"}.
	// Events not listed are never throttled.
	ThrottleIntervals map[string]string `toml:"throttle_intervals"`
}

// NewDefaultConfig returns the built-in defaults, matching the reference
// queue behavior: concurrency 2, retry budget 3, backoff 1s doubling to 8s.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Queue: QueueConfig{
			Concurrency:    2,
			MaxRetries:     3,
			RetryBaseDelay: "1s",
			RetryMaxDelay:  "8s",
			MaxFrontier:    0,
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8080",
			RequestTimeout: "30s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout"},
		},
		Janitor: JanitorConfig{
			Enabled:  false,
			Schedule: "@every 10m",
			MaxAge:   "1h",
		},
		WebSocket: WebSocketConfig{
			ThrottleIntervals: map[string]string{},
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2
// -> ... -> env. Later files override earlier files; environment variables
// override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("NOTESINK_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("NOTESINK_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("NOTESINK_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if concurrency := os.Getenv("NOTESINK_QUEUE_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil {
			config.Queue.Concurrency = c
		}
	}
	if maxRetries := os.Getenv("NOTESINK_QUEUE_MAX_RETRIES"); maxRetries != "" {
		if m, err := strconv.Atoi(maxRetries); err == nil {
			config.Queue.MaxRetries = m
		}
	}

	if baseURL := os.Getenv("NOTESINK_BACKEND_URL"); baseURL != "" {
		config.Backend.BaseURL = baseURL
	}

	if level := os.Getenv("NOTESINK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("NOTESINK_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks struct constraints plus the duration and cron fields that
// tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for name, value := range map[string]string{
		"queue.retry_base_delay":  c.Queue.RetryBaseDelay,
		"queue.retry_max_delay":   c.Queue.RetryMaxDelay,
		"backend.request_timeout": c.Backend.RequestTimeout,
		"janitor.max_age":         c.Janitor.MaxAge,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}

	if c.Janitor.Enabled {
		if err := ValidateSchedule(c.Janitor.Schedule); err != nil {
			return fmt.Errorf("invalid janitor schedule: %w", err)
		}
	}

	return nil
}

// ValidateSchedule checks a cron schedule expression.
func ValidateSchedule(schedule string) error {
	if strings.TrimSpace(schedule) == "" {
		return fmt.Errorf("schedule is empty")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("failed to parse schedule %q: %w", schedule, err)
	}
	return nil
}

// Duration parses a duration string field, falling back to a default when the
// field is empty or malformed.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

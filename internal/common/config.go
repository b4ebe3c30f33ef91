package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Backend     BackendConfig   `toml:"backend"`
	Analysis    AnalysisConfig  `toml:"analysis"`
	WebSocket   WebSocketConfig `toml:"websocket"`
	Logging     LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// BackendConfig describes the external multi-agent analysis backend
type BackendConfig struct {
	BaseURL        string        `toml:"base_url"`        // Analysis backend base URL
	Token          string        `toml:"token"`           // Bearer token for Authorization header
	RequestTimeout time.Duration `toml:"request_timeout"` // Per-ticker analysis request timeout
	CompareTimeout time.Duration `toml:"compare_timeout"` // Comparison request timeout (outer cap)
}

// AnalysisConfig tunes orchestrator behavior
type AnalysisConfig struct {
	ProgressWindow   time.Duration `toml:"progress_window"`   // Elapsed time at which simulated progress reaches its ceiling
	ProgressCeiling  float64       `toml:"progress_ceiling"`  // Simulated progress ceiling while requests are outstanding
	RunTTL           time.Duration `toml:"run_ttl"`           // How long terminal runs are kept in the local store
	EvictionSchedule string        `toml:"eviction_schedule"` // Cron schedule for the local store eviction sweep
}

type WebSocketConfig struct {
	ProgressThrottle string `toml:"progress_throttle"` // Min interval between progress events per client, e.g. "1s" (empty = no throttle)
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns the default configuration
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8090,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/stockpulse",
				ResetOnStartup: false,
			},
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			Token:          "", // User must provide a bearer token in config or env
			RequestTimeout: 5 * time.Minute,
			CompareTimeout: 10 * time.Minute, // Comparison covers several tickers plus a ranking pass
		},
		Analysis: AnalysisConfig{
			ProgressWindow:   80 * time.Second,
			ProgressCeiling:  95,
			RunTTL:           5 * time.Minute,
			EvictionSchedule: "@every 1m",
		},
		WebSocket: WebSocketConfig{
			ProgressThrottle: "1s", // At most one progress frame per second per client
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier files.
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

	return config, nil
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCKPULSE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("STOCKPULSE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("STOCKPULSE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if path := os.Getenv("STOCKPULSE_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}

	if baseURL := os.Getenv("STOCKPULSE_BACKEND_URL"); baseURL != "" {
		config.Backend.BaseURL = baseURL
	}
	if token := os.Getenv("STOCKPULSE_BACKEND_TOKEN"); token != "" {
		config.Backend.Token = token
	}
	if timeout := os.Getenv("STOCKPULSE_BACKEND_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Backend.RequestTimeout = d
		}
	}
	if timeout := os.Getenv("STOCKPULSE_BACKEND_COMPARE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Backend.CompareTimeout = d
		}
	}

	if ttl := os.Getenv("STOCKPULSE_ANALYSIS_RUN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			config.Analysis.RunTTL = d
		}
	}

	if level := os.Getenv("STOCKPULSE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

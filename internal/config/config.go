package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultMarginBytes is the default safety margin and scan read
// granularity: 10 MiB.
const DefaultMarginBytes = 10 * 1024 * 1024

// Config holds all configuration for the extractor CLI.
type Config struct {
	// Extraction settings
	MarginBytes int64  `yaml:"margin_bytes"` // Safety buffer around the located window, also the scan granularity
	OutputDir   string `yaml:"output_dir"`   // Directory for derived output paths

	// Window cache
	WindowCachePath string `yaml:"window_cache_path"` // Empty disables the cache

	// ClickHouse sink (optional)
	ClickHouseEnabled bool   `yaml:"clickhouse_enabled"`
	ClickHouseHost    string `yaml:"clickhouse_host"`
	ClickHousePort    int    `yaml:"clickhouse_port"`
	ClickHouseDB      string `yaml:"clickhouse_db"`

	// Observability
	LogLevel        string `yaml:"log_level"`
	LogFile         string `yaml:"log_file"`
	TracingEnabled  bool   `yaml:"tracing_enabled"`
	TracingEndpoint string `yaml:"tracing_endpoint"`
	TracingProtocol string `yaml:"tracing_protocol"`
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in increasing precedence.
func Load(filePath string) (*Config, error) {
	cfg := &Config{
		MarginBytes:     DefaultMarginBytes,
		OutputDir:       "output",
		TracingProtocol: "grpc",
		ClickHouseHost:  "localhost",
		ClickHousePort:  9000,
		ClickHouseDB:    "logs",
		LogLevel:        "info",
	}

	if filePath != "" {
		if err := cfg.applyFile(filePath); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MarginBytes < 1 {
		return fmt.Errorf("margin_bytes must be at least 1")
	}
	if c.ClickHouseEnabled {
		if c.ClickHouseHost == "" {
			return fmt.Errorf("clickhouse_host is required when the ClickHouse sink is enabled")
		}
		if c.ClickHousePort <= 0 || c.ClickHousePort > 65535 {
			return fmt.Errorf("clickhouse_port must be between 1 and 65535")
		}
		if c.ClickHouseDB == "" {
			return fmt.Errorf("clickhouse_db is required when the ClickHouse sink is enabled")
		}
	}
	if c.TracingEnabled && c.TracingProtocol != "grpc" && c.TracingProtocol != "http" {
		return fmt.Errorf("tracing_protocol must be 'grpc' or 'http'")
	}
	return nil
}

// applyFile merges settings from a YAML file.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyEnv merges settings from LOGSLICE_* environment variables.
func (c *Config) applyEnv() {
	c.MarginBytes = getEnvInt64("LOGSLICE_MARGIN_BYTES", c.MarginBytes)
	c.OutputDir = getEnv("LOGSLICE_OUTPUT_DIR", c.OutputDir)
	c.WindowCachePath = getEnv("LOGSLICE_WINDOW_CACHE", c.WindowCachePath)

	c.ClickHouseEnabled = getEnvBool("LOGSLICE_CLICKHOUSE_ENABLED", c.ClickHouseEnabled)
	c.ClickHouseHost = getEnv("CLICKHOUSE_HOST", c.ClickHouseHost)
	c.ClickHousePort = getEnvInt("CLICKHOUSE_PORT", c.ClickHousePort)
	c.ClickHouseDB = getEnv("CLICKHOUSE_DB", c.ClickHouseDB)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.TracingEnabled = getEnvBool("TRACING_ENABLED", c.TracingEnabled)
	c.TracingEndpoint = getEnv("TRACING_ENDPOINT", c.TracingEndpoint)
	c.TracingProtocol = getEnv("TRACING_PROTOCOL", c.TracingProtocol)
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvInt64 gets a 64-bit integer environment variable or returns a default value.
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable or returns a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

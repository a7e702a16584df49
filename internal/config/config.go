package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the API server.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Logger LoggerConfig `yaml:"logger"`
	Probe  ProbeConfig  `yaml:"probe"`
	Cache  CacheConfig  `yaml:"cache"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// ProbeConfig holds defaults for probe requests that omit them.
type ProbeConfig struct {
	DefaultTimeoutSec int `yaml:"default_timeout_sec"`
}

// CacheConfig holds settings for the in-memory report cache.
type CacheConfig struct {
	ReportTTLSec       int `yaml:"report_ttl_sec"`
	CleanupIntervalSec int `yaml:"cleanup_interval_sec"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Logger: LoggerConfig{Level: "info", Encoding: "json"},
		Probe:  ProbeConfig{DefaultTimeoutSec: 10},
		Cache:  CacheConfig{ReportTTLSec: 15, CleanupIntervalSec: 60},
	}
}

// Load reads configuration from a YAML file, falling back to defaults for
// a missing file or any omitted field.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port must not be empty")
	}
	if c.Probe.DefaultTimeoutSec <= 0 {
		return fmt.Errorf("probe.default_timeout_sec must be positive")
	}
	if c.Cache.ReportTTLSec <= 0 {
		return fmt.Errorf("cache.report_ttl_sec must be positive")
	}
	if c.Cache.CleanupIntervalSec <= 0 {
		return fmt.Errorf("cache.cleanup_interval_sec must be positive")
	}
	return nil
}

// DefaultTimeout returns the probe timeout applied when a request omits one.
func (c ProbeConfig) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutSec) * time.Second
}

// ReportTTL returns how long cached reports stay servable.
func (c CacheConfig) ReportTTL() time.Duration {
	return time.Duration(c.ReportTTLSec) * time.Second
}

// CleanupInterval returns how often expired cache entries are swept.
func (c CacheConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSec) * time.Second
}

// Package config loads the hwmonitor YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of the YAML file
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Collector CollectorConfig `yaml:"collector"`
	Client    ClientConfig    `yaml:"client"`
}

// ServerConfig holds backend HTTP settings
type ServerConfig struct {
	// Addr is the listen address of the command interface.
	Addr string `yaml:"addr"`
	// DataDir holds settings.json.
	DataDir string `yaml:"data_dir"`
	// SecretKey signs bearer tokens. Empty means load or generate one under DataDir.
	SecretKey string `yaml:"secret_key"`
	// TokenExpiry is a duration string (e.g. "2160h").
	TokenExpiry string `yaml:"token_expiry"`
	// RequireAuth enforces bearer tokens on the command interface.
	RequireAuth bool `yaml:"require_auth"`
	// AllowedOrigins for CORS. Empty allows any non-empty origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
	// RateLimit is requests per second per client IP.
	RateLimit float64 `yaml:"rate_limit"`
	// RateBurst is the token bucket size.
	RateBurst int `yaml:"rate_burst"`
}

// CollectorConfig holds backend sampling settings
type CollectorConfig struct {
	Interval        string `yaml:"interval"`
	HistoryCapacity int    `yaml:"history_capacity"`
	ProcessAverage  int    `yaml:"process_average"`
	NvidiaSMIPath   string `yaml:"nvidia_smi_path"`
	HwmonRoot       string `yaml:"hwmon_root"`
}

// ClientConfig holds watch-mode settings
type ClientConfig struct {
	ServerURL      string `yaml:"server_url"`
	Token          string `yaml:"token"`
	UsageInterval  string `yaml:"usage_interval"`
	SensorInterval string `yaml:"sensor_interval"`
	HistoryLength  int    `yaml:"history_length"`
	RequestTimeout string `yaml:"request_timeout"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = os.TempDir()
	}

	return &Config{
		Server: ServerConfig{
			Addr:        "localhost:8080",
			DataDir:     filepath.Join(home, ".hwmonitor"),
			TokenExpiry: "2160h",
			RequireAuth: false,
			RateLimit:   100,
			RateBurst:   200,
		},
		Collector: CollectorConfig{
			Interval:        "1s",
			HistoryCapacity: 60,
			ProcessAverage:  5,
			NvidiaSMIPath:   "nvidia-smi",
			HwmonRoot:       "/sys/class/hwmon",
		},
		Client: ClientConfig{
			ServerURL:      "http://localhost:8080",
			UsageInterval:  "1s",
			SensorInterval: "10s",
			HistoryLength:  60,
			RequestTimeout: "5s",
		},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if v := os.Getenv("HWMONITOR_TOKEN"); v != "" {
		cfg.Client.Token = v
	}

	return cfg, nil
}

// Validate checks required fields and duration strings
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.DataDir == "" {
		return fmt.Errorf("server.data_dir is required")
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		return fmt.Errorf("server.rate_limit and server.rate_burst must be positive")
	}
	if c.Collector.HistoryCapacity <= 0 {
		return fmt.Errorf("collector.history_capacity must be positive, got %d", c.Collector.HistoryCapacity)
	}
	if c.Collector.ProcessAverage <= 0 || c.Collector.ProcessAverage > c.Collector.HistoryCapacity {
		return fmt.Errorf("collector.process_average must be in [1, %d], got %d", c.Collector.HistoryCapacity, c.Collector.ProcessAverage)
	}
	if c.Client.HistoryLength <= 0 {
		return fmt.Errorf("client.history_length must be positive, got %d", c.Client.HistoryLength)
	}
	if !strings.HasPrefix(c.Client.ServerURL, "http://") && !strings.HasPrefix(c.Client.ServerURL, "https://") {
		return fmt.Errorf("client.server_url must be an http(s) URL, got %q", c.Client.ServerURL)
	}

	durations := map[string]string{
		"server.token_expiry":    c.Server.TokenExpiry,
		"collector.interval":     c.Collector.Interval,
		"client.usage_interval":  c.Client.UsageInterval,
		"client.sensor_interval": c.Client.SensorInterval,
		"client.request_timeout": c.Client.RequestTimeout,
	}
	for name, value := range durations {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", name, value, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %q", name, value)
		}
	}

	return nil
}

// Duration parses a duration field that Validate has already checked
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

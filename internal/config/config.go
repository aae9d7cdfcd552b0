// Package config loads iconograph configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all iconograph configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Browser BrowserConfig `yaml:"browser"`
	Stats   StatsConfig   `yaml:"stats"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP/WebSocket listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// LLMConfig configures the text-generation client.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, genai
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// BrowserConfig configures image discovery through browser automation.
type BrowserConfig struct {
	Headless          bool     `yaml:"headless"`
	Launch            []string `yaml:"launch"` // binary path plus extra flags
	DebuggerURL       string   `yaml:"debugger_url"`
	NavigationTimeout string   `yaml:"navigation_timeout"`
	MinImageWidth     int      `yaml:"min_image_width"`
	MinImageHeight    int      `yaml:"min_image_height"`
	// ResultIndex selects which size-filtered image to use. Index 1 skips
	// the platform logo that commonly occupies the first slot on the
	// default search provider; this does not generalize to other providers.
	ResultIndex int `yaml:"result_index"`
}

// StatsConfig configures query stats persistence and reporting.
type StatsConfig struct {
	DatabasePath   string `yaml:"database_path"`
	RecentLimit    int    `yaml:"recent_limit"`
	ReportInterval string `yaml:"report_interval"`
}

// LoggingConfig configures the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Dir        string          `yaml:"dir"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8787",
			ShutdownTimeout: "10s",
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
			BaseURL:  "https://generativelanguage.googleapis.com/v1beta",
			Timeout:  "2m",
		},
		Browser: BrowserConfig{
			Headless:          true,
			NavigationTimeout: "30s",
			MinImageWidth:     100,
			MinImageHeight:    100,
			ResultIndex:       1,
		},
		Stats: StatsConfig{
			DatabasePath:   filepath.Join(".iconograph", "stats.db"),
			RecentLimit:    10,
			ReportInterval: "24h",
		},
		Logging: LoggingConfig{
			Dir:   filepath.Join(".iconograph", "logs"),
			Level: "info",
		},
	}
}

// Load reads config from path, falling back to defaults when the file does
// not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides select fields from ICONOGRAPH_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("ICONOGRAPH_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("ICONOGRAPH_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("ICONOGRAPH_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("ICONOGRAPH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ICONOGRAPH_STATS_DB"); v != "" {
		c.Stats.DatabasePath = v
	}
}

// Validate checks internal consistency.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "gemini", "genai":
	default:
		return fmt.Errorf("unknown llm provider: %q (valid: gemini, genai)", c.LLM.Provider)
	}
	if c.Stats.RecentLimit <= 0 {
		return fmt.Errorf("stats recent_limit must be positive, got %d", c.Stats.RecentLimit)
	}
	if c.Browser.ResultIndex < 0 {
		return fmt.Errorf("browser result_index must be non-negative, got %d", c.Browser.ResultIndex)
	}
	if _, err := parseDuration("llm timeout", c.LLM.Timeout, 2*time.Minute); err != nil {
		return err
	}
	if _, err := parseDuration("browser navigation_timeout", c.Browser.NavigationTimeout, 30*time.Second); err != nil {
		return err
	}
	if _, err := parseDuration("stats report_interval", c.Stats.ReportInterval, 24*time.Hour); err != nil {
		return err
	}
	if _, err := parseDuration("server shutdown_timeout", c.Server.ShutdownTimeout, 10*time.Second); err != nil {
		return err
	}
	return nil
}

// Duration getters fall back to defaults on bad values; Validate rejects
// those at load time, so callers after Load never see the fallback.

// LLMTimeout returns the parsed generation call timeout.
func (c *Config) LLMTimeout() time.Duration {
	return durationOr(c.LLM.Timeout, 2*time.Minute)
}

// NavigationTimeout returns the parsed browser navigation timeout.
func (c *Config) NavigationTimeout() time.Duration {
	return durationOr(c.Browser.NavigationTimeout, 30*time.Second)
}

// ReportInterval returns the parsed stats report cadence.
func (c *Config) ReportInterval() time.Duration {
	return durationOr(c.Stats.ReportInterval, 24*time.Hour)
}

// ShutdownTimeout returns the parsed server shutdown grace period.
func (c *Config) ShutdownTimeout() time.Duration {
	return durationOr(c.Server.ShutdownTimeout, 10*time.Second)
}

func durationOr(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", field, value)
	}
	return d, nil
}

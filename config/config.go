package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete tradepnl configuration.
type Config struct {
	Exchange ExchangeConfig `json:"exchange" yaml:"exchange"`
	Report   ReportConfig   `json:"report" yaml:"report"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// ExchangeConfig holds the REST endpoint and credentials. Durations are
// strings such as "3s" or "500ms".
type ExchangeConfig struct {
	BaseURL   string `json:"base_url" yaml:"base_url"`
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty" yaml:"api_secret,omitempty"`
	PageDelay string `json:"page_delay" yaml:"page_delay"`
	Timeout   string `json:"timeout" yaml:"timeout"`
	MaxPages  int    `json:"max_pages,omitempty" yaml:"max_pages,omitempty"`
}

// PageDelayDuration parses PageDelay; empty means no delay.
func (e ExchangeConfig) PageDelayDuration() (time.Duration, error) {
	return parseDuration(e.PageDelay)
}

// TimeoutDuration parses Timeout; empty means the client default.
func (e ExchangeConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration(e.Timeout)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// ReportConfig controls what is computed and how it is labelled.
type ReportConfig struct {
	Pairs         []string `json:"pairs,omitempty" yaml:"pairs,omitempty"`
	QuoteCurrency string   `json:"quote_currency" yaml:"quote_currency"`
	Concurrency   int      `json:"concurrency" yaml:"concurrency"`
}

// JournalConfig selects where fetched history is kept.
type JournalConfig struct {
	Type    string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "console" or "json"
}

// LoadFromFile loads configuration from a YAML or JSON file and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// Files may carry credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey    = "KRAKEN_API_KEY"
	EnvAPISecret = "KRAKEN_API_SECRET"
	EnvBaseURL   = "KRAKEN_BASE_URL"
	EnvLogLevel  = "TRADEPNL_LOG_LEVEL"
)

// ApplyEnv loads the optional dotenv files (".env" when none are given)
// and overlays any of the variables above that are set.
func (c *Config) ApplyEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return fmt.Errorf("load env: %w", err)
		}
	}

	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Exchange.APIKey = v
	}
	if v := os.Getenv(EnvAPISecret); v != "" {
		c.Exchange.APISecret = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Exchange.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Exchange.BaseURL == "" {
		return fmt.Errorf("exchange.base_url is required")
	}
	if (c.Exchange.APIKey == "") != (c.Exchange.APISecret == "") {
		return fmt.Errorf("exchange.api_key and exchange.api_secret must be set together")
	}
	if d, err := c.Exchange.PageDelayDuration(); err != nil || d < 0 {
		return fmt.Errorf("exchange.page_delay must be a non-negative duration")
	}
	if d, err := c.Exchange.TimeoutDuration(); err != nil || d < 0 {
		return fmt.Errorf("exchange.timeout must be a non-negative duration")
	}
	if c.Exchange.MaxPages < 0 {
		return fmt.Errorf("exchange.max_pages must not be negative")
	}
	if c.Report.Concurrency < 0 {
		return fmt.Errorf("report.concurrency must not be negative")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.CSVPath == "" {
			return fmt.Errorf("journal csv_path required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level: %s", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be 'console' or 'json'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			BaseURL:   "https://api.kraken.com",
			PageDelay: "3s",
			Timeout:   "30s",
		},
		Report: ReportConfig{
			QuoteCurrency: "USD",
			Concurrency:   4,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

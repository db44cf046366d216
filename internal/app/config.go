package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable parameters for the application.
type Config struct {
	Port       int    `yaml:"port"`
	APIBaseURL string `yaml:"api_base_url"`
	StorageDir string `yaml:"storage_dir"`
	// TemplatesDir overrides the embedded page templates and is watched for
	// changes.
	TemplatesDir string `yaml:"templates_dir"`
	LogLevel     string `yaml:"log_level"`

	Locale   string `yaml:"locale"`
	TimeZone string `yaml:"time_zone"`

	GatewayTimeout time.Duration `yaml:"gateway_timeout"`
	ListLimit      int           `yaml:"list_limit"`
	GatewayLogSize int           `yaml:"gateway_log_size"`

	SessionTTL time.Duration `yaml:"session_ttl"`
	DemoRate   float64       `yaml:"demo_rate"`
	DemoBurst  int           `yaml:"demo_burst"`

	WatcherDebounce time.Duration `yaml:"watcher_debounce"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Port:       3000,
		APIBaseURL: "http://localhost:8000",
		LogLevel:   "info",

		Locale:   "en-US",
		TimeZone: "Local",

		GatewayTimeout: 60 * time.Second,
		GatewayLogSize: 100,

		SessionTTL: 30 * time.Minute,
		DemoRate:   0.5,
		DemoBurst:  3,

		WatcherDebounce: 300 * time.Millisecond,

		ReadTimeout:     30 * time.Second,
		WriteTimeout:    90 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadFile applies the YAML file at path on top of cfg. Keys absent from the
// file keep their current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadEnv applies API_BASE_URL and the XRAY_* variables on top of cfg.
// lookup is usually os.LookupEnv.
func LoadEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", key, v)
		}
		*dst = n
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q", key, v)
		}
		*dst = d
		return nil
	}

	str("API_BASE_URL", &cfg.APIBaseURL)
	str("XRAY_STORAGE_DIR", &cfg.StorageDir)
	str("XRAY_TEMPLATES_DIR", &cfg.TemplatesDir)
	str("XRAY_LOG_LEVEL", &cfg.LogLevel)
	str("XRAY_LOCALE", &cfg.Locale)
	str("XRAY_TIME_ZONE", &cfg.TimeZone)

	if err := integer("XRAY_PORT", &cfg.Port); err != nil {
		return err
	}
	if err := integer("XRAY_LIST_LIMIT", &cfg.ListLimit); err != nil {
		return err
	}
	if err := integer("XRAY_DEMO_BURST", &cfg.DemoBurst); err != nil {
		return err
	}
	if err := duration("XRAY_GATEWAY_TIMEOUT", &cfg.GatewayTimeout); err != nil {
		return err
	}
	if err := duration("XRAY_SESSION_TTL", &cfg.SessionTTL); err != nil {
		return err
	}
	if v, ok := lookup("XRAY_DEMO_RATE"); ok && v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("XRAY_DEMO_RATE: invalid number %q", v)
		}
		cfg.DemoRate = r
	}
	return nil
}

// Validate reports configuration the application cannot start with.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.APIBaseURL == "" && c.StorageDir == "" {
		return fmt.Errorf("an API base URL or a storage directory is required")
	}
	if c.DemoBurst < 1 && c.DemoRate > 0 {
		return fmt.Errorf("demo burst must be at least 1 when demo rate is set")
	}
	return nil
}

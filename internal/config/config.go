package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLogDir = "host-witness_logs"

	// GeoIPPlaceholder is substituted with the discovered public IP in Lookup.GeoURL.
	GeoIPPlaceholder = "{ip}"

	// maxPublicIPURLs is one primary service plus a single fallback.
	maxPublicIPURLs = 2
)

type Config struct {
	LogDir        string     `yaml:"log_dir"`
	LogLevel      string     `yaml:"log_level"`
	RetentionDays int        `yaml:"retention_days"`
	Lookup        Lookup     `yaml:"lookup"`
	Encryption    Encryption `yaml:"encryption"`
	Hooks         Hooks      `yaml:"hooks"`
}

type Lookup struct {
	TimeoutSec         int      `yaml:"timeout_sec"`
	PublicIPURLs       []string `yaml:"public_ip_urls"`
	GeoURL             string   `yaml:"geo_url"`
	InsecureSkipVerify bool     `yaml:"insecure_skip_verify"`
}

type Encryption struct {
	KeyFile string `yaml:"key_file"`
}

type Hooks struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogDir == "" {
		c.LogDir = DefaultLogDir
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Lookup.TimeoutSec <= 0 {
		c.Lookup.TimeoutSec = 3
	}
	if len(c.Lookup.PublicIPURLs) == 0 {
		c.Lookup.PublicIPURLs = []string{
			"https://api.ipify.org?format=json",
			"https://ifconfig.me/ip",
		}
	}
	if c.Lookup.GeoURL == "" {
		c.Lookup.GeoURL = "https://ipinfo.io/" + GeoIPPlaceholder + "/json"
	}
	if c.Hooks.Dir == "" {
		c.Hooks.Dir = "/etc/host-witness/hooks"
	}
	if c.Hooks.TimeoutSec <= 0 {
		c.Hooks.TimeoutSec = 30
	}
}

func (c *Config) validate() error {
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative")
	}
	if len(c.Lookup.PublicIPURLs) > maxPublicIPURLs {
		return fmt.Errorf("lookup.public_ip_urls accepts at most %d urls, got %d",
			maxPublicIPURLs, len(c.Lookup.PublicIPURLs))
	}
	for _, u := range c.Lookup.PublicIPURLs {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("lookup.public_ip_urls cannot contain empty entries")
		}
	}
	if !strings.Contains(c.Lookup.GeoURL, GeoIPPlaceholder) {
		return fmt.Errorf("lookup.geo_url must contain %s", GeoIPPlaceholder)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.Lookup.TimeoutSec) * time.Second
}

func (c *Config) HookTimeout() time.Duration {
	return time.Duration(c.Hooks.TimeoutSec) * time.Second
}

// Retention is the age after which day files are pruned; zero disables pruning.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

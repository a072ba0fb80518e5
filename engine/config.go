package engine

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all engine configuration.
type Config struct {
	DBPath       string          `yaml:"db_path"`
	PollInterval time.Duration   `yaml:"poll_interval"`
	Workers      int             `yaml:"workers"`
	QueueDepth   int             `yaml:"queue_depth"`
	Fetch        FetchConfig     `yaml:"fetch"`
	Retention    RetentionConfig `yaml:"retention"`
}

// FetchConfig controls URL enrichment fetches.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	UserAgent string        `yaml:"user_agent"`
}

// RetentionConfig bounds history growth. Zero values keep everything.
type RetentionConfig struct {
	MaxAge     time.Duration `yaml:"max_age"`
	MaxEntries int           `yaml:"max_entries"`
}

// Enabled reports whether any retention rule is active.
func (r RetentionConfig) Enabled() bool {
	return r.MaxAge > 0 || r.MaxEntries > 0
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = defaultDBPath()
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.Workers <= 0 {
		c.Workers = 3
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = 256
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.MaxBytes <= 0 {
		c.Fetch.MaxBytes = 5 * 1024 * 1024
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "clipd/1.0"
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(home, ".clipd", "history.db")
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays CLIPD_* environment variables on the config.
// Unparseable values are ignored in favour of the existing setting.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CLIPD_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("CLIPD_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PollInterval = d
		}
	}
	if v := os.Getenv("CLIPD_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Fetch.Timeout = d
		}
	}
	if v := os.Getenv("CLIPD_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Workers = n
		}
	}
}

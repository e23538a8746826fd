package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Database is the SQLite file holding tasks and meetings.
	Database string `yaml:"database" json:"database"`

	// ReminderCron is the cron schedule of the reminder poll
	// (default every minute).
	ReminderCron string `yaml:"reminder_cron" json:"reminder_cron"`

	// ReminderPolicy selects the look-ahead window:
	//   - "standard": tasks within 1h, meetings within 30m, incomplete only (default)
	//   - "daily":    tasks within 24h, no meeting reminders
	ReminderPolicy string `yaml:"reminder_policy" json:"reminder_policy"`

	// SearchMode is the default alternative search for conflicting meetings:
	// "nearest" (default) or "enumerate".
	SearchMode string `yaml:"search_mode" json:"search_mode"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// FeedSize bounds the number of recent reminder messages kept for the API.
	FeedSize int `yaml:"feed_size" json:"feed_size"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:8080",
		Database:       "assistant_data.db",
		ReminderCron:   "* * * * *",
		ReminderPolicy: "standard",
		SearchMode:     "nearest",
		LogLevel:       "info",
		FeedSize:       50,
	}
}

// Normalize fills in missing or unknown values with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Database == "" {
		c.Database = def.Database
	}
	if c.ReminderCron == "" {
		c.ReminderCron = def.ReminderCron
	}
	switch c.ReminderPolicy {
	case "standard", "daily":
	default:
		c.ReminderPolicy = def.ReminderPolicy
	}
	switch c.SearchMode {
	case "nearest", "enumerate":
	default:
		c.SearchMode = def.SearchMode
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = def.LogLevel
	}
	if c.FeedSize <= 0 {
		c.FeedSize = def.FeedSize
	}
}

// Load loads configuration from the given YAML path.
//
// A missing file is created with defaults (0600) and the defaults are
// returned. An existing file is unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Caller decides whether running on defaults is acceptable.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".assistcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration, loaded from YAML with
// environment-variable overrides for the values that change per deployment.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// DBPath is the SQLite database file path.
	DBPath string `yaml:"db_path"`

	// LogLevel accepts debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat accepts text or json.
	LogFormat string `yaml:"log_format"`

	// HorizonDays bounds recurrence expansion: no occurrence is generated
	// past the series seed plus this many days, whatever the rule says.
	HorizonDays int `yaml:"horizon_days"`

	// NotifyCron schedules the upcoming-event sweep. Empty disables it.
	NotifyCron string `yaml:"notify_cron"`

	// NotifyLookaheadMinutes is how far ahead the sweep looks for events
	// about to start.
	NotifyLookaheadMinutes int `yaml:"notify_lookahead_minutes"`
}

func Default() *Config {
	return &Config{
		Listen:                 ":8080",
		DBPath:                 "bywater.db",
		LogLevel:               "info",
		LogFormat:              "text",
		HorizonDays:            730,
		NotifyCron:             "* * * * *",
		NotifyLookaheadMinutes: 15,
	}
}

// Normalize fills in missing/zero values so partially-filled config files
// still behave.
func (c *Config) Normalize() {
	d := Default()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = d.HorizonDays
	}
	if c.NotifyLookaheadMinutes <= 0 {
		c.NotifyLookaheadMinutes = d.NotifyLookaheadMinutes
	}
}

// Horizon returns the expansion bound as a duration.
func (c *Config) Horizon() time.Duration {
	return time.Duration(c.HorizonDays) * 24 * time.Hour
}

// NotifyLookahead returns the sweep window as a duration.
func (c *Config) NotifyLookahead() time.Duration {
	return time.Duration(c.NotifyLookaheadMinutes) * time.Minute
}

// Load reads the YAML file at path, falling back to defaults when path is
// empty or the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// First run without a config file is fine; defaults apply.
		case err != nil:
			return nil, err
		default:
			cfg = &Config{}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
			cfg.Normalize()
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BYWATER_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("BYWATER_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("BYWATER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

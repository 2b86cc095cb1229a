// Package config loads service settings from defaults, an optional YAML file
// and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata" // zone names resolve on hosts without a tz database

	"github.com/spf13/viper"
)

// Config holds the service settings.
type Config struct {
	Port          string        `mapstructure:"port"`
	DatabasePath  string        `mapstructure:"database_path"`
	Timezone      string        `mapstructure:"timezone"`
	PageSize      int           `mapstructure:"page_size"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	AuditInterval time.Duration `mapstructure:"audit_interval"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"` // "text" or "json"
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Config {
	return Config{
		Port:          "8080",
		DatabasePath:  "coursereg.db",
		Timezone:      "Asia/Bangkok",
		PageSize:      10,
		CacheTTL:      30 * time.Second,
		AuditInterval: time.Hour,
		RetryDelay:    50 * time.Millisecond,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// envNames maps each setting to its environment variable.
var envNames = map[string]string{
	"port":           "PORT",
	"database_path":  "DATABASE_PATH",
	"timezone":       "TIMEZONE",
	"page_size":      "PAGE_SIZE",
	"cache_ttl":      "CACHE_TTL",
	"audit_interval": "AUDIT_INTERVAL",
	"retry_delay":    "RETRY_DELAY",
	"log_level":      "LOG_LEVEL",
	"log_format":     "LOG_FORMAT",
}

// Load reads the settings. An empty path skips the config file; a path that
// does not exist is an error.
func Load(path string) (Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("port", d.Port)
	v.SetDefault("database_path", d.DatabasePath)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("audit_interval", d.AuditInterval)
	v.SetDefault("retry_delay", d.RetryDelay)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	for key, env := range envNames {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path must not be empty"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if c.PageSize <= 0 {
		errs = append(errs, errors.New("page_size must be positive"))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, errors.New("retry_delay must not be negative"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q: want text or json", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Location returns the zone calendar dates are interpreted in.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

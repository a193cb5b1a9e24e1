package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/username/bdays/pkg/dateutil"
)

// EnvPrefix prefixes environment variables overriding config keys, e.g.
// BDAYS_CALENDAR_NAME.
const EnvPrefix = "BDAYS"

// Config represents application configuration
type Config struct {
	Calendar CalendarConfig `mapstructure:"calendar"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
}

// CalendarConfig selects the holiday calendar
type CalendarConfig struct {
	Name         string `mapstructure:"name"`          // Registered calendar name, e.g. "br-settlement"
	HolidaysFile string `mapstructure:"holidays_file"` // Optional extra holidays, one YYYY-MM-DD per line
}

// CacheConfig represents the precomputed calendar range
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	From    string `mapstructure:"from"`
	To      string `mapstructure:"to"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"` // Console logging when empty
	Level string `mapstructure:"level"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Addr            string   `mapstructure:"addr"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"` // CORS disabled when empty
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
}

// New returns a viper instance with defaults and environment bindings set.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("calendar.name", "weekends")
	v.SetDefault("calendar.holidays_file", "")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.from", "1980-01-01")
	v.SetDefault("cache.to", "2100-12-31")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	return LoadWith(New(), configPath)
}

// LoadWith reads configuration into v, which may carry bound command-line
// flags, and decodes it. A missing config file is not an error unless
// configPath names it explicitly.
func LoadWith(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("bdays")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bdays")
		v.AddConfigPath("/etc/bdays")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Calendar.Name) == "" {
		return fmt.Errorf("calendar.name is required")
	}

	if c.Cache.Enabled {
		from, to, err := c.Cache.Range()
		if err != nil {
			return err
		}
		if to.Before(from) {
			return fmt.Errorf("cache.from (%v) must not be after cache.to (%v)", from, to)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got '%s'", c.Log.Level)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	return nil
}

// GetShutdownTimeout returns how long the server waits for active requests
// when stopping. Default: 30s
func (c *ServerConfig) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == "" {
		return 30 * time.Second
	}
	duration, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return duration
}

// Range returns the parsed cache bounds.
func (c *CacheConfig) Range() (from, to dateutil.Date, err error) {
	from, err = dateutil.Parse(c.From)
	if err != nil {
		return from, to, fmt.Errorf("cache.from: %w", err)
	}
	to, err = dateutil.Parse(c.To)
	if err != nil {
		return from, to, fmt.Errorf("cache.to: %w", err)
	}
	return from, to, nil
}

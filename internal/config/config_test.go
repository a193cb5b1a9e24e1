package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/bdays/pkg/dateutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bdays.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "weekends", cfg.Calendar.Name)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Server.GetShutdownTimeout())

	from, to, err := cfg.Cache.Range()
	require.NoError(t, err)
	assert.Equal(t, dateutil.Of(1980, 1, 1), from)
	assert.Equal(t, dateutil.Of(2100, 12, 31), to)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
calendar:
  name: br-exchange
  holidays_file: /tmp/extra.txt
cache:
  enabled: false
log:
  file: /var/log/bdays.log
  level: debug
server:
  addr: 127.0.0.1:9000
  allowed_origins:
    - http://localhost:5173
  shutdown_timeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "br-exchange", cfg.Calendar.Name)
	assert.Equal(t, "/tmp/extra.txt", cfg.Calendar.HolidaysFile)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "/var/log/bdays.log", cfg.Log.File)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Server.GetShutdownTimeout())
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "calendar:\n  name: br-settlement\n")
	t.Setenv("BDAYS_CALENDAR_NAME", "de-by")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "de-by", cfg.Calendar.Name)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Calendar: CalendarConfig{Name: "weekends"},
			Cache:    CacheConfig{Enabled: true, From: "2000-01-01", To: "2001-01-01"},
			Log:      LogConfig{Level: "info"},
			Server:   ServerConfig{Addr: ":8080"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty calendar", func(c *Config) { c.Calendar.Name = " " }, true},
		{"reversed cache range", func(c *Config) { c.Cache.From = "2002-01-01" }, true},
		{"reversed range with cache disabled", func(c *Config) {
			c.Cache.Enabled = false
			c.Cache.From = "2002-01-01"
		}, false},
		{"bad cache date", func(c *Config) { c.Cache.To = "someday" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"upper case log level", func(c *Config) { c.Log.Level = "WARN" }, false},
		{"empty server address", func(c *Config) { c.Server.Addr = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRangeWrapsInvalidDate(t *testing.T) {
	c := CacheConfig{From: "2000-02-30", To: "2001-01-01"}
	_, _, err := c.Range()
	assert.True(t, errors.Is(err, dateutil.ErrInvalidDate))
}

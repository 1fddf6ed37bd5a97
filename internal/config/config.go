// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config holding every default.
// - Load layers a YAML file and TALLY_* env vars on top of New.
// - Errors are reported through this package's sentinel kinds.
package config

import (
	"net/url"
	"strings"
	"time"
	_ "time/tzdata" // embedded zoneinfo

	"github.com/m-mizutani/goerr/v2"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ScriptURL is the spreadsheet web app endpoint.
	ScriptURL string `koanf:"script_url"`

	// ReadTimeoutMS bounds directory loads (getEvents, getUsers, getRecords).
	ReadTimeoutMS int `koanf:"read_timeout_ms"`

	// WriteTimeoutMS bounds write actions (addRecord, addEvent, updateEvent).
	WriteTimeoutMS int `koanf:"write_timeout_ms"`

	// TestTimeoutMS bounds the connectivity test action.
	TestTimeoutMS int `koanf:"test_timeout_ms"`

	// PerPersonLimit caps the most recent records counted per participant. 0 disables.
	PerPersonLimit int `koanf:"per_person_limit"`

	// CachePath is the SQLite file for the local cache. Empty keeps it in memory.
	CachePath string `koanf:"cache_path"`

	// Timezone names the location used to resolve calendar dates.
	Timezone string `koanf:"timezone"`

	// RefreshIntervalSec enables a periodic refresh when positive.
	RefreshIntervalSec int `koanf:"refresh_interval_sec"`

	// DedupeSize bounds the submission tracker.
	DedupeSize int `koanf:"dedupe_size"`

	// DedupeWindowSec is how long a submitted (name, event, date) key suppresses repeats.
	DedupeWindowSec int `koanf:"dedupe_window_sec"`

	// MaxSummaryLimit caps GET /summary?limit.
	MaxSummaryLimit int `koanf:"max_summary_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		ReadTimeoutMS:      15_000,
		WriteTimeoutMS:     10_000,
		TestTimeoutMS:      30_000,
		PerPersonLimit:     25,
		CachePath:          "tally.db",
		Timezone:           "Asia/Bangkok",
		RefreshIntervalSec: 0,
		DedupeSize:         10_000,
		DedupeWindowSec:    60,
		MaxSummaryLimit:    1000,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return goerr.Wrap(ErrInvalidConfig, "addr must not be empty")
	}
	if c.ScriptURL != "" {
		u, err := url.Parse(c.ScriptURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return goerr.Wrap(ErrInvalidConfig, "script_url must be an absolute URL", goerr.V("script_url", c.ScriptURL))
		}
	}
	if c.ReadTimeoutMS <= 0 || c.WriteTimeoutMS <= 0 || c.TestTimeoutMS <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "timeouts must be positive",
			goerr.V("read_timeout_ms", c.ReadTimeoutMS),
			goerr.V("write_timeout_ms", c.WriteTimeoutMS),
			goerr.V("test_timeout_ms", c.TestTimeoutMS))
	}
	if c.PerPersonLimit < 0 {
		return goerr.Wrap(ErrInvalidConfig, "per_person_limit must not be negative", goerr.V("per_person_limit", c.PerPersonLimit))
	}
	if c.MaxSummaryLimit <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "max_summary_limit must be positive", goerr.V("max_summary_limit", c.MaxSummaryLimit))
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ReadTimeout returns ReadTimeoutMS as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

// WriteTimeout returns WriteTimeoutMS as a duration.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}

// TestTimeout returns TestTimeoutMS as a duration.
func (c *Config) TestTimeout() time.Duration {
	return time.Duration(c.TestTimeoutMS) * time.Millisecond
}

// RefreshInterval returns RefreshIntervalSec as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSec) * time.Second
}

// DedupeWindow returns DedupeWindowSec as a duration.
func (c *Config) DedupeWindow() time.Duration {
	return time.Duration(c.DedupeWindowSec) * time.Second
}

// Location resolves Timezone. Empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "unknown timezone", goerr.V("timezone", c.Timezone), goerr.V("cause", err.Error()))
	}
	return loc, nil
}

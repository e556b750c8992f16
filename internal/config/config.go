package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

const (
	defaultListen      = "127.0.0.1:8080"
	defaultTimezone    = "Local"
	defaultWeekStart   = "sunday"
	defaultRefreshCron = "*/30 * * * *"
	defaultTrendDays   = 30
	defaultLogLevel    = "info"
	defaultUsername    = "user"
	defaultTheme       = "blue"
)

// SubscriptionConfig describes a single read-only ICS subscription whose
// events are overlaid on the planner.
type SubscriptionConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
// PasswordHash (bcrypt) takes precedence over Password.
type BasicAuthConfig struct {
	Username     string `yaml:"username" json:"username"`
	Password     string `yaml:"password,omitempty" json:"password,omitempty"`
	PasswordHash string `yaml:"password_hash,omitempty" json:"password_hash,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone whose calendar days are used for
	// grouping events (e.g. "Asia/Seoul"). "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls which weekday is the first grid column.
	// Supported values:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") used to
	// refresh ICS subscriptions.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// TrendDays is the length of the focus trend window.
	TrendDays int `yaml:"trend_days" json:"trend_days"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Username and ThemeColor seed the profile screen.
	Username   string `yaml:"username" json:"username"`
	ThemeColor string `yaml:"theme_color" json:"theme_color"`

	// SeedExamples loads the example focus tasks on startup.
	SeedExamples bool `yaml:"seed_examples" json:"seed_examples"`

	// Subscriptions is the list of read-only ICS feeds.
	Subscriptions []SubscriptionConfig `yaml:"subscriptions" json:"subscriptions"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        defaultListen,
		Timezone:      defaultTimezone,
		WeekStart:     defaultWeekStart,
		RefreshCron:   defaultRefreshCron,
		TrendDays:     defaultTrendDays,
		LogLevel:      defaultLogLevel,
		Username:      defaultUsername,
		ThemeColor:    defaultTheme,
		SeedExamples:  true,
		Subscriptions: []SubscriptionConfig{},
		BasicAuth:     nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	// WeekStart default & validation.
	switch strings.ToLower(c.WeekStart) {
	case "monday", "sunday":
		c.WeekStart = strings.ToLower(c.WeekStart)
	default:
		// Unknown value; fall back to sunday to avoid surprising layouts.
		c.WeekStart = defaultWeekStart
	}

	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	} else if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		c.RefreshCron = defaultRefreshCron
	}
	if c.TrendDays <= 0 {
		c.TrendDays = defaultTrendDays
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if strings.TrimSpace(c.Username) == "" {
		c.Username = defaultUsername
	}
	if c.ThemeColor == "" {
		c.ThemeColor = defaultTheme
	}
	if c.Subscriptions == nil {
		c.Subscriptions = []SubscriptionConfig{}
	}
	for i := range c.Subscriptions {
		s := &c.Subscriptions[i]
		if s.ID == "" {
			if s.Name != "" {
				s.ID = s.Name
			} else {
				s.ID = s.URL
			}
		}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
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

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".focusplan-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
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

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

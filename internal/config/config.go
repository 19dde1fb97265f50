package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourceConfig describes a single ICS subscription source.
type SourceConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for event IDs and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
	// Color is one of the named event colors (blue, green, red, amber,
	// violet) applied to this source's events.
	Color string `yaml:"color" json:"color"`
}

// GridConfig holds the time-grid geometry for day/week views.
type GridConfig struct {
	// PixelsPerHour is the vertical scale of the time grid.
	PixelsPerHour float64 `yaml:"pixels_per_hour" json:"pixels_per_hour"`
	// VisibleStartHour / VisibleEndHour bound the rendered hour range.
	VisibleStartHour int `yaml:"visible_start_hour" json:"visible_start_hour"`
	VisibleEndHour   int `yaml:"visible_end_hour" json:"visible_end_hour"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA display timezone (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls the first day of the week in week/month views:
	// "monday" (default) or "sunday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is the cron schedule for re-fetching sources and
	// refreshing the grid preview (e.g. "*/15 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// HorizonDays is how many future days the snapshot covers.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// BackfillDays is how many past days the snapshot covers, so events
	// still in progress stay visible.
	BackfillDays int `yaml:"backfill_days" json:"backfill_days"`

	// Grid is the day/week time-grid geometry.
	Grid GridConfig `yaml:"grid" json:"grid"`

	// Sources is the list of subscribed ICS feeds.
	Sources []SourceConfig `yaml:"sources" json:"sources"`

	// BasicAuth, if non-nil, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		Timezone:     "Local",
		WeekStart:    "monday",
		RefreshCron:  "*/15 * * * *",
		HorizonDays:  28,
		BackfillDays: 7,
		Grid: GridConfig{
			PixelsPerHour:    80,
			VisibleStartHour: 6,
			VisibleEndHour:   21,
		},
		Sources:   []SourceConfig{},
		BasicAuth: nil,
	}
}

// Normalize fills missing/zero values with defaults so partially-filled
// configs from older versions still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	switch c.WeekStart {
	case "monday", "sunday":
		// ok
	default:
		c.WeekStart = "monday"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 28
	}
	if c.BackfillDays < 0 {
		c.BackfillDays = 0
	}
	if c.Grid.PixelsPerHour <= 0 {
		c.Grid.PixelsPerHour = 80
	}
	if c.Grid.VisibleEndHour <= c.Grid.VisibleStartHour {
		c.Grid.VisibleStartHour = 6
		c.Grid.VisibleEndHour = 21
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written (0600,
//     creating the parent directory) and returned.
//   - Otherwise the YAML is unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
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

// Save writes the configuration to path atomically (temp file + rename)
// with 0600 permissions, creating the parent directory if needed.
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

	tmp, err := os.CreateTemp(dir, ".calgrid-config-*.tmp")
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

// Save delegates to the package-level Save:
//
//	cfg, _ := config.Load(path)
//	// ... mutate cfg ...
//	if err := cfg.Save(path); err != nil { ... }
func (c *Config) Save(path string) error {
	return Save(path, c)
}

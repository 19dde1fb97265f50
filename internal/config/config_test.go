package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.HorizonDays != 28 || cfg.BackfillDays != 7 {
		t.Errorf("window = (%d, %d), want (28, 7)", cfg.HorizonDays, cfg.BackfillDays)
	}

	// The default file was written and loads back identically.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perm = %o, want 600", perm)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.RefreshCron != cfg.RefreshCron || again.WeekStart != cfg.WeekStart {
		t.Errorf("reload mismatch: %+v vs %+v", again, cfg)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `listen: 0.0.0.0:9000
timezone: Europe/Berlin
week_start: sunday
refresh: "*/5 * * * *"
horizon_days: 14
grid:
  pixels_per_hour: 60
  visible_start_hour: 8
  visible_end_hour: 18
sources:
  - url: https://example.com/a.ics
    id: work
    name: Work
    color: green
basic_auth:
  username: cal
  password: secret
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9000" || cfg.Timezone != "Europe/Berlin" || cfg.WeekStart != "sunday" {
		t.Errorf("top-level fields = %+v", cfg)
	}
	if cfg.Grid.PixelsPerHour != 60 || cfg.Grid.VisibleStartHour != 8 || cfg.Grid.VisibleEndHour != 18 {
		t.Errorf("grid = %+v", cfg.Grid)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].ID != "work" || cfg.Sources[0].Color != "green" {
		t.Errorf("sources = %+v", cfg.Sources)
	}
	if cfg.BasicAuth == nil || cfg.BasicAuth.Username != "cal" {
		t.Errorf("basic auth = %+v", cfg.BasicAuth)
	}
	// Unset BackfillDays normalizes to zero, not negative.
	if cfg.BackfillDays != 0 {
		t.Errorf("BackfillDays = %d, want 0", cfg.BackfillDays)
	}
}

func TestNormalize(t *testing.T) {
	cfg := &Config{
		WeekStart:    "wednesday",
		HorizonDays:  -3,
		BackfillDays: -1,
		Grid:         GridConfig{VisibleStartHour: 10, VisibleEndHour: 4},
	}
	cfg.Normalize()

	if cfg.WeekStart != "monday" {
		t.Errorf("WeekStart = %q, want monday", cfg.WeekStart)
	}
	if cfg.HorizonDays != 28 || cfg.BackfillDays != 0 {
		t.Errorf("window = (%d, %d)", cfg.HorizonDays, cfg.BackfillDays)
	}
	if cfg.Grid.VisibleStartHour != 6 || cfg.Grid.VisibleEndHour != 21 {
		t.Errorf("grid window = [%d,%d]", cfg.Grid.VisibleStartHour, cfg.Grid.VisibleEndHour)
	}
	if cfg.Sources == nil {
		t.Error("Sources left nil")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed YAML accepted")
	}
}

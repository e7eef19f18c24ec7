package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load() of a missing file = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[pager]
decision_ratio = 0.25
cooldown = "120ms"
initial_index = 1

[input]
wheel_idle = 200

[overlay]
width = 30
pages = ["One", "Two"]

[watchdog]
grace = "5s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Pager.DecisionRatio != 0.25 {
		t.Errorf("DecisionRatio = %v, want 0.25", cfg.Pager.DecisionRatio)
	}
	if cfg.Pager.Cooldown.Std() != 120*time.Millisecond {
		t.Errorf("Cooldown = %v, want 120ms", cfg.Pager.Cooldown)
	}
	if cfg.Input.WheelIdle.Std() != 200*time.Millisecond {
		t.Errorf("WheelIdle = %v, want 200ms", cfg.Input.WheelIdle)
	}
	if cfg.Overlay.Width != 30 {
		t.Errorf("Width = %d, want 30", cfg.Overlay.Width)
	}
	if !reflect.DeepEqual(cfg.Overlay.Pages, []string{"One", "Two"}) {
		t.Errorf("Pages = %v, want [One Two]", cfg.Overlay.Pages)
	}
	if cfg.Watchdog.Grace.Std() != 5*time.Second {
		t.Errorf("Grace = %v, want 5s", cfg.Watchdog.Grace)
	}

	// Untouched keys keep their defaults.
	if cfg.Pager.ScrollGain != Default().Pager.ScrollGain {
		t.Errorf("ScrollGain = %v, want default", cfg.Pager.ScrollGain)
	}
}

func TestLoadSyntaxError(t *testing.T) {
	path := writeConfig(t, "[pager]\ndecision_ratio = = 0.2\n")

	_, err := Load(path)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
	if pe.Path != path {
		t.Errorf("Path = %q, want %q", pe.Path, path)
	}
	if pe.Line != 2 {
		t.Errorf("Line = %d, want 2", pe.Line)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeConfig(t, "[overlay]\nwidht = 30\n")

	_, err := Load(path)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
	if !strings.HasPrefix(pe.Message, "unknown key") || !strings.Contains(pe.Message, "widht") {
		t.Errorf("Message = %q", pe.Message)
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, "[pager]\ncooldown = \"later\"\n")

	_, err := Load(path)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	path := writeConfig(t, "[pager]\nsnap_window_ratio = 0.5\n")

	_, err := Load(path)
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Load() error = %v, want ErrValidationFailed", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "[pager]\ndecision_ratio = 0.25\n")

	t.Setenv("SWIPEPANE_PAGER_DECISION_RATIO", "0.3")
	t.Setenv("SWIPEPANE_PAGER_COOLDOWN", "1s")
	t.Setenv("SWIPEPANE_OVERLAY_PAGES", "A,B,C,D")
	t.Setenv("SWIPEPANE_LOG_LEVEL", "debug")
	t.Setenv("SWIPEPANE_INPUT_DISABLE_DRAG", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Pager.DecisionRatio != 0.3 {
		t.Errorf("DecisionRatio = %v, want env value 0.3", cfg.Pager.DecisionRatio)
	}
	if cfg.Pager.Cooldown.Std() != time.Second {
		t.Errorf("Cooldown = %v, want 1s", cfg.Pager.Cooldown)
	}
	if !reflect.DeepEqual(cfg.Overlay.Pages, []string{"A", "B", "C", "D"}) {
		t.Errorf("Pages = %v", cfg.Overlay.Pages)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Log.Level)
	}
	if !cfg.Input.DisableDrag {
		t.Error("DisableDrag = false, want true")
	}
}

func TestLoadEnvError(t *testing.T) {
	t.Setenv("SWIPEPANE_OVERLAY_WIDTH", "wide")

	if _, err := Load(""); err == nil {
		t.Error("Load() with malformed env = nil error")
	}
}

func TestParseSkipsEnvironment(t *testing.T) {
	t.Setenv("SWIPEPANE_OVERLAY_WIDTH", "60")

	cfg, err := Parse("inline", []byte("[overlay]\nheight = 5\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Overlay.Width != Default().Overlay.Width || cfg.Overlay.Height != 5 {
		t.Errorf("Parse() overlay = %dx%d", cfg.Overlay.Width, cfg.Overlay.Height)
	}
}

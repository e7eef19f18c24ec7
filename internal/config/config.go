package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/swipepane/internal/pager"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "SWIPEPANE_"

// Config is the complete swipepane configuration.
type Config struct {
	Pager    PagerConfig    `toml:"pager" envPrefix:"PAGER_"`
	Input    InputConfig    `toml:"input" envPrefix:"INPUT_"`
	Overlay  OverlayConfig  `toml:"overlay" envPrefix:"OVERLAY_"`
	Watchdog WatchdogConfig `toml:"watchdog" envPrefix:"WATCHDOG_"`
	Plugin   PluginConfig   `toml:"plugin" envPrefix:"PLUGIN_"`
	Log      LogConfig      `toml:"log" envPrefix:"LOG_"`
}

// PagerConfig holds the gesture engine tunables.
type PagerConfig struct {
	ScrollGain       float64  `toml:"scroll_gain" env:"SCROLL_GAIN"`
	MaxStepRatio     float64  `toml:"max_step_ratio" env:"MAX_STEP_RATIO"`
	SnapWindowRatio  float64  `toml:"snap_window_ratio" env:"SNAP_WINDOW_RATIO"`
	DecisionRatio    float64  `toml:"decision_ratio" env:"DECISION_RATIO"`
	DirectionEpsilon float64  `toml:"direction_epsilon" env:"DIRECTION_EPSILON"`
	Cooldown         Duration `toml:"cooldown" env:"COOLDOWN"`

	// InitialIndex is the page shown at startup.
	InitialIndex int `toml:"initial_index" env:"INITIAL_INDEX"`
}

// InputConfig controls how terminal input becomes gesture samples.
type InputConfig struct {
	// CellUnits is the number of gesture units per terminal cell.
	CellUnits float64 `toml:"cell_units" env:"CELL_UNITS"`

	// DragMinDistance is in gesture units.
	DragMinDistance float64 `toml:"drag_min_distance" env:"DRAG_MIN_DISTANCE"`

	// WheelTick is the raw scroll delta of one wheel tick, before gain.
	WheelTick float64 `toml:"wheel_tick" env:"WHEEL_TICK"`

	// WheelIdle ends a wheel gesture after this long without ticks.
	WheelIdle Duration `toml:"wheel_idle" env:"WHEEL_IDLE"`

	DisableDrag   bool `toml:"disable_drag" env:"DISABLE_DRAG"`
	DisableScroll bool `toml:"disable_scroll" env:"DISABLE_SCROLL"`
}

// OverlayConfig controls the terminal overlay.
type OverlayConfig struct {
	// Width is the page width in cells.
	Width  int `toml:"width" env:"WIDTH"`
	Height int `toml:"height" env:"HEIGHT"`

	Pages []string `toml:"pages" env:"PAGES" envSeparator:","`

	FrameInterval  Duration `toml:"frame_interval" env:"FRAME_INTERVAL"`
	SpringResponse Duration `toml:"spring_response" env:"SPRING_RESPONSE"`
	SpringDamping  float64  `toml:"spring_damping" env:"SPRING_DAMPING"`

	Accent     string `toml:"accent" env:"ACCENT"`
	Foreground string `toml:"foreground" env:"FOREGROUND"`
	Background string `toml:"background" env:"BACKGROUND"`

	// ShowStatus draws engine state under the dots.
	ShowStatus bool `toml:"show_status" env:"SHOW_STATUS"`
}

// WatchdogConfig controls stuck session recovery.
type WatchdogConfig struct {
	// Grace of zero disables the watchdog.
	Grace Duration `toml:"grace" env:"GRACE"`
}

// PluginConfig controls the Lua plugin.
type PluginConfig struct {
	// Script is the path of a Lua file. Empty disables the plugin.
	Script  string   `toml:"script" env:"SCRIPT"`
	Timeout Duration `toml:"timeout" env:"TIMEOUT"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `toml:"level" env:"LEVEL"`

	// File is the log destination. Empty means swipepane.log in the
	// temporary directory; "-" discards logs.
	File string `toml:"file" env:"FILE"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := pager.DefaultParams()
	return &Config{
		Pager: PagerConfig{
			ScrollGain:       p.ScrollGain,
			MaxStepRatio:     p.MaxStepRatio,
			SnapWindowRatio:  p.SnapWindowRatio,
			DecisionRatio:    p.DecisionRatio,
			DirectionEpsilon: p.DirectionEpsilon,
			Cooldown:         Duration(p.Cooldown),
		},
		Input: InputConfig{
			CellUnits:       8,
			DragMinDistance: 4,
			WheelTick:       1.5,
			WheelIdle:       Duration(150 * time.Millisecond),
		},
		Overlay: OverlayConfig{
			Width:          40,
			Height:         9,
			Pages:          []string{"Tray", "Media", "Calendar"},
			FrameInterval:  Duration(16 * time.Millisecond),
			SpringResponse: Duration(220 * time.Millisecond),
			SpringDamping:  0.94,
			Accent:         "#ffb000",
			Foreground:     "#e6e6e6",
			Background:     "#1c1c1e",
		},
		Watchdog: WatchdogConfig{
			Grace: Duration(pager.DefaultWatchdogGrace),
		},
		Plugin: PluginConfig{
			Timeout: Duration(100 * time.Millisecond),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "swipepane", "config.toml")
}

// PagerParams converts the [pager] section to engine parameters.
func (c *Config) PagerParams() pager.Params {
	return pager.Params{
		ScrollGain:       c.Pager.ScrollGain,
		MaxStepRatio:     c.Pager.MaxStepRatio,
		SnapWindowRatio:  c.Pager.SnapWindowRatio,
		DecisionRatio:    c.Pager.DecisionRatio,
		DirectionEpsilon: c.Pager.DirectionEpsilon,
		Cooldown:         c.Pager.Cooldown.Std(),
	}
}

// LogFile resolves the log destination path. It returns "" when logging is
// discarded.
func (c *Config) LogFile() string {
	switch c.Log.File {
	case "-":
		return ""
	case "":
		return filepath.Join(os.TempDir(), "swipepane.log")
	default:
		return c.Log.File
	}
}

// Validate checks every setting and returns all failures at once.
func (c *Config) Validate() error {
	var errs ValidationErrors
	fail := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if err := c.PagerParams().Validate(); err != nil {
		var pe *pager.ParamError
		if errors.As(err, &pe) {
			fail("pager."+paramKey(pe.Field), pe.Reason, pe.Value)
		} else {
			fail("pager", err.Error(), nil)
		}
	}
	if c.Pager.InitialIndex < 0 || c.Pager.InitialIndex >= max(len(c.Overlay.Pages), 1) {
		fail("pager.initial_index", "must name an existing page", c.Pager.InitialIndex)
	}

	if c.Input.CellUnits <= 0 {
		fail("input.cell_units", "must be positive", c.Input.CellUnits)
	}
	if c.Input.DragMinDistance < 0 {
		fail("input.drag_min_distance", "must not be negative", c.Input.DragMinDistance)
	}
	if c.Input.WheelTick <= 0 {
		fail("input.wheel_tick", "must be positive", c.Input.WheelTick)
	}
	if c.Input.WheelIdle <= 0 {
		fail("input.wheel_idle", "must be positive", c.Input.WheelIdle)
	}

	if c.Overlay.Width < 8 {
		fail("overlay.width", "must be at least 8 cells", c.Overlay.Width)
	}
	if c.Overlay.Height < 3 {
		fail("overlay.height", "must be at least 3 cells", c.Overlay.Height)
	}
	if len(c.Overlay.Pages) == 0 {
		fail("overlay.pages", "must list at least one page", c.Overlay.Pages)
	}
	if c.Overlay.FrameInterval <= 0 {
		fail("overlay.frame_interval", "must be positive", c.Overlay.FrameInterval)
	}
	if c.Overlay.SpringResponse <= 0 {
		fail("overlay.spring_response", "must be positive", c.Overlay.SpringResponse)
	}
	if c.Overlay.SpringDamping <= 0 {
		fail("overlay.spring_damping", "must be positive", c.Overlay.SpringDamping)
	}
	for _, f := range []struct{ path, value string }{
		{"overlay.accent", c.Overlay.Accent},
		{"overlay.foreground", c.Overlay.Foreground},
		{"overlay.background", c.Overlay.Background},
	} {
		if !isHexColor(f.value) {
			fail(f.path, "must be a #rgb or #rrggbb color", f.value)
		}
	}

	if c.Watchdog.Grace < 0 {
		fail("watchdog.grace", "must not be negative", c.Watchdog.Grace)
	}
	if c.Plugin.Timeout < 0 {
		fail("plugin.timeout", "must not be negative", c.Plugin.Timeout)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		fail("log.level", "must be debug, info, warn or error", c.Log.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Warnings returns non-fatal findings, such as parameter combinations that
// are allowed but unusual.
func (c *Config) Warnings() []string {
	return c.PagerParams().Warnings()
}

// paramKey maps a pager.Params field name to its TOML key.
func paramKey(field string) string {
	switch field {
	case "ScrollGain":
		return "scroll_gain"
	case "MaxStepRatio":
		return "max_step_ratio"
	case "SnapWindowRatio":
		return "snap_window_ratio"
	case "DecisionRatio":
		return "decision_ratio"
	case "DirectionEpsilon":
		return "direction_epsilon"
	case "Cooldown":
		return "cooldown"
	default:
		return strings.ToLower(field)
	}
}

func isHexColor(s string) bool {
	if (len(s) != 4 && len(s) != 7) || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// String renders the effective configuration for logs.
func (c *Config) String() string {
	return fmt.Sprintf("pages=%d width=%d decision=%.2f snap=%.2f max_step=%.2f gain=%.1f cooldown=%s",
		len(c.Overlay.Pages), c.Overlay.Width, c.Pager.DecisionRatio,
		c.Pager.SnapWindowRatio, c.Pager.MaxStepRatio, c.Pager.ScrollGain, c.Pager.Cooldown)
}

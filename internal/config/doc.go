// Package config loads swipepane's configuration.
//
// Configuration is resolved in three layers, later layers overriding
// earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, by default ~/.config/swipepane/config.toml
//  3. Environment variables prefixed with SWIPEPANE_
//
// Environment variable names are the section and key in upper case joined
// by underscores:
//
//	SWIPEPANE_PAGER_DECISION_RATIO=0.25
//	SWIPEPANE_OVERLAY_PAGES=Tray,Media,Calendar
//	SWIPEPANE_WATCHDOG_GRACE=5s
//
// # File Format
//
//	[pager]
//	scroll_gain = 8.0
//	max_step_ratio = 0.20
//	snap_window_ratio = 0.09
//	decision_ratio = 0.20
//	direction_epsilon = 6.0
//	cooldown = "80ms"
//
//	[overlay]
//	width = 40
//	pages = ["Tray", "Media", "Calendar"]
//
// Durations are Go duration strings. A bare integer is read as
// milliseconds. Unknown keys are reported as parse errors so that typos do
// not silently fall back to defaults.
//
// The watcher sub-package reports changes to the file for live reload.
package config

package app

import (
	"fmt"
	"time"

	"github.com/dshills/swipepane/internal/config"
	"github.com/dshills/swipepane/internal/input/gesture"
	"github.com/dshills/swipepane/internal/pager"
	"github.com/dshills/swipepane/internal/plugin/lua"
	"github.com/dshills/swipepane/internal/renderer/backend"
	"github.com/dshills/swipepane/internal/renderer/overlay"
)

// Interrupt payloads posted to the event loop.
type (
	frameTick     struct{}
	reloadRequest struct{ path string }
	wakeUp        struct{}
)

// maxFrameStep caps the animation step after a stall.
const maxFrameStep = 100 * time.Millisecond

// handleBackendEvent processes a backend event and routes it appropriately.
// Returns ErrQuit if the application should exit.
func (app *Application) handleBackendEvent(ev backend.Event) error {
	start := time.Now()
	defer func() {
		app.metrics.RecordEvent(time.Since(start))
	}()

	now := ev.When
	if now.IsZero() {
		now = start
	}

	switch ev.Type {
	case backend.EventKey:
		return app.handleKey(ev, now)
	case backend.EventMouse:
		app.handleMouse(ev, now)
	case backend.EventResize:
		app.handleResize(ev.Width, ev.Height)
	case backend.EventInterrupt:
		switch p := ev.Payload.(type) {
		case frameTick:
			app.handleTick(now)
		case reloadRequest:
			app.reload(p.path)
		}
	}
	return nil
}

// handleKey maps keys to page commands.
func (app *Application) handleKey(ev backend.Event, now time.Time) error {
	switch ev.Key {
	case backend.KeyCtrlC, backend.KeyEscape:
		return ErrQuit
	case backend.KeyLeft:
		app.engine.SetIndex(app.engine.Index() - 1)
	case backend.KeyRight:
		app.engine.SetIndex(app.engine.Index() + 1)
	case backend.KeyHome:
		app.engine.SetIndex(0)
	case backend.KeyEnd:
		app.engine.SetIndex(app.engine.PageCount() - 1)
	case backend.KeyCtrlL:
		app.dirty = true
	case backend.KeyRune:
		return app.handleRune(ev.Rune, now)
	}
	return nil
}

func (app *Application) handleRune(r rune, now time.Time) error {
	switch {
	case r == 'q':
		return ErrQuit
	case r == 'h':
		app.engine.SetIndex(app.engine.Index() - 1)
	case r == 'l':
		app.engine.SetIndex(app.engine.Index() + 1)
	case r >= '1' && r <= '9':
		if i := int(r - '1'); i < app.engine.PageCount() {
			app.engine.SetIndex(i)
		}
	case r == 'r':
		if !app.engine.ForceReset("manual reset", now) {
			app.logger.Debug("reset requested with no active session")
		}
	case r == 's':
		app.showStatus = !app.showStatus
		app.dirty = true
	}
	return nil
}

// handleMouse feeds pointer and wheel events to the normalizers. Cell
// coordinates are scaled by input.cell_units.
func (app *Application) handleMouse(ev backend.Event, now time.Time) {
	box := app.view.Geometry().Box
	app.scroll.SetInside(box.Contains(ev.MouseX, ev.MouseY))

	if ev.MouseButton.IsWheel() {
		dir, ok := wheelDirection(ev)
		if !ok || app.cfg.Input.DisableScroll {
			return
		}
		app.deliverScroll(app.wheel.Wheel(dir, now), now)
		return
	}

	if app.cfg.Input.DisableDrag {
		return
	}
	units := app.cfg.Input.CellUnits
	s, ok := app.drag.Normalize(gesture.PointerEvent{
		X:    float64(ev.MouseX) * units,
		Y:    float64(ev.MouseY) * units,
		Down: ev.MouseButton == backend.MouseLeft,
	})
	if ok {
		app.deliver(s, now)
	}
}

// wheelDirection maps horizontal wheel buttons, and shifted vertical ones as
// many terminals send for horizontal scrolling.
func wheelDirection(ev backend.Event) (gesture.WheelDirection, bool) {
	switch ev.MouseButton {
	case backend.MouseWheelLeft:
		return gesture.WheelLeft, true
	case backend.MouseWheelRight:
		return gesture.WheelRight, true
	case backend.MouseWheelUp:
		if ev.Mod.Has(backend.ModShift) {
			return gesture.WheelLeft, true
		}
	case backend.MouseWheelDown:
		if ev.Mod.Has(backend.ModShift) {
			return gesture.WheelRight, true
		}
	}
	return 0, false
}

func (app *Application) deliverScroll(se gesture.ScrollEvent, now time.Time) {
	if s, ok := app.scroll.Normalize(se); ok {
		app.deliver(s, now)
	}
}

func (app *Application) deliver(s gesture.Sample, now time.Time) {
	res := app.router.Deliver(s, now)
	app.logger.Debug("%s %s delta=%.1f offset=%.1f", s.Source, s.Phase, s.Delta, res.Offset)
	app.dirty = true
}

// handleResize lays the overlay out for a new screen size.
func (app *Application) handleResize(w, h int) {
	app.screenW, app.screenH = w, h

	geom := overlay.Layout(w, h, app.cfg.Overlay.Width, app.cfg.Overlay.Height)
	app.view.SetGeometry(geom)

	units := app.cfg.Input.CellUnits
	app.router.SetPageWidth(float64(geom.PageWidth()) * units)
	app.drag.SetArea(gesture.Area{
		X:      float64(geom.Box.Left) * units,
		Y:      float64(geom.Box.Top) * units,
		Width:  float64(geom.Box.Width()) * units,
		Height: float64(geom.Box.Height()) * units,
	})

	app.spring.Jump(app.stripPosition())
	app.dirty = true
}

// handleTick runs timeouts and animation, then draws when something changed.
func (app *Application) handleTick(now time.Time) {
	if se, ok := app.wheel.Tick(now); ok {
		app.deliverScroll(se, now)
	}
	app.watchdog.Check(app.engine, now)

	dt := min(now.Sub(app.lastTick), maxFrameStep)
	app.lastTick = now

	target := app.stripPosition()
	var moved bool
	if app.engine.Active() {
		moved = app.spring.Position() != target
		app.spring.Jump(target)
	} else {
		app.spring.SetTarget(target)
		moved = app.spring.Update(dt)
	}

	if app.dirty || moved {
		app.render()
	}
}

// stripPosition is where the page strip belongs, in cells.
func (app *Application) stripPosition() float64 {
	units := app.cfg.Input.CellUnits
	return app.engine.Position(app.router.PageWidth()) / units
}

// render draws the current frame.
func (app *Application) render() {
	app.mu.Lock()
	b := app.backend
	app.mu.Unlock()
	if b == nil {
		return
	}

	start := time.Now()
	app.view.Draw(b, overlay.Frame{
		Titles:   app.titles,
		Index:    app.engine.Index(),
		Position: app.spring.Position(),
		Status:   app.statusLine(),
	})
	b.Show()
	app.dirty = false
	app.metrics.RecordFrame(time.Since(start))
}

// statusLine summarizes engine state, or returns "" when hidden.
func (app *Application) statusLine() string {
	if !app.showStatus {
		return ""
	}

	state := "idle"
	if info, ok := app.engine.Session(); ok {
		state = fmt.Sprintf("%s %+.0f", info.Source, app.engine.LiveOffset())
	}
	m := app.engine.Metrics()
	return fmt.Sprintf("%d/%d  %s  commits %d  resets %d",
		app.engine.Index()+1, app.engine.PageCount(), state, m.Commits(), m.ForcedResets)
}

// reload re-reads the configuration and applies what can change at runtime.
// A configuration that fails to load leaves the current one in place.
func (app *Application) reload(path string) {
	log := app.logger.WithComponent("config")

	cfg, err := config.Load(app.configPath)
	if err != nil {
		app.metrics.RecordReload(false)
		log.Warn("reload after change to %s failed: %v", path, err)
		return
	}
	app.metrics.RecordReload(true)
	app.apply(cfg)
	log.Info("reloaded %s", cfg)
}

// apply switches to cfg.
func (app *Application) apply(cfg *config.Config) {
	log := app.logger.WithComponent("config")
	old := app.cfg
	app.cfg = cfg

	level := cfg.Log.Level
	if app.opts.LogLevel != "" {
		level = app.opts.LogLevel
	}
	if !app.opts.Debug {
		app.logger.SetLevel(ParseLogLevel(level))
	}
	for _, w := range cfg.Warnings() {
		log.Warn("%s", w)
	}

	if err := app.engine.SetParams(cfg.PagerParams()); err != nil {
		log.Warn("pager params: %v", err)
	}
	if n := len(cfg.Overlay.Pages); n != app.engine.PageCount() {
		switch err := app.engine.SetPageCount(n); {
		case err != nil:
			log.Warn("page count stays %d: %v", app.engine.PageCount(), err)
		case app.engine.Active():
			log.Info("page count %d applies when the gesture ends", n)
		}
	}
	app.watchdog.SetGrace(cfg.Watchdog.Grace.Std())

	app.scroll.SetGain(cfg.Pager.ScrollGain)
	app.drag.SetMinDistance(cfg.Input.DragMinDistance)
	app.wheel.SetTick(cfg.Input.WheelTick)
	app.wheel.SetIdle(cfg.Input.WheelIdle.Std())

	if theme, err := overlay.ThemeFromHex(cfg.Overlay.Foreground, cfg.Overlay.Background, cfg.Overlay.Accent); err == nil {
		app.view.SetTheme(theme)
	}
	app.spring.SetParams(cfg.Overlay.SpringResponse.Std(), cfg.Overlay.SpringDamping)
	if cfg.Overlay.ShowStatus != old.Overlay.ShowStatus {
		app.showStatus = cfg.Overlay.ShowStatus || app.opts.Debug
	}

	app.loadPlugin()
	app.titles = app.pageTitles()

	if app.screenW > 0 || app.screenH > 0 {
		app.handleResize(app.screenW, app.screenH)
	}
	app.dirty = true
}

// onEngineEvent logs engine events and forwards them to the plugin.
// It runs inside engine calls and must not call back into the engine.
func (app *Application) onEngineEvent(ev pager.Event) {
	log := app.logger.WithComponent("pager")
	if ev.Session.ID != "" {
		log = log.WithFields(map[string]any{
			"session": ev.Session.ID,
			"source":  ev.Session.Source,
		})
	}

	switch ev.Kind {
	case pager.EventSessionBegan:
		log.Debug("session began")

	case pager.EventCommitted:
		log = log.WithFields(map[string]any{"from": ev.From, "to": ev.To})
		if !ev.Changed() {
			log.Debug("reverted at offset %.1f", ev.Offset)
			break
		}
		log.Info("committed at offset %.1f", ev.Offset)
		if err := app.hooks.PageChanged(ev.From, ev.To, ev.Session.Source.String()); err != nil {
			app.pluginError(lua.HookPageChanged, err)
		}

	case pager.EventReset:
		log.Warn("session reset: %s", ev.Reason)
		if err := app.hooks.SessionReset(ev.Reason); err != nil {
			app.pluginError(lua.HookSessionReset, err)
		}

	case pager.EventIndexSet:
		log.WithFields(map[string]any{"from": ev.From, "to": ev.To}).Info("page set")
		if err := app.hooks.PageChanged(ev.From, ev.To, "key"); err != nil {
			app.pluginError(lua.HookPageChanged, err)
		}
	}
	app.dirty = true
}

func (app *Application) pluginError(hook string, err error) {
	app.metrics.RecordPluginError()
	app.logger.WithComponent("plugin").Warn("%v", &ComponentError{Component: "plugin", Action: hook, Err: err})
}

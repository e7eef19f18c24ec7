// Package app wires the gesture engine to a terminal. It owns the event loop,
// which is the only goroutine that touches the engine: input, frame ticks and
// configuration reloads all arrive as backend events.
package app

import (
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/swipepane/internal/config"
	"github.com/dshills/swipepane/internal/config/watcher"
	"github.com/dshills/swipepane/internal/input/gesture"
	"github.com/dshills/swipepane/internal/pager"
	"github.com/dshills/swipepane/internal/plugin/lua"
	"github.com/dshills/swipepane/internal/renderer/backend"
	"github.com/dshills/swipepane/internal/renderer/motion"
	"github.com/dshills/swipepane/internal/renderer/overlay"
)

// Application is the terminal host for one pager.
type Application struct {
	mu sync.Mutex

	opts       Options
	cfg        *config.Config
	configPath string

	logger  *Logger
	logFile *os.File
	metrics *Metrics

	engine   *pager.Engine
	watchdog *pager.Watchdog
	router   *gesture.Router
	drag     *gesture.DragNormalizer
	scroll   *gesture.ScrollNormalizer
	wheel    *gesture.WheelPhaser

	spring *motion.Spring
	view   *overlay.Pager
	titles []string

	hooks   *lua.Hooks
	watcher *watcher.Watcher

	backend backend.Backend

	// Event loop state.
	screenW, screenH int
	lastTick         time.Time
	dirty            bool
	showStatus       bool

	running   atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	cleanOnce sync.Once
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty means the
	// default location.
	ConfigPath string

	// Config replaces loading from ConfigPath and the environment.
	Config *config.Config

	// Debug enables debug logging and the status line.
	Debug bool

	// LogLevel overrides log.level when not empty.
	LogLevel string

	// LogOutput overrides log.file when not nil.
	LogOutput io.Writer

	// NoWatch disables reloading the configuration when it changes.
	NoWatch bool
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		metrics: NewMetrics(),
		done:    make(chan struct{}),
	}

	if err := app.bootstrap(); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Configuration
	app.configPath = app.opts.ConfigPath
	if app.configPath == "" && app.opts.Config == nil {
		app.configPath = config.DefaultPath()
	}
	cfg := app.opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(app.configPath); err != nil {
			return &InitError{Component: "config", Err: err}
		}
	}
	app.cfg = cfg

	// 2. Logging
	if err := app.setupLogging(); err != nil {
		return &InitError{Component: "logging", Err: err}
	}
	app.logger.Info("starting with %s", cfg)
	for _, w := range cfg.Warnings() {
		app.logger.WithComponent("config").Warn("%s", w)
	}

	// 3. Engine
	engine, err := pager.New(len(cfg.Overlay.Pages), cfg.PagerParams(), pager.WithIndex(cfg.Pager.InitialIndex))
	if err != nil {
		return &InitError{Component: "pager", Err: err}
	}
	app.engine = engine
	app.engine.Subscribe(app.onEngineEvent)
	app.watchdog = pager.NewWatchdog(cfg.Watchdog.Grace.Std())

	// 4. Input
	app.router = gesture.NewRouter(engine)
	app.drag = gesture.NewDragNormalizer(cfg.Input.DragMinDistance)
	app.scroll = gesture.NewScrollNormalizer(cfg.Pager.ScrollGain)
	app.wheel = gesture.NewWheelPhaser(cfg.Input.WheelTick, cfg.Input.WheelIdle.Std())

	// 5. Presentation
	theme, err := overlay.ThemeFromHex(cfg.Overlay.Foreground, cfg.Overlay.Background, cfg.Overlay.Accent)
	if err != nil {
		return &InitError{Component: "overlay", Err: err}
	}
	app.view = overlay.NewPager(theme, overlay.Geometry{})
	app.spring = motion.NewSpring(cfg.Overlay.SpringResponse.Std(), cfg.Overlay.SpringDamping)
	app.showStatus = cfg.Overlay.ShowStatus || app.opts.Debug

	// 6. Plugin, non-fatal
	app.loadPlugin()
	app.titles = app.pageTitles()

	return nil
}

// setupLogging creates the logger from options and configuration.
func (app *Application) setupLogging() error {
	level := app.cfg.Log.Level
	if app.opts.LogLevel != "" {
		level = app.opts.LogLevel
	}
	if app.opts.Debug {
		level = "debug"
	}

	out := app.opts.LogOutput
	if out == nil {
		path := app.cfg.LogFile()
		if path == "" {
			out = io.Discard
		} else {
			f, err := OpenLogFile(path)
			if err != nil {
				return err
			}
			app.logFile = f
			out = f
		}
	}

	app.logger = NewLogger(LoggerConfig{
		Level:  ParseLogLevel(level),
		Output: out,
		Prefix: "swipepane",
	})
	return nil
}

// loadPlugin replaces the Lua hooks from plugin.script.
func (app *Application) loadPlugin() {
	if err := app.hooks.Close(); err != nil {
		app.logger.WithComponent("plugin").Warn("close: %v", err)
	}
	app.hooks = nil

	script := app.cfg.Plugin.Script
	if script == "" {
		return
	}

	log := app.logger.WithComponent("plugin")
	hooks, err := lua.LoadHooks(script,
		lua.WithExecutionTimeout(app.cfg.Plugin.Timeout.Std()),
		lua.WithPrintFunc(func(s string) { log.Info("%s", s) }),
	)
	if err != nil {
		app.metrics.RecordPluginError()
		log.Warn("%v", &ComponentError{Component: "plugin", Action: "load", Err: err})
		return
	}
	app.hooks = hooks
	log.Info("loaded %s", script)
}

// pageTitles labels each configured page, asking the plugin first.
func (app *Application) pageTitles() []string {
	titles := make([]string, len(app.cfg.Overlay.Pages))
	for i, name := range app.cfg.Overlay.Pages {
		titles[i] = name
		title, ok, err := app.hooks.PageTitle(i)
		if err != nil {
			app.pluginError(lua.HookPageTitle, err)
			continue
		}
		if ok {
			titles[i] = title
		}
	}
	return titles
}

// SetBackend sets the terminal backend.
// Must be called before Run().
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}

	app.backend = b
	return nil
}

// Run starts the application main loop.
// Blocks until shutdown is requested.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.mu.Lock()
	b := app.backend
	app.mu.Unlock()
	if b == nil {
		return ErrNoBackend
	}
	defer app.cleanup()

	if err := b.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer b.Shutdown()
	b.EnableMouse()

	w, h := b.Size()
	app.handleResize(w, h)
	app.lastTick = time.Now()
	app.render()

	app.startWatcher()
	go app.tickLoop(b, app.cfg.Overlay.FrameInterval.Std())
	defer app.stop()

	return app.eventLoop(b)
}

// eventLoop handles events until quit or shutdown.
func (app *Application) eventLoop(b backend.Backend) error {
	for {
		select {
		case <-app.done:
			return nil
		default:
		}

		ev := b.PollEvent()
		if err := app.handleBackendEvent(ev); err != nil {
			if errors.Is(err, ErrQuit) {
				app.logger.Info("quit")
				return nil
			}
			return err
		}
	}
}

// tickLoop posts frame ticks until shutdown. Ticks are events so that
// animation and timeouts run on the event loop goroutine.
func (app *Application) tickLoop(b backend.Backend, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-app.done:
			return
		case now := <-ticker.C:
			if err := b.PostEvent(backend.Event{Type: backend.EventInterrupt, When: now, Payload: frameTick{}}); err != nil {
				app.metrics.RecordDroppedTick()
			}
		}
	}
}

// startWatcher reloads the configuration and plugin when either file
// changes.
func (app *Application) startWatcher() {
	if app.opts.NoWatch || app.configPath == "" {
		return
	}

	log := app.logger.WithComponent("watcher")
	w, err := watcher.New(watcher.WithErrorHandler(func(err error) {
		log.Warn("%v", err)
	}))
	if err != nil {
		log.Warn("disabled: %v", err)
		return
	}

	for _, path := range []string{app.configPath, app.cfg.Plugin.Script} {
		if path == "" {
			continue
		}
		if err := w.Watch(path); err != nil {
			log.Warn("watch %s: %v", path, err)
		}
	}

	w.OnChange(func(ev watcher.Event) {
		log.Debug("%s %s", ev.Op, ev.Path)
		app.mu.Lock()
		b := app.backend
		app.mu.Unlock()
		if b != nil {
			_ = b.PostEvent(backend.Event{Type: backend.EventInterrupt, Payload: reloadRequest{path: ev.Path}})
		}
	})

	if err := w.Start(); err != nil {
		log.Warn("start: %v", err)
		return
	}
	app.watcher = w
}

// Shutdown stops the event loop. It is safe to call from any goroutine and
// more than once.
func (app *Application) Shutdown() {
	running := app.running.Load()
	app.stop()

	if !running {
		app.cleanup()
		return
	}

	app.mu.Lock()
	b := app.backend
	app.mu.Unlock()
	if b != nil {
		_ = b.PostEvent(backend.Event{Type: backend.EventInterrupt, Payload: wakeUp{}})
	}
}

// stop ends the event loop and the tick goroutine.
func (app *Application) stop() {
	app.closeOnce.Do(func() {
		close(app.done)
	})
}

// cleanup releases the watcher, the plugin and the log file.
func (app *Application) cleanup() {
	app.cleanOnce.Do(func() {
		if app.watcher != nil {
			_ = app.watcher.Stop()
		}
		_ = app.hooks.Close()

		if app.logger != nil && app.engine != nil {
			s := app.engine.Metrics()
			m := app.metrics.Snapshot()
			app.logger.WithFields(map[string]any{
				"sessions":      s.SessionsBegun,
				"commits":       s.Commits(),
				"resets":        s.ForcedResets,
				"frames":        m.FrameCount,
				"dropped_ticks": m.DroppedTicks,
			}).Info("shutdown")
		}

		if app.logFile != nil {
			_ = app.logFile.Close()
		}
	})
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the configuration in effect.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Engine returns the gesture engine. It must only be used from the event
// loop goroutine while the application is running.
func (app *Application) Engine() *pager.Engine {
	return app.engine
}

// Logger returns the application's logger instance.
func (app *Application) Logger() *Logger {
	if app.logger == nil {
		return NullLogger
	}
	return app.logger
}

// Metrics returns the host metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Titles returns the page titles being drawn.
func (app *Application) Titles() []string {
	return app.titles
}

package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/swipepane/internal/config"
	"github.com/dshills/swipepane/internal/pager"
	"github.com/dshills/swipepane/internal/renderer/backend"
)

var t0 = time.Unix(1_700_000_000, 0)

type testHost struct {
	app *Application
	b   *backend.NullBackend
	log *bytes.Buffer
}

func newTestHost(t *testing.T, mutate func(*config.Config)) *testHost {
	t.Helper()

	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}

	var buf bytes.Buffer
	app, err := New(Options{Config: cfg, LogOutput: &buf, LogLevel: "debug", NoWatch: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(app.Shutdown)

	b := backend.NewNullBackend(60, 15)
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := app.SetBackend(b); err != nil {
		t.Fatalf("SetBackend() error = %v", err)
	}
	app.handleResize(60, 15)
	app.lastTick = t0

	return &testHost{app: app, b: b, log: &buf}
}

func (h *testHost) send(t *testing.T, ev backend.Event) error {
	t.Helper()
	return h.app.handleBackendEvent(ev)
}

func (h *testHost) mouse(t *testing.T, x, y int, button backend.MouseButton, at time.Duration) {
	t.Helper()
	h.send(t, backend.Event{
		Type:        backend.EventMouse,
		When:        t0.Add(at),
		MouseX:      x,
		MouseY:      y,
		MouseButton: button,
	})
}

func (h *testHost) key(t *testing.T, k backend.Key, r rune) error {
	t.Helper()
	return h.send(t, backend.Event{Type: backend.EventKey, When: t0, Key: k, Rune: r})
}

func (h *testHost) tick(t *testing.T, at time.Duration) {
	t.Helper()
	h.send(t, backend.Event{Type: backend.EventInterrupt, When: t0.Add(at), Payload: frameTick{}})
}

// settle ticks one frame at a time from start until the animation rests.
func (h *testHost) settle(t *testing.T, start time.Duration) time.Duration {
	t.Helper()
	at := start
	for i := 0; i < 400; i++ {
		at += 16 * time.Millisecond
		h.tick(t, at)
		if !h.app.spring.Animating() {
			return at
		}
	}
	t.Fatal("animation did not settle")
	return at
}

func TestNewDefaults(t *testing.T) {
	h := newTestHost(t, nil)

	if got := h.app.Engine().PageCount(); got != 3 {
		t.Errorf("PageCount() = %d, want 3", got)
	}
	if got := strings.Join(h.app.Titles(), ","); got != "Tray,Media,Calendar" {
		t.Errorf("Titles() = %q", got)
	}
	if got := h.app.router.PageWidth(); got != 320 {
		t.Errorf("page width = %v units, want 320", got)
	}
	if !strings.Contains(h.log.String(), "starting with pages=3") {
		t.Errorf("startup not logged:\n%s", h.log.String())
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Overlay.Pages = nil

	_, err := New(Options{Config: cfg, LogOutput: &bytes.Buffer{}, NoWatch: true})
	var initErr *InitError
	if !errors.As(err, &initErr) || initErr.Component != "pager" {
		t.Fatalf("New() error = %v, want pager InitError", err)
	}
	if !errors.Is(err, pager.ErrInvalidPageCount) {
		t.Errorf("New() error = %v, want ErrInvalidPageCount", err)
	}
}

func TestDragAdvancesPage(t *testing.T) {
	h := newTestHost(t, nil)

	h.mouse(t, 30, 5, backend.MouseLeft, 0)
	h.mouse(t, 25, 5, backend.MouseLeft, 10*time.Millisecond)
	if got := h.app.Engine().LiveOffset(); got != -40 {
		t.Fatalf("offset after first move = %v, want -40", got)
	}

	h.tick(t, 16*time.Millisecond)
	if got := h.app.spring.Position(); got != -5 {
		t.Errorf("strip follows finger at %v cells, want -5", got)
	}

	h.mouse(t, 18, 5, backend.MouseLeft, 20*time.Millisecond)
	h.mouse(t, 18, 5, backend.MouseNone, 30*time.Millisecond)

	if got := h.app.Engine().Index(); got != 1 {
		t.Fatalf("Index() = %d, want 1", got)
	}
	if h.app.Engine().Active() {
		t.Error("session still active after release")
	}

	h.settle(t, 32*time.Millisecond)
	if got := h.app.spring.Position(); got != -40 {
		t.Errorf("strip rests at %v cells, want -40", got)
	}
	if got := strings.TrimSpace(h.b.Row(6)); got != "Media" {
		t.Errorf("title row = %q, want %q", got, "Media")
	}
	if !strings.Contains(h.log.String(), "committed at offset -96.0") {
		t.Errorf("commit not logged:\n%s", h.log.String())
	}
}

func TestShortDragReverts(t *testing.T) {
	h := newTestHost(t, nil)

	h.mouse(t, 30, 5, backend.MouseLeft, 0)
	h.mouse(t, 26, 5, backend.MouseLeft, 10*time.Millisecond)
	h.mouse(t, 26, 5, backend.MouseNone, 20*time.Millisecond)

	if got := h.app.Engine().Index(); got != 0 {
		t.Errorf("Index() = %d, want 0", got)
	}
	if got := h.app.Engine().Metrics().Reverts; got != 1 {
		t.Errorf("Reverts = %d, want 1", got)
	}
}

func TestDragOutsideOverlayIgnored(t *testing.T) {
	h := newTestHost(t, nil)

	h.mouse(t, 2, 5, backend.MouseLeft, 0)
	h.mouse(t, 1, 5, backend.MouseLeft, 10*time.Millisecond)
	h.mouse(t, 0, 5, backend.MouseLeft, 20*time.Millisecond)

	if h.app.Engine().Active() {
		t.Error("drag outside the overlay opened a session")
	}

	// Dragging into the overlay does not arm a press that began outside it.
	h.mouse(t, 30, 5, backend.MouseLeft, 30*time.Millisecond)
	h.mouse(t, 20, 5, backend.MouseLeft, 40*time.Millisecond)
	if h.app.Engine().Active() {
		t.Error("press outside the overlay began a drag once inside")
	}
	h.mouse(t, 20, 5, backend.MouseNone, 50*time.Millisecond)

	h.mouse(t, 30, 5, backend.MouseLeft, 60*time.Millisecond)
	h.mouse(t, 20, 5, backend.MouseLeft, 70*time.Millisecond)
	if !h.app.Engine().Active() {
		t.Error("press inside the overlay after release did not begin a drag")
	}
}

func TestWheelScrollAdvancesAfterIdle(t *testing.T) {
	h := newTestHost(t, nil)

	for i := 0; i < 6; i++ {
		h.mouse(t, 30, 5, backend.MouseWheelRight, time.Duration(i)*10*time.Millisecond)
	}

	info, ok := h.app.Engine().Session()
	if !ok || info.Source != pager.SourceScroll {
		t.Fatalf("Session() = %+v, %v, want scroll session", info, ok)
	}
	if got := h.app.Engine().LiveOffset(); got != -72 {
		t.Errorf("offset = %v, want -72", got)
	}

	h.tick(t, 100*time.Millisecond)
	if !h.app.Engine().Active() {
		t.Fatal("wheel gesture ended before the idle timeout")
	}

	h.tick(t, 200*time.Millisecond)
	if h.app.Engine().Active() {
		t.Fatal("wheel gesture still active after the idle timeout")
	}
	if got := h.app.Engine().Index(); got != 1 {
		t.Errorf("Index() = %d, want 1", got)
	}
}

func TestShiftWheelScrollsHorizontally(t *testing.T) {
	h := newTestHost(t, nil)

	h.send(t, backend.Event{
		Type:        backend.EventMouse,
		When:        t0,
		MouseX:      30,
		MouseY:      5,
		MouseButton: backend.MouseWheelDown,
		Mod:         backend.ModShift,
	})
	if !h.app.Engine().Active() {
		t.Error("shift+wheel down did not open a session")
	}

	h2 := newTestHost(t, nil)
	h2.mouse(t, 30, 5, backend.MouseWheelDown, 0)
	if h2.app.Engine().Active() {
		t.Error("plain vertical wheel opened a session")
	}
}

func TestWheelOutsideOverlayIgnored(t *testing.T) {
	h := newTestHost(t, nil)

	h.mouse(t, 0, 0, backend.MouseWheelRight, 0)
	if h.app.Engine().Active() {
		t.Error("wheel outside the overlay opened a session")
	}
}

func TestInputCanBeDisabled(t *testing.T) {
	h := newTestHost(t, func(c *config.Config) {
		c.Input.DisableDrag = true
		c.Input.DisableScroll = true
	})

	h.mouse(t, 30, 5, backend.MouseWheelRight, 0)
	h.mouse(t, 30, 5, backend.MouseLeft, 10*time.Millisecond)
	h.mouse(t, 20, 5, backend.MouseLeft, 20*time.Millisecond)

	if h.app.Engine().Active() {
		t.Error("disabled input opened a session")
	}
}

func TestWatchdogResetsAbandonedDrag(t *testing.T) {
	h := newTestHost(t, nil)

	h.mouse(t, 30, 5, backend.MouseLeft, 0)
	h.mouse(t, 25, 5, backend.MouseLeft, 10*time.Millisecond)

	h.tick(t, 2*time.Second)
	if !h.app.Engine().Active() {
		t.Fatal("watchdog fired before the grace period")
	}

	h.tick(t, 4*time.Second)
	if h.app.Engine().Active() {
		t.Fatal("watchdog did not reset the session")
	}
	if got := h.app.Engine().Index(); got != 0 {
		t.Errorf("Index() = %d, want 0", got)
	}
	if !strings.Contains(h.log.String(), "session reset: watchdog") {
		t.Errorf("reset not logged:\n%s", h.log.String())
	}
}

func TestKeys(t *testing.T) {
	h := newTestHost(t, nil)
	e := h.app.Engine()

	steps := []struct {
		name string
		key  backend.Key
		r    rune
		want int
	}{
		{"right", backend.KeyRight, 0, 1},
		{"l", backend.KeyRune, 'l', 2},
		{"right at last page", backend.KeyRight, 0, 2},
		{"left", backend.KeyLeft, 0, 1},
		{"h", backend.KeyRune, 'h', 0},
		{"digit", backend.KeyRune, '3', 2},
		{"digit out of range", backend.KeyRune, '9', 2},
		{"home", backend.KeyHome, 0, 0},
		{"end", backend.KeyEnd, 0, 2},
	}

	for _, s := range steps {
		if err := h.key(t, s.key, s.r); err != nil {
			t.Fatalf("%s: error = %v", s.name, err)
		}
		if got := e.Index(); got != s.want {
			t.Errorf("%s: Index() = %d, want %d", s.name, got, s.want)
		}
	}
}

func TestQuitKeys(t *testing.T) {
	h := newTestHost(t, nil)

	for _, k := range []struct {
		key backend.Key
		r   rune
	}{
		{backend.KeyRune, 'q'},
		{backend.KeyEscape, 0},
		{backend.KeyCtrlC, 0},
	} {
		if err := h.key(t, k.key, k.r); !errors.Is(err, ErrQuit) {
			t.Errorf("key %v %q: error = %v, want ErrQuit", k.key, k.r, err)
		}
	}
}

func TestManualReset(t *testing.T) {
	h := newTestHost(t, nil)

	h.mouse(t, 30, 5, backend.MouseWheelRight, 0)
	if !h.app.Engine().Active() {
		t.Fatal("no session to reset")
	}

	h.key(t, backend.KeyRune, 'r')
	if h.app.Engine().Active() {
		t.Error("r did not reset the session")
	}
	if got := h.app.Engine().Metrics().ForcedResets; got != 1 {
		t.Errorf("ForcedResets = %d, want 1", got)
	}
}

func TestKeysRefusedDuringGesture(t *testing.T) {
	h := newTestHost(t, nil)

	h.mouse(t, 30, 5, backend.MouseWheelRight, 0)
	h.key(t, backend.KeyRight, 0)

	if got := h.app.Engine().Index(); got != 0 {
		t.Errorf("Index() = %d, want 0 while a gesture is active", got)
	}
}

func TestStatusLine(t *testing.T) {
	h := newTestHost(t, func(c *config.Config) {
		c.Overlay.ShowStatus = true
	})

	h.tick(t, 16*time.Millisecond)
	if got := strings.TrimSpace(h.b.Row(12)); got != "1/3  idle  commits 0  resets 0" {
		t.Errorf("status row = %q", got)
	}

	h.key(t, backend.KeyRune, 's')
	h.tick(t, 32*time.Millisecond)
	if got := strings.TrimSpace(h.b.Row(12)); got != "" {
		t.Errorf("status row after toggle = %q, want empty", got)
	}
}

func TestResizeRelayouts(t *testing.T) {
	h := newTestHost(t, nil)
	h.app.Engine().SetIndex(1)

	h.send(t, backend.Event{Type: backend.EventResize, Width: 30, Height: 10})

	if got := h.app.router.PageWidth(); got != 240 {
		t.Errorf("page width = %v, want 240", got)
	}
	if got := h.app.spring.Position(); got != -30 {
		t.Errorf("strip position = %v, want -30", got)
	}
	if h.app.spring.Animating() {
		t.Error("resize started an animation")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestPluginHooks(t *testing.T) {
	script := writeFile(t, t.TempDir(), "plugin.lua", `
function page_title(i)
  return "Page " .. i
end

function on_page_changed(from, to, source)
  print("changed", from, to, source)
end

function on_session_reset(reason)
  print("reset", reason)
end
`)

	h := newTestHost(t, func(c *config.Config) {
		c.Plugin.Script = script
	})

	if got := strings.Join(h.app.Titles(), ","); got != "Page 1,Page 2,Page 3" {
		t.Errorf("Titles() = %q", got)
	}

	h.key(t, backend.KeyRight, 0)
	if !strings.Contains(h.log.String(), "changed\t1\t2\tkey") {
		t.Errorf("on_page_changed not called:\n%s", h.log.String())
	}

	h.mouse(t, 30, 5, backend.MouseWheelRight, 0)
	h.key(t, backend.KeyRune, 'r')
	if !strings.Contains(h.log.String(), "reset\tmanual reset") {
		t.Errorf("on_session_reset not called:\n%s", h.log.String())
	}
}

func TestPluginErrorsAreNonFatal(t *testing.T) {
	script := writeFile(t, t.TempDir(), "plugin.lua", `
function page_title(i) error("no titles") end
function on_page_changed() error("boom") end
`)

	h := newTestHost(t, func(c *config.Config) {
		c.Plugin.Script = script
	})

	if got := strings.Join(h.app.Titles(), ","); got != "Tray,Media,Calendar" {
		t.Errorf("Titles() = %q, want configured names", got)
	}

	h.key(t, backend.KeyRight, 0)
	if got := h.app.Engine().Index(); got != 1 {
		t.Errorf("Index() = %d, want 1", got)
	}
	if got := h.app.Metrics().Snapshot().PluginErrors; got != 4 {
		t.Errorf("PluginErrors = %d, want 4", got)
	}
}

func TestMissingPluginIsNonFatal(t *testing.T) {
	h := newTestHost(t, func(c *config.Config) {
		c.Plugin.Script = filepath.Join(t.TempDir(), "missing.lua")
	})

	if h.app.hooks != nil {
		t.Error("hooks loaded from a missing script")
	}
	if !strings.Contains(h.log.String(), "plugin: load") {
		t.Errorf("load failure not logged:\n%s", h.log.String())
	}
}

func TestReloadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", "[overlay]\npages = [\"A\", \"B\", \"C\"]\n")

	var buf bytes.Buffer
	app, err := New(Options{ConfigPath: path, LogOutput: &buf, NoWatch: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(app.Shutdown)
	b := backend.NewNullBackend(60, 15)
	b.Init()
	app.SetBackend(b)
	app.handleResize(60, 15)

	app.Engine().SetIndex(2)

	writeFile(t, dir, "config.toml", "[pager]\ndecision_ratio = 0.3\n\n[overlay]\npages = [\"A\", \"B\"]\nwidth = 20\n")
	app.handleBackendEvent(backend.Event{Type: backend.EventInterrupt, Payload: reloadRequest{path: path}})

	e := app.Engine()
	if got := e.PageCount(); got != 2 {
		t.Errorf("PageCount() = %d, want 2", got)
	}
	if got := e.Index(); got != 1 {
		t.Errorf("Index() = %d, want 1", got)
	}
	if got := e.Params().DecisionRatio; got != 0.3 {
		t.Errorf("DecisionRatio = %v, want 0.3", got)
	}
	if got := strings.Join(app.Titles(), ","); got != "A,B" {
		t.Errorf("Titles() = %q, want A,B", got)
	}
	if got := app.router.PageWidth(); got != 160 {
		t.Errorf("page width = %v, want 160", got)
	}

	writeFile(t, dir, "config.toml", "[pager\n")
	app.handleBackendEvent(backend.Event{Type: backend.EventInterrupt, Payload: reloadRequest{path: path}})

	if got := e.PageCount(); got != 2 {
		t.Errorf("PageCount() after bad reload = %d, want 2", got)
	}
	s := app.Metrics().Snapshot()
	if s.Reloads != 1 || s.ReloadFailures != 1 {
		t.Errorf("reloads = %d/%d, want 1/1", s.Reloads, s.ReloadFailures)
	}
	if !strings.Contains(buf.String(), "failed") {
		t.Errorf("reload failure not logged:\n%s", buf.String())
	}
}

func TestReloadDefersParamsDuringGesture(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", "")

	app, err := New(Options{ConfigPath: path, LogOutput: &bytes.Buffer{}, NoWatch: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(app.Shutdown)
	app.handleResize(60, 15)

	app.handleBackendEvent(backend.Event{
		Type: backend.EventMouse, When: t0, MouseX: 30, MouseY: 5, MouseButton: backend.MouseWheelRight,
	})
	if !app.Engine().Active() {
		t.Fatal("no session")
	}

	writeFile(t, dir, "config.toml", "[pager]\ndecision_ratio = 0.3\n")
	app.handleBackendEvent(backend.Event{Type: backend.EventInterrupt, Payload: reloadRequest{path: path}})

	if got := app.Engine().Params().DecisionRatio; got != 0.2 {
		t.Errorf("DecisionRatio during gesture = %v, want 0.2", got)
	}

	app.Engine().ForceReset("test", t0)
	if got := app.Engine().Params().DecisionRatio; got != 0.3 {
		t.Errorf("DecisionRatio after gesture = %v, want 0.3", got)
	}
}

func TestReloadDefersPageCountDuringGesture(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", "")

	var buf bytes.Buffer
	app, err := New(Options{ConfigPath: path, LogOutput: &buf, NoWatch: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(app.Shutdown)
	app.handleResize(60, 15)
	app.Engine().SetIndex(2)

	app.handleBackendEvent(backend.Event{
		Type: backend.EventMouse, When: t0, MouseX: 30, MouseY: 5, MouseButton: backend.MouseWheelLeft,
	})
	if !app.Engine().Active() {
		t.Fatal("no session")
	}

	writeFile(t, dir, "config.toml", "[overlay]\npages = [\"A\", \"B\"]\n")
	app.handleBackendEvent(backend.Event{Type: backend.EventInterrupt, Payload: reloadRequest{path: path}})

	if got := app.Engine().PageCount(); got != 3 {
		t.Errorf("PageCount() during gesture = %d, want 3", got)
	}
	if !strings.Contains(buf.String(), "page count 2 applies when the gesture ends") {
		t.Errorf("deferred page count not logged:\n%s", buf.String())
	}

	app.handleBackendEvent(backend.Event{Type: backend.EventKey, When: t0, Key: backend.KeyRune, Rune: 'r'})

	if got := app.Engine().PageCount(); got != len(app.Titles()) {
		t.Errorf("PageCount() = %d, want %d to match the titles", got, len(app.Titles()))
	}
	if got := app.Engine().Index(); got != 1 {
		t.Errorf("Index() = %d, want 1", got)
	}
}

func TestRunQuits(t *testing.T) {
	h := newTestHost(t, nil)
	h.b.PostEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'q'})

	if err := h.app.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if h.app.IsRunning() {
		t.Error("IsRunning() = true after Run returned")
	}
	if h.b.ShowCount() == 0 {
		t.Error("Run() never drew a frame")
	}
}

func TestRunShutdown(t *testing.T) {
	h := newTestHost(t, nil)

	errc := make(chan error, 1)
	go func() { errc <- h.app.Run() }()

	deadline := time.Now().Add(2 * time.Second)
	for !h.app.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.app.Shutdown()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after Shutdown")
	}
}

func TestRunWithoutBackend(t *testing.T) {
	app, err := New(Options{Config: config.Default(), LogOutput: &bytes.Buffer{}, NoWatch: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Shutdown()

	if err := app.Run(); !errors.Is(err, ErrNoBackend) {
		t.Errorf("Run() error = %v, want ErrNoBackend", err)
	}
}

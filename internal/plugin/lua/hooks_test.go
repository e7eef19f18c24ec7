package lua

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plugin.lua")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadHooks(t *testing.T) {
	path := writeScript(t, `
changes = {}
resets = {}

function page_title(i)
  if i == 2 then return "Media" end
  if i == 3 then return 3 end
  return nil
end

function on_page_changed(from, to, source)
  table.insert(changes, from .. ">" .. to .. ":" .. source)
end

function on_session_reset(reason)
  table.insert(resets, reason)
end
`)

	h, err := LoadHooks(path)
	if err != nil {
		t.Fatalf("LoadHooks() error = %v", err)
	}
	defer h.Close()

	if h.Path() != path {
		t.Errorf("Path() = %q, want %q", h.Path(), path)
	}
	for _, name := range []string{HookPageTitle, HookPageChanged, HookSessionReset} {
		if !h.Has(name) {
			t.Errorf("Has(%q) = false, want true", name)
		}
	}

	tests := []struct {
		index  int
		want   string
		wantOK bool
	}{
		{0, "", false},
		{1, "Media", true},
		{2, "3", true},
	}
	for _, tt := range tests {
		got, ok, err := h.PageTitle(tt.index)
		if err != nil {
			t.Errorf("PageTitle(%d) error = %v", tt.index, err)
			continue
		}
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("PageTitle(%d) = %q, %v, want %q, %v", tt.index, got, ok, tt.want, tt.wantOK)
		}
	}

	if err := h.PageChanged(0, 1, "drag"); err != nil {
		t.Fatalf("PageChanged() error = %v", err)
	}
	if err := h.SessionReset("watchdog"); err != nil {
		t.Fatalf("SessionReset() error = %v", err)
	}
	if err := h.state.DoString(`joined = table.concat(changes, ",") .. "|" .. table.concat(resets, ",")`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := h.state.GetGlobal("joined").String(); got != "1>2:drag|watchdog" {
		t.Errorf("recorded = %q, want %q", got, "1>2:drag|watchdog")
	}
}

func TestHooksUndefined(t *testing.T) {
	h, err := LoadHooks(writeScript(t, `x = 1`))
	if err != nil {
		t.Fatalf("LoadHooks() error = %v", err)
	}
	defer h.Close()

	if h.Has(HookPageTitle) {
		t.Error("Has(page_title) = true, want false")
	}
	if _, ok, err := h.PageTitle(0); ok || err != nil {
		t.Errorf("PageTitle() = ok %v, err %v, want false, nil", ok, err)
	}
	if err := h.PageChanged(0, 1, "scroll"); err != nil {
		t.Errorf("PageChanged() error = %v", err)
	}
	if err := h.SessionReset("manual"); err != nil {
		t.Errorf("SessionReset() error = %v", err)
	}
}

func TestHooksErrors(t *testing.T) {
	h, err := LoadHooks(writeScript(t, `
function page_title(i) return {} end
function on_page_changed() error("nope") end
`))
	if err != nil {
		t.Fatalf("LoadHooks() error = %v", err)
	}
	defer h.Close()

	if _, _, err := h.PageTitle(0); err == nil || !strings.Contains(err.Error(), "want string") {
		t.Errorf("PageTitle() error = %v, want type error", err)
	}
	if err := h.PageChanged(0, 1, "drag"); err == nil || !strings.Contains(err.Error(), "nope") {
		t.Errorf("PageChanged() error = %v, want nope", err)
	}
}

func TestLoadHooksFailure(t *testing.T) {
	if _, err := LoadHooks(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("LoadHooks(missing) should return error")
	}
	if _, err := LoadHooks(writeScript(t, `function (`)); err == nil {
		t.Error("LoadHooks(syntax error) should return error")
	}
}

func TestNilHooks(t *testing.T) {
	var h *Hooks

	if h.Has(HookPageTitle) {
		t.Error("nil Has() = true")
	}
	if _, ok, err := h.PageTitle(0); ok || err != nil {
		t.Errorf("nil PageTitle() = %v, %v", ok, err)
	}
	if err := h.PageChanged(0, 1, "drag"); err != nil {
		t.Errorf("nil PageChanged() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}

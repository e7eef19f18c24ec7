package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Hook function names a script may define.
const (
	HookPageTitle    = "page_title"
	HookPageChanged  = "on_page_changed"
	HookSessionReset = "on_session_reset"
)

// Hooks calls the overlay callbacks defined by a user script. Page numbers are
// passed to Lua 1-based. A nil *Hooks is valid and does nothing.
type Hooks struct {
	state *State
	path  string
}

// LoadHooks runs the script at path in a fresh sandboxed state.
func LoadHooks(path string, opts ...StateOption) (*Hooks, error) {
	state, err := NewState(opts...)
	if err != nil {
		return nil, err
	}
	if err := state.DoFile(path); err != nil {
		state.Close()
		return nil, fmt.Errorf("load plugin %s: %w", path, err)
	}
	return &Hooks{state: state, path: path}, nil
}

// NewHooks wraps an already prepared state.
func NewHooks(state *State) *Hooks {
	return &Hooks{state: state}
}

// Path returns the script the hooks were loaded from.
func (h *Hooks) Path() string {
	if h == nil {
		return ""
	}
	return h.path
}

// Has reports whether the script defines the named hook.
func (h *Hooks) Has(name string) bool {
	if h == nil || h.state == nil {
		return false
	}
	return h.state.HasFunction(name)
}

// PageTitle asks the script for the title of page index. ok is false when the
// hook is not defined or returned nil.
func (h *Hooks) PageTitle(index int) (title string, ok bool, err error) {
	if !h.Has(HookPageTitle) {
		return "", false, nil
	}

	ret, err := h.state.Call(HookPageTitle, lua.LNumber(index+1))
	if err != nil {
		return "", false, fmt.Errorf("%s(%d): %w", HookPageTitle, index+1, err)
	}
	if len(ret) == 0 || ret[0] == lua.LNil {
		return "", false, nil
	}

	switch v := ret[0].(type) {
	case lua.LString:
		return string(v), true, nil
	case lua.LNumber:
		return v.String(), true, nil
	default:
		return "", false, fmt.Errorf("%s(%d): returned %s, want string", HookPageTitle, index+1, ret[0].Type())
	}
}

// PageChanged notifies the script that the page index moved.
func (h *Hooks) PageChanged(from, to int, source string) error {
	if !h.Has(HookPageChanged) {
		return nil
	}
	_, err := h.state.Call(HookPageChanged, lua.LNumber(from+1), lua.LNumber(to+1), lua.LString(source))
	if err != nil {
		return fmt.Errorf("%s: %w", HookPageChanged, err)
	}
	return nil
}

// SessionReset notifies the script that a gesture was abandoned.
func (h *Hooks) SessionReset(reason string) error {
	if !h.Has(HookSessionReset) {
		return nil
	}
	if _, err := h.state.Call(HookSessionReset, lua.LString(reason)); err != nil {
		return fmt.Errorf("%s: %w", HookSessionReset, err)
	}
	return nil
}

// Close releases the script's state.
func (h *Hooks) Close() error {
	if h == nil || h.state == nil {
		return nil
	}
	return h.state.Close()
}

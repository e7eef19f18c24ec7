// Package lua runs user scripts that customise the pager overlay.
//
// A State is a gopher-lua interpreter with only the base, table, string and
// math libraries opened. Anything that reaches the filesystem or loads more
// code (dofile, loadfile, load, loadstring, require, module) is removed, and
// print is routed to a Go callback instead of stdout.
//
// Every chunk and call runs under the state's execution timeout:
//
//	state, err := lua.NewState(lua.WithExecutionTimeout(100 * time.Millisecond))
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
//	if err := state.DoString(`function page_title(i) return "Page " .. i end`); err != nil {
//	    return err
//	}
//
// Hooks sits on top of a State and exposes the callbacks the overlay knows
// about: page_title, on_page_changed and on_session_reset. Scripts define
// whichever of them they need.
//
// gopher-lua states are not goroutine-safe. State serialises access with a
// mutex, so a State may be shared, but long-running scripts block every other
// caller until they finish or time out.
package lua

package backend

import "errors"

// ErrEventQueueFull is returned by PostEvent when the event queue cannot
// accept more events.
var ErrEventQueueFull = errors.New("backend: event queue full")

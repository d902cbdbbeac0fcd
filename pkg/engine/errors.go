package engine

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning is returned by Start when the server is running.
var ErrAlreadyRunning = errors.New("server is already running")

// ErrNotRunning reports a lifecycle violation on an operation that
// requires a running server. Stop is a no-op when stopped, so today only
// embedders that add such operations surface it.
var ErrNotRunning = errors.New("server is not running")

// ErrUnsupported is returned by UpdateMappings: the routing table is an
// immutable snapshot, mapping changes take effect at the next Start.
var ErrUnsupported = errors.New("mapping updates require a server restart")

// BindError reports a failed socket bind. The supervisor stays stopped.
type BindError struct {
	Port int
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind 127.0.0.1:%d: %v", e.Port, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

package camera

import (
	"errors"
	"fmt"
)

// ErrCapabilityUnavailable is returned when an operation needs a camera the
// device does not have (or was denied at probe time).
var ErrCapabilityUnavailable = errors.New("camera capability unavailable")

// SessionError wraps stream acquisition failures: permission denied, device
// busy, unsatisfiable constraints. It is surfaced to callers as a structured
// result, never a panic.
type SessionError struct {
	Reason string
	Err    error
}

func (e *SessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("camera session: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("camera session: %s", e.Reason)
}

func (e *SessionError) Unwrap() error { return e.Err }

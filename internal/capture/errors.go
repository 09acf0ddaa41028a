package capture

import "fmt"

// CaptureError covers the fail-fast paths of the pipeline: no active
// session, or a frame grab failing mid-flight (e.g. the camera was stopped
// during capture). No partial photo reaches the store in either case.
type CaptureError struct {
	Reason string
	Err    error
}

func (e *CaptureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("capture: %s", e.Reason)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// CompressionError marks an encode failure for one of the derived
// representations.
type CompressionError struct {
	Stage string
	Err   error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("compression %s: %v", e.Stage, e.Err)
}

func (e *CompressionError) Unwrap() error { return e.Err }

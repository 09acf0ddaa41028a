package camera

import (
	"context"
	"image"
)

type FacingMode string

const (
	FacingFront FacingMode = "user"
	FacingBack  FacingMode = "environment"
)

// DeviceInfo describes one video input as reported by the platform.
// Front/back classification happens by label heuristics in the probe, the
// same way browser device enumeration is interpreted.
type DeviceInfo struct {
	ID    string
	Label string
}

// StreamConstraints express the ideal stream to acquire. Drivers satisfy them
// best-effort; the actual geometry comes back in TrackSettings.
type StreamConstraints struct {
	Facing                 FacingMode
	Width                  int
	Height                 int
	ContinuousFocus        bool
	ContinuousExposure     bool
	ContinuousWhiteBalance bool
}

type TrackSettings struct {
	Width    int
	Height   int
	Facing   FacingMode
	HasFlash bool
}

// Stream is one live camera feed. Grab returns the current frame at the
// stream's native resolution; after Stop it fails.
type Stream interface {
	Settings() TrackSettings
	Grab(ctx context.Context) (image.Image, error)
	Stop()
}

// Driver is the seam to the platform camera stack. Hardware bindings (V4L2,
// AVFoundation, a gocv build) implement this; the virtual driver is the
// no-hardware default.
type Driver interface {
	EnumerateDevices(ctx context.Context) ([]DeviceInfo, error)
	Open(ctx context.Context, c StreamConstraints) (Stream, error)
}

// Surface receives the active stream so a presentation layer can render a
// live preview. Attach replaces any previous binding.
type Surface interface {
	Attach(Stream)
	Detach()
}

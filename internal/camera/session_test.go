package camera

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"photodoc/internal/models"
)

func capsWithCamera(has bool) func() models.CameraCapabilities {
	return func() models.CameraCapabilities {
		return models.CameraCapabilities{HasCamera: has}
	}
}

func TestSession_InitializeWithoutCamera(t *testing.T) {
	drv := NewVirtualDriver(640, 480)
	s := NewSession(drv, capsWithCamera(false), zerolog.Nop())

	err := s.Initialize(context.Background(), FacingBack, nil)
	if !errors.Is(err, ErrCapabilityUnavailable) {
		t.Fatalf("Initialize() error = %v, want ErrCapabilityUnavailable", err)
	}
	if s.Active() {
		t.Error("session should not be active after failed initialize")
	}
}

func TestSession_InitializeTwiceLeavesOneStream(t *testing.T) {
	drv := NewVirtualDriver(640, 480)
	s := NewSession(drv, capsWithCamera(true), zerolog.Nop())
	ctx := context.Background()

	if err := s.Initialize(ctx, FacingBack, nil); err != nil {
		t.Fatalf("first Initialize() failed: %v", err)
	}
	if err := s.Initialize(ctx, FacingFront, nil); err != nil {
		t.Fatalf("second Initialize() failed: %v", err)
	}

	if got := drv.ActiveStreams(); got != 1 {
		t.Errorf("ActiveStreams() = %d, want 1 (prior stream must be stopped)", got)
	}
	if s.Facing() != FacingFront {
		t.Errorf("Facing() = %s, want %s", s.Facing(), FacingFront)
	}
}

func TestSession_StopIdempotent(t *testing.T) {
	drv := NewVirtualDriver(640, 480)
	s := NewSession(drv, capsWithCamera(true), zerolog.Nop())

	// Safe with no active session.
	s.Stop()

	if err := s.Initialize(context.Background(), FacingBack, nil); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	s.Stop()
	s.Stop()

	if s.Active() {
		t.Error("session should be inactive after Stop")
	}
	if got := drv.ActiveStreams(); got != 0 {
		t.Errorf("ActiveStreams() = %d, want 0", got)
	}
}

func TestSession_SurfaceBinding(t *testing.T) {
	drv := NewVirtualDriver(640, 480)
	s := NewSession(drv, capsWithCamera(true), zerolog.Nop())
	surface := NewBroadcast()

	if err := s.Initialize(context.Background(), FacingBack, surface); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	if _, err := surface.Frame(context.Background()); err != nil {
		t.Fatalf("surface Frame() failed while session active: %v", err)
	}

	s.Stop()
	if _, err := surface.Frame(context.Background()); !errors.Is(err, ErrNoAttachedStream) {
		t.Errorf("surface Frame() after stop = %v, want ErrNoAttachedStream", err)
	}
}

func TestVirtualStream_GrabAfterStop(t *testing.T) {
	drv := NewVirtualDriver(320, 240)
	stream, err := drv.Open(context.Background(), StreamConstraints{Facing: FacingBack})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	stream.Stop()

	if _, err := stream.Grab(context.Background()); err == nil {
		t.Error("Grab() on a stopped stream should fail")
	}
}

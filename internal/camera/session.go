package camera

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"photodoc/internal/models"
)

// Session owns at most one live camera stream. Initialize tears down any
// previous stream before acquiring a new one, so two back-to-back calls leave
// exactly one stream open and one stopped.
type Session struct {
	drv  Driver
	caps func() models.CameraCapabilities
	log  zerolog.Logger

	mu      sync.Mutex
	stream  Stream
	surface Surface
	facing  FacingMode
}

func NewSession(drv Driver, caps func() models.CameraCapabilities, log zerolog.Logger) *Session {
	return &Session{drv: drv, caps: caps, log: log}
}

func (s *Session) Initialize(ctx context.Context, facing FacingMode, surface Surface) error {
	if !s.caps().HasCamera {
		return ErrCapabilityUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		s.teardownLocked()
	}

	stream, err := s.drv.Open(ctx, StreamConstraints{
		Facing:                 facing,
		Width:                  3840,
		Height:                 2160,
		ContinuousFocus:        true,
		ContinuousExposure:     true,
		ContinuousWhiteBalance: true,
	})
	if err != nil {
		return &SessionError{Reason: "stream acquisition failed", Err: err}
	}

	s.stream = stream
	s.facing = facing
	s.surface = surface
	if surface != nil {
		surface.Attach(stream)
	}

	settings := stream.Settings()
	s.log.Info().
		Str("facing", string(facing)).
		Int("width", settings.Width).
		Int("height", settings.Height).
		Msg("camera session initialized")
	return nil
}

// Stop is idempotent and safe with no active session.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return
	}
	s.teardownLocked()
	s.log.Info().Msg("camera session stopped")
}

func (s *Session) teardownLocked() {
	if s.surface != nil {
		s.surface.Detach()
		s.surface = nil
	}
	if s.stream != nil {
		s.stream.Stop()
		s.stream = nil
	}
	s.facing = ""
}

// Stream returns the live stream, or nil when no session is active.
func (s *Session) Stream() Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}

func (s *Session) Active() bool {
	return s.Stream() != nil
}

func (s *Session) Facing() FacingMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facing
}

package camera

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
)

// VirtualDriver is a synthetic camera backend: it enumerates a front and a
// back device and serves generated frames. It keeps the whole pipeline
// runnable on machines with no camera hardware and is the frame source the
// tests use.
type VirtualDriver struct {
	width    int
	height   int
	hasFlash bool

	mu      sync.Mutex
	streams []*virtualStream
}

func NewVirtualDriver(width, height int) *VirtualDriver {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	return &VirtualDriver{width: width, height: height, hasFlash: true}
}

func (d *VirtualDriver) EnumerateDevices(ctx context.Context) ([]DeviceInfo, error) {
	return []DeviceInfo{
		{ID: "virtual-0", Label: "Virtual Back Camera (environment)"},
		{ID: "virtual-1", Label: "Virtual Front Camera (user)"},
	}, nil
}

func (d *VirtualDriver) Open(ctx context.Context, c StreamConstraints) (Stream, error) {
	w, h := d.width, d.height
	// Honor smaller requested geometry, never upscale past the sensor.
	if c.Width > 0 && c.Width < w {
		w = c.Width
	}
	if c.Height > 0 && c.Height < h {
		h = c.Height
	}
	facing := c.Facing
	if facing == "" {
		facing = FacingBack
	}

	s := &virtualStream{width: w, height: h, facing: facing, hasFlash: d.hasFlash}
	d.mu.Lock()
	d.streams = append(d.streams, s)
	d.mu.Unlock()
	return s, nil
}

// ActiveStreams reports how many opened streams have not been stopped.
func (d *VirtualDriver) ActiveStreams() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, s := range d.streams {
		if !s.stoppedNow() {
			n++
		}
	}
	return n
}

type virtualStream struct {
	width    int
	height   int
	facing   FacingMode
	hasFlash bool

	mu      sync.Mutex
	stopped bool
	frames  int
}

var errStreamStopped = errors.New("stream stopped")

func (s *virtualStream) Settings() TrackSettings {
	return TrackSettings{Width: s.width, Height: s.height, Facing: s.facing, HasFlash: s.hasFlash}
}

func (s *virtualStream) Grab(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, errStreamStopped
	}
	s.frames++
	n := s.frames
	s.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x + n*7) % 256),
				G: uint8((y + n*13) % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return img, nil
}

func (s *virtualStream) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

func (s *virtualStream) stoppedNow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

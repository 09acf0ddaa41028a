package camera

import (
	"context"
	"errors"
	"image"
	"sync"
)

// Broadcast is a Surface that keeps the attached stream reachable so preview
// endpoints can pull the latest frame.
type Broadcast struct {
	mu     sync.Mutex
	stream Stream
}

func NewBroadcast() *Broadcast {
	return &Broadcast{}
}

func (b *Broadcast) Attach(s Stream) {
	b.mu.Lock()
	b.stream = s
	b.mu.Unlock()
}

func (b *Broadcast) Detach() {
	b.mu.Lock()
	b.stream = nil
	b.mu.Unlock()
}

var ErrNoAttachedStream = errors.New("no stream attached to surface")

// Frame grabs the current frame from whatever stream is attached.
func (b *Broadcast) Frame(ctx context.Context) (image.Image, error) {
	b.mu.Lock()
	s := b.stream
	b.mu.Unlock()
	if s == nil {
		return nil, ErrNoAttachedStream
	}
	return s.Grab(ctx)
}

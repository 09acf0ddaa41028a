package ids

import "github.com/segmentio/ksuid"

// New returns a time-prefixed id with a random payload; collision-free even
// for captures landing in the same millisecond.
func New() string {
	return ksuid.New().String()
}

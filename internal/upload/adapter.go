package upload

import (
	"context"
	"fmt"
	"io"

	"photodoc/internal/models"
)

// ProgressFunc receives monotonically increasing percentages, 0 through 100.
type ProgressFunc func(percent int)

// Uploader transfers a photo's compressed payload plus metadata to a remote
// store. Adapters never mutate the photo catalog; recording the returned URL
// is the caller's job.
type Uploader interface {
	Upload(ctx context.Context, photo *models.CameraPhoto, onProgress ProgressFunc) (string, error)
}

// UploadError is the per-call failure surface; the core does no retries.
type UploadError struct {
	Op  string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Op, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// progressReader reports read progress over a known total, clamped so
// callbacks only ever move forward.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	last       int
	onProgress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, onProgress ProgressFunc) *progressReader {
	pr := &progressReader{r: r, total: total, last: -1, onProgress: onProgress}
	pr.report(0)
	return pr
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		percent := 100
		if p.total > 0 {
			percent = int(p.read * 100 / p.total)
		}
		p.report(percent)
	}
	return n, err
}

func (p *progressReader) report(percent int) {
	if p.onProgress == nil {
		return
	}
	if percent > 100 {
		percent = 100
	}
	if percent <= p.last {
		return
	}
	p.last = percent
	p.onProgress(percent)
}

func (p *progressReader) finish() {
	p.report(100)
}

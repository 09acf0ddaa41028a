package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"photodoc/internal/camera"
	"photodoc/internal/geo"
	"photodoc/internal/ids"
	"photodoc/internal/models"
	"photodoc/internal/store"
)

const (
	defaultQuality   = 0.8
	thumbnailQuality = 0.7

	contrastBoost    = 10
	brightnessBoost  = 5
	saturationReduce = -10
)

var defaultTags = []string{"receipt", "documentation"}

// Options control a single capture. Zero values fall back to the documented
// defaults (quality 0.8, GPS on, receipt filename and tags).
type Options struct {
	AssociatedRecord *models.AssociatedRecord
	Tags             []string
	Quality          float64
	IncludeGPS       *bool
	Filename         string
}

// Enqueuer hands finished captures to the pending-upload queue.
type Enqueuer interface {
	EnqueueUpload(ctx context.Context, photoID string) error
}

// Pipeline turns one live frame into a full CameraPhoto: lossless original,
// bounded-size enhanced compressed representation, fixed-size thumbnail,
// optional GPS enrichment, then a store insert. Compression and thumbnailing
// always complete before CapturePhoto returns.
type Pipeline struct {
	session    *camera.Session
	tagger     *geo.GeoTagger
	store      *store.Store
	uploads    Enqueuer
	log        zerolog.Logger
	deviceInfo string

	maxWidth      int
	maxHeight     int
	thumbnailSize int
}

func NewPipeline(session *camera.Session, tagger *geo.GeoTagger, st *store.Store, uploads Enqueuer, deviceInfo string, maxWidth, maxHeight, thumbnailSize int, log zerolog.Logger) *Pipeline {
	if maxWidth <= 0 {
		maxWidth = 1920
	}
	if maxHeight <= 0 {
		maxHeight = 1080
	}
	if thumbnailSize <= 0 {
		thumbnailSize = 150
	}
	return &Pipeline{
		session:       session,
		tagger:        tagger,
		store:         st,
		uploads:       uploads,
		log:           log,
		deviceInfo:    deviceInfo,
		maxWidth:      maxWidth,
		maxHeight:     maxHeight,
		thumbnailSize: thumbnailSize,
	}
}

func (p *Pipeline) CapturePhoto(ctx context.Context, opts Options) (*models.CameraPhoto, error) {
	stream := p.session.Stream()
	if stream == nil {
		return nil, &CaptureError{Reason: "no active camera session"}
	}

	frame, err := stream.Grab(ctx)
	if err != nil {
		return nil, &CaptureError{Reason: "frame grab failed", Err: err}
	}
	settings := stream.Settings()

	// Clamp before use so the recorded quality matches the encode.
	quality := opts.Quality
	if quality <= 0 {
		quality = defaultQuality
	}
	if quality > 1 {
		quality = 1
	}

	original, err := encodePNG(frame)
	if err != nil {
		return nil, &CompressionError{Stage: "original", Err: err}
	}

	compressed, err := p.compress(frame, quality)
	if err != nil {
		return nil, err
	}

	thumbnail, err := p.thumbnail(frame)
	if err != nil {
		return nil, err
	}

	var location *models.GPSLocation
	if opts.IncludeGPS == nil || *opts.IncludeGPS {
		// Best effort with its own bounded timeout; absence never fails
		// the capture.
		location = p.tagger.Tag(ctx)
	}

	originalSize := int64(len(original))
	compressedSize := int64(len(compressed))
	// May go negative for tiny or low-entropy sources; recorded as-is.
	ratio := float64(originalSize-compressedSize) / float64(originalSize)

	now := time.Now()
	filename := opts.Filename
	if filename == "" {
		filename = fmt.Sprintf("receipt_%d.jpg", now.UnixMilli())
	}
	tags := opts.Tags
	if len(tags) == 0 {
		tags = defaultTags
	}

	photo := &models.CameraPhoto{
		ID:             ids.New(),
		Filename:       filename,
		OriginalBlob:   original,
		CompressedBlob: compressed,
		Thumbnail:      thumbnail,
		Metadata: models.PhotoMetadata{
			CapturedAt:  now,
			DeviceInfo:  p.deviceInfo,
			GPSLocation: location,
			CameraSettings: models.CameraSettings{
				Width:      settings.Width,
				Height:     settings.Height,
				FacingMode: string(settings.Facing),
				Flash:      settings.HasFlash,
			},
			Compression: models.CompressionInfo{
				OriginalSize:     originalSize,
				CompressedSize:   compressedSize,
				CompressionRatio: ratio,
				Quality:          quality,
			},
		},
		Tags: append([]string(nil), tags...),
	}
	if opts.AssociatedRecord != nil {
		photo.AssociatedRecords = []models.AssociatedRecord{*opts.AssociatedRecord}
	}

	if err := p.store.PutPhoto(ctx, photo); err != nil {
		return nil, &CaptureError{Reason: "store insert failed", Err: err}
	}

	if p.uploads != nil {
		if err := p.uploads.EnqueueUpload(ctx, photo.ID); err != nil {
			p.log.Warn().Err(err).Str("photo_id", photo.ID).Msg("enqueue upload failed")
		}
	}

	p.log.Info().
		Str("photo_id", photo.ID).
		Int64("original_size", originalSize).
		Int64("compressed_size", compressedSize).
		Float64("ratio", ratio).
		Bool("gps", location != nil).
		Msg("photo captured")

	// The store owns photo from here on and the enqueued upload may already
	// be stamping it; hand the caller an independent record.
	result := photo.WithoutBlobs()
	result.OriginalBlob = photo.OriginalBlob
	result.CompressedBlob = photo.CompressedBlob
	return &result, nil
}

// compress scales the frame down to fit the configured bounds (never up),
// applies the fixed legibility enhancement, and re-encodes as JPEG at the
// requested quality.
func (p *Pipeline) compress(frame image.Image, quality float64) ([]byte, error) {
	img := imaging.Fit(frame, p.maxWidth, p.maxHeight, imaging.Lanczos)
	img = imaging.AdjustContrast(img, contrastBoost)
	img = imaging.AdjustBrightness(img, brightnessBoost)
	img = imaging.AdjustSaturation(img, saturationReduce)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
		return nil, &CompressionError{Stage: "compressed", Err: err}
	}
	return buf.Bytes(), nil
}

// thumbnail center-crops to the thumbnail aspect and resizes to the fixed
// square, whatever the source geometry.
func (p *Pipeline) thumbnail(frame image.Image) (string, error) {
	img := imaging.Fill(frame, p.thumbnailSize, p.thumbnailSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(thumbnailQuality)}); err != nil {
		return "", &CompressionError{Stage: "thumbnail", Err: err}
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func encodePNG(frame image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func jpegQuality(q float64) int {
	n := int(math.Round(q * 100))
	if n < 1 {
		n = 1
	}
	if n > 100 {
		n = 100
	}
	return n
}

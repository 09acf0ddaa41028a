package capture

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/jpeg"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"photodoc/internal/camera"
	"photodoc/internal/geo"
	"photodoc/internal/models"
	"photodoc/internal/store"
)

type fixedLocator struct {
	fix geo.Fix
}

func (f fixedLocator) CurrentLocation(ctx context.Context) (geo.Fix, error) {
	return f.fix, nil
}

type testRig struct {
	driver  *camera.VirtualDriver
	session *camera.Session
	store   *store.Store
	pipe    *Pipeline
}

func newRig(t *testing.T, width, height int, locator geo.Locator) *testRig {
	t.Helper()

	driver := camera.NewVirtualDriver(width, height)
	caps := func() models.CameraCapabilities {
		return models.CameraCapabilities{HasCamera: true, HasGPS: locator != nil}
	}
	session := camera.NewSession(driver, caps, zerolog.Nop())
	st := store.New(nil, zerolog.Nop())
	tagger := geo.NewGeoTagger(locator, nil, time.Second, time.Second, 5*time.Minute, zerolog.Nop())
	pipe := NewPipeline(session, tagger, st, nil, "test-device", 1920, 1080, 150, zerolog.Nop())

	return &testRig{driver: driver, session: session, store: st, pipe: pipe}
}

func (r *testRig) start(t *testing.T) {
	t.Helper()
	if err := r.session.Initialize(context.Background(), camera.FacingBack, nil); err != nil {
		t.Fatalf("session Initialize() failed: %v", err)
	}
}

func TestCapture_NoActiveSession(t *testing.T) {
	rig := newRig(t, 640, 480, nil)

	_, err := rig.pipe.CapturePhoto(context.Background(), Options{})
	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("CapturePhoto() error = %v, want CaptureError", err)
	}
	if rig.store.PhotoCount() != 0 {
		t.Error("no photo may reach the store on a failed capture")
	}
}

func TestCapture_CompressionRatioFormula(t *testing.T) {
	rig := newRig(t, 640, 480, nil)
	rig.start(t)

	photo, err := rig.pipe.CapturePhoto(context.Background(), Options{})
	if err != nil {
		t.Fatalf("CapturePhoto() failed: %v", err)
	}

	c := photo.Metadata.Compression
	want := float64(c.OriginalSize-c.CompressedSize) / float64(c.OriginalSize)
	if math.Abs(c.CompressionRatio-want) > 1e-9 {
		t.Errorf("CompressionRatio = %v, want %v", c.CompressionRatio, want)
	}
	if c.OriginalSize != int64(len(photo.OriginalBlob)) {
		t.Errorf("OriginalSize = %d, want %d", c.OriginalSize, len(photo.OriginalBlob))
	}
	if c.CompressedSize != int64(len(photo.CompressedBlob)) {
		t.Errorf("CompressedSize = %d, want %d", c.CompressedSize, len(photo.CompressedBlob))
	}
	if c.Quality != 0.8 {
		t.Errorf("default Quality = %v, want 0.8", c.Quality)
	}
}

func TestCapture_ReturnedPhotoIndependentOfStore(t *testing.T) {
	rig := newRig(t, 320, 240, nil)
	rig.start(t)

	photo, err := rig.pipe.CapturePhoto(context.Background(), Options{})
	if err != nil {
		t.Fatalf("CapturePhoto() failed: %v", err)
	}

	// An upload may complete the moment the capture lands; the record the
	// caller holds must not change underneath it.
	rig.store.UpdateRemoteURL(context.Background(), photo.ID, "https://store.example/x.jpg")
	rig.store.UpdateTags(context.Background(), photo.ID, []string{"edited"})

	if photo.Metadata.RemoteURL != "" {
		t.Error("returned photo picked up a later RemoteURL write")
	}
	if len(photo.Tags) != 2 || photo.Tags[0] != "receipt" {
		t.Errorf("returned photo picked up a later tag write: %v", photo.Tags)
	}

	stored, _ := rig.store.GetPhoto(photo.ID)
	if stored.Metadata.RemoteURL != "https://store.example/x.jpg" {
		t.Errorf("stored RemoteURL = %q", stored.Metadata.RemoteURL)
	}
}

func TestCapture_QualityClampedBeforeRecording(t *testing.T) {
	rig := newRig(t, 320, 240, nil)
	rig.start(t)

	photo, err := rig.pipe.CapturePhoto(context.Background(), Options{Quality: 5.0})
	if err != nil {
		t.Fatalf("CapturePhoto() failed: %v", err)
	}

	// The encode clamps to 1.0; the recorded value must say the same.
	if q := photo.Metadata.Compression.Quality; q != 1.0 {
		t.Errorf("recorded Quality = %v, want 1.0", q)
	}
}

func decodeThumbnail(t *testing.T, thumbnail string) (int, int) {
	t.Helper()
	const prefix = "data:image/jpeg;base64,"
	if !strings.HasPrefix(thumbnail, prefix) {
		t.Fatalf("thumbnail %q lacks data URL prefix", thumbnail[:30])
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(thumbnail, prefix))
	if err != nil {
		t.Fatalf("thumbnail base64 decode failed: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("thumbnail jpeg decode failed: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestCapture_ThumbnailAlways150Square(t *testing.T) {
	for _, dims := range []struct{ w, h int }{
		{640, 480},
		{480, 640},
		{1920, 400},
		{10, 10},
	} {
		rig := newRig(t, dims.w, dims.h, nil)
		rig.start(t)

		photo, err := rig.pipe.CapturePhoto(context.Background(), Options{})
		if err != nil {
			t.Fatalf("CapturePhoto() %dx%d failed: %v", dims.w, dims.h, err)
		}

		w, h := decodeThumbnail(t, photo.Thumbnail)
		if w != 150 || h != 150 {
			t.Errorf("thumbnail for %dx%d source = %dx%d, want 150x150", dims.w, dims.h, w, h)
		}
	}
}

func TestCapture_IncludeGPSFalse(t *testing.T) {
	locator := fixedLocator{fix: geo.Fix{Latitude: 52.52, Longitude: 13.405, At: time.Now()}}
	rig := newRig(t, 320, 240, locator)
	rig.start(t)

	off := false
	photo, err := rig.pipe.CapturePhoto(context.Background(), Options{IncludeGPS: &off})
	if err != nil {
		t.Fatalf("CapturePhoto() failed: %v", err)
	}
	if photo.Metadata.GPSLocation != nil {
		t.Error("includeGPS=false must never attach a location, even with GPS available")
	}
}

func TestCapture_GPSAttached(t *testing.T) {
	locator := fixedLocator{fix: geo.Fix{Latitude: 52.52, Longitude: 13.405, Accuracy: 8, At: time.Now()}}
	rig := newRig(t, 320, 240, locator)
	rig.start(t)

	photo, err := rig.pipe.CapturePhoto(context.Background(), Options{})
	if err != nil {
		t.Fatalf("CapturePhoto() failed: %v", err)
	}
	loc := photo.Metadata.GPSLocation
	if loc == nil {
		t.Fatal("expected a GPS location by default")
	}
	if loc.Latitude != 52.52 || loc.Longitude != 13.405 {
		t.Errorf("location = %+v", loc)
	}
	if loc.Address == "" {
		t.Error("address should fall back to formatted coordinates without a geocoder")
	}
}

func TestCapture_TinySourceNegativeRatioStillStored(t *testing.T) {
	rig := newRig(t, 10, 10, nil)
	rig.start(t)

	photo, err := rig.pipe.CapturePhoto(context.Background(), Options{Quality: 1.0})
	if err != nil {
		t.Fatalf("CapturePhoto() on 10x10 source failed: %v", err)
	}

	if _, ok := rig.store.GetPhoto(photo.ID); !ok {
		t.Error("photo with non-positive compression ratio must still be stored")
	}
	c := photo.Metadata.Compression
	want := float64(c.OriginalSize-c.CompressedSize) / float64(c.OriginalSize)
	if math.Abs(c.CompressionRatio-want) > 1e-9 {
		t.Errorf("CompressionRatio = %v, want %v (recorded even when <= 0)", c.CompressionRatio, want)
	}
}

func TestCapture_DefaultsAndAssociatedRecord(t *testing.T) {
	rig := newRig(t, 320, 240, nil)
	rig.start(t)

	record := &models.AssociatedRecord{
		Type:         models.RecordPurchaseOrder,
		RecordID:     "po-42",
		RecordNumber: "PO-2024-001",
	}
	photo, err := rig.pipe.CapturePhoto(context.Background(), Options{AssociatedRecord: record})
	if err != nil {
		t.Fatalf("CapturePhoto() failed: %v", err)
	}

	if !strings.HasPrefix(photo.Filename, "receipt_") || !strings.HasSuffix(photo.Filename, ".jpg") {
		t.Errorf("default filename = %q", photo.Filename)
	}
	if len(photo.Tags) != 2 || photo.Tags[0] != "receipt" || photo.Tags[1] != "documentation" {
		t.Errorf("default tags = %v", photo.Tags)
	}
	if len(photo.AssociatedRecords) != 1 || photo.AssociatedRecords[0].RecordID != "po-42" {
		t.Errorf("associatedRecords = %+v", photo.AssociatedRecords)
	}

	if got := rig.store.ListByAssociatedRecord("po-42"); len(got) != 1 {
		t.Errorf("store lookup by record returned %d photos, want 1", len(got))
	}
}

func TestCapture_UniqueIDsUnderRapidCaptures(t *testing.T) {
	rig := newRig(t, 64, 48, nil)
	rig.start(t)

	seen := make(map[string]bool)
	for i := 0; i < 25; i++ {
		photo, err := rig.pipe.CapturePhoto(context.Background(), Options{})
		if err != nil {
			t.Fatalf("capture %d failed: %v", i, err)
		}
		if seen[photo.ID] {
			t.Fatalf("duplicate photo id %s", photo.ID)
		}
		seen[photo.ID] = true
	}
}

func TestCapture_StoppedMidCaptureFailsCleanly(t *testing.T) {
	rig := newRig(t, 320, 240, nil)
	rig.start(t)

	// The session going away between captures must yield a structured error
	// and leave nothing half-inserted.
	rig.session.Stop()

	_, err := rig.pipe.CapturePhoto(context.Background(), Options{})
	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("CapturePhoto() after stop = %v, want CaptureError", err)
	}
	if rig.store.PhotoCount() != 0 {
		t.Error("stopped capture must not leave a partial photo in the store")
	}
}

func TestCapture_CompressedBoundedDimensions(t *testing.T) {
	rig := newRig(t, 640, 480, nil)
	rig.start(t)

	photo, err := rig.pipe.CapturePhoto(context.Background(), Options{})
	if err != nil {
		t.Fatalf("CapturePhoto() failed: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(photo.CompressedBlob))
	if err != nil {
		t.Fatalf("compressed decode failed: %v", err)
	}
	b := img.Bounds()
	// Source fits inside 1920x1080, so no upscale may happen.
	if b.Dx() != 640 || b.Dy() != 480 {
		t.Errorf("compressed dimensions = %dx%d, want 640x480 (never upscaled)", b.Dx(), b.Dy())
	}
}

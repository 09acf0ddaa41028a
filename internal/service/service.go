package service

import (
	"context"
	"fmt"
	"image"
	"os"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"photodoc/internal/camera"
	"photodoc/internal/capture"
	"photodoc/internal/config"
	"photodoc/internal/gallery"
	"photodoc/internal/geo"
	"photodoc/internal/models"
	"photodoc/internal/retention"
	"photodoc/internal/store"
)

// Service is the single explicitly constructed instance consumers hold: it
// owns the probed capabilities, the one camera session, the capture pipeline
// and the photo catalog. Built once at application start, passed by
// reference.
type Service struct {
	log       zerolog.Logger
	driver    camera.Driver
	tagger    *geo.GeoTagger
	session   *camera.Session
	pipeline  *capture.Pipeline
	store     *store.Store
	galleries *gallery.Manager
	retention *retention.Manager
	surface   *camera.Broadcast

	mu   sync.RWMutex
	caps models.CameraCapabilities
}

func New(ctx context.Context, driver camera.Driver, tagger *geo.GeoTagger, st *store.Store, uploads capture.Enqueuer, capCfg config.CaptureConfig, log zerolog.Logger) *Service {
	s := &Service{
		log:       log,
		driver:    driver,
		tagger:    tagger,
		store:     st,
		surface:   camera.NewBroadcast(),
		galleries: gallery.NewManager(st, log),
		retention: retention.NewManager(st, log),
	}

	// Capability probe happens once, here; consumers read the cached result.
	s.caps = camera.Probe(ctx, driver, tagger.Available(), log)
	s.session = camera.NewSession(driver, s.Capabilities, log)
	s.pipeline = capture.NewPipeline(
		s.session, tagger, st, uploads,
		deviceInfo(),
		capCfg.MaxWidth, capCfg.MaxHeight, capCfg.ThumbnailSize,
		log,
	)

	log.Info().
		Bool("has_camera", s.caps.HasCamera).
		Bool("has_gps", s.caps.HasGPS).
		Int("max_width", s.caps.MaxResolution.Width).
		Int("max_height", s.caps.MaxResolution.Height).
		Msg("camera capabilities probed")
	return s
}

func (s *Service) Capabilities() models.CameraCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caps
}

// RefreshCapabilities re-runs the probe on demand, e.g. after a permission
// change.
func (s *Service) RefreshCapabilities(ctx context.Context) models.CameraCapabilities {
	caps := camera.Probe(ctx, s.driver, s.tagger.Available(), s.log)
	s.mu.Lock()
	s.caps = caps
	s.mu.Unlock()
	return caps
}

// InitializeCamera starts (or restarts) the capture session. A nil surface
// binds the service's own preview surface.
func (s *Service) InitializeCamera(ctx context.Context, facing camera.FacingMode, surface camera.Surface) error {
	if surface == nil {
		surface = s.surface
	}
	return s.session.Initialize(ctx, facing, surface)
}

func (s *Service) StopCamera() {
	s.session.Stop()
}

func (s *Service) CameraActive() bool {
	return s.session.Active()
}

func (s *Service) CapturePhoto(ctx context.Context, opts capture.Options) (*models.CameraPhoto, error) {
	return s.pipeline.CapturePhoto(ctx, opts)
}

// PreviewFrame grabs the current frame off the bound surface.
func (s *Service) PreviewFrame(ctx context.Context) (image.Image, error) {
	return s.surface.Frame(ctx)
}

func (s *Service) GetPhoto(id string) (models.CameraPhoto, bool) {
	return s.store.GetPhoto(id)
}

// PhotoForUpload keeps the compressed payload attached for the upload
// adapter.
func (s *Service) PhotoForUpload(id string) (models.CameraPhoto, bool) {
	return s.store.PhotoForUpload(id)
}

func (s *Service) DeletePhoto(ctx context.Context, id string) bool {
	return s.store.DeletePhoto(ctx, id)
}

func (s *Service) UpdatePhotoTags(ctx context.Context, id string, tags []string) bool {
	return s.store.UpdateTags(ctx, id, tags)
}

func (s *Service) UpdatePhotoRemoteURL(ctx context.Context, id, url string) bool {
	return s.store.UpdateRemoteURL(ctx, id, url)
}

// GetPhotosForPurchaseOrder lists every photo whose associated records
// reference the given id.
func (s *Service) GetPhotosForPurchaseOrder(id string) []models.CameraPhoto {
	return s.store.ListByAssociatedRecord(id)
}

func (s *Service) CreatePhotoGallery(ctx context.Context, name, description string, po *models.PurchaseOrderRef, tags []string, isPublic bool) (*models.PhotoGallery, error) {
	return s.galleries.CreateGallery(ctx, name, description, po, tags, isPublic)
}

func (s *Service) AddPhotoToGallery(ctx context.Context, galleryID, photoID string) bool {
	return s.galleries.AddPhoto(ctx, galleryID, photoID)
}

func (s *Service) GetGallery(id string) (models.PhotoGallery, bool) {
	return s.store.GetGallery(id)
}

func (s *Service) Galleries() []models.PhotoGallery {
	return s.store.Galleries()
}

func (s *Service) RetentionManager() *retention.Manager {
	return s.retention
}

func (s *Service) PhotoCount() int {
	return s.store.PhotoCount()
}

func deviceInfo() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s (%s/%s)", host, runtime.GOOS, runtime.GOARCH)
}

package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"photodoc/internal/models"
)

// Repository persists photo and gallery metadata incrementally, keyed by id.
// Blobs never reach it.
type Repository interface {
	UpsertPhoto(ctx context.Context, photo models.CameraPhoto) error
	DeletePhoto(ctx context.Context, id string) error
	UpsertGallery(ctx context.Context, gallery models.PhotoGallery) error
	LoadAll(ctx context.Context) ([]models.CameraPhoto, []models.PhotoGallery, error)
}

// Store is the in-process catalog of captured photos and galleries. It owns
// the photos; galleries hold blob-free copies. All mutations write through
// to the repository when one is configured.
type Store struct {
	mu        sync.RWMutex
	photos    map[string]*models.CameraPhoto
	galleries map[string]*models.PhotoGallery
	repo      Repository
	log       zerolog.Logger
}

func New(repo Repository, log zerolog.Logger) *Store {
	return &Store{
		photos:    make(map[string]*models.CameraPhoto),
		galleries: make(map[string]*models.PhotoGallery),
		repo:      repo,
		log:       log,
	}
}

// Load hydrates the catalog from the repository. Reloaded photos carry no
// blobs; only metadata survives a restart in this tier.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	photos, galleries, err := s.repo.LoadAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range photos {
		p := photos[i]
		s.photos[p.ID] = &p
	}
	for i := range galleries {
		g := galleries[i]
		s.galleries[g.ID] = &g
	}
	s.log.Info().Int("photos", len(photos)).Int("galleries", len(galleries)).Msg("photo catalog loaded")
	return nil
}

func (s *Store) PutPhoto(ctx context.Context, photo *models.CameraPhoto) error {
	s.mu.Lock()
	s.photos[photo.ID] = photo
	s.mu.Unlock()
	return s.persistPhoto(ctx, photo)
}

// GetPhoto returns a blob-free deep copy. Readers never alias the stored
// record; the upload consumer and tag edits mutate it concurrently.
func (s *Store) GetPhoto(id string) (models.CameraPhoto, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.photos[id]
	if !ok {
		return models.CameraPhoto{}, false
	}
	return p.WithoutBlobs(), true
}

// PhotoForUpload returns a copy that keeps the image payloads attached. The
// blob bytes are written once at capture and never mutated afterwards, so the
// copy may share the backing arrays; only the stored record's handles get
// released on delete.
func (s *Store) PhotoForUpload(id string) (models.CameraPhoto, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.photos[id]
	if !ok {
		return models.CameraPhoto{}, false
	}
	out := p.WithoutBlobs()
	out.OriginalBlob = p.OriginalBlob
	out.CompressedBlob = p.CompressedBlob
	return out, true
}

// DeletePhoto removes the photo, releases its blobs, and cascades the removal
// through every gallery referencing it. Deleting an unknown id is a no-op
// returning false.
func (s *Store) DeletePhoto(ctx context.Context, id string) bool {
	s.mu.Lock()
	photo, ok := s.photos[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	photo.ReleaseBlobs()
	delete(s.photos, id)

	var touched []*models.PhotoGallery
	for _, g := range s.galleries {
		kept := g.Photos[:0]
		removed := false
		for _, p := range g.Photos {
			if p.ID == id {
				removed = true
				continue
			}
			kept = append(kept, p)
		}
		if removed {
			g.Photos = kept
			touched = append(touched, g)
		}
	}
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.DeletePhoto(ctx, id); err != nil {
			s.log.Error().Err(err).Str("photo_id", id).Msg("delete photo persistence failed")
		}
		for _, g := range touched {
			s.persistGallery(ctx, g)
		}
	}
	return true
}

// ListByAssociatedRecord returns blob-free copies of every photo referencing
// the given business record id.
func (s *Store) ListByAssociatedRecord(recordID string) []models.CameraPhoto {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.CameraPhoto
	for _, p := range s.photos {
		for _, r := range p.AssociatedRecords {
			if r.RecordID == recordID {
				out = append(out, p.WithoutBlobs())
				break
			}
		}
	}
	return out
}

// Photos returns blob-free copies of the whole catalog.
func (s *Store) Photos() []models.CameraPhoto {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CameraPhoto, 0, len(s.photos))
	for _, p := range s.photos {
		out = append(out, p.WithoutBlobs())
	}
	return out
}

func (s *Store) PhotoCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos)
}

// UpdateTags replaces a photo's tag set, the one permitted mutation besides
// the remote URL.
func (s *Store) UpdateTags(ctx context.Context, id string, tags []string) bool {
	s.mu.Lock()
	photo, ok := s.photos[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	photo.Tags = append([]string(nil), tags...)
	s.mu.Unlock()

	_ = s.persistPhoto(ctx, photo)
	return true
}

// UpdateRemoteURL records where a photo's compressed payload landed after a
// successful upload.
func (s *Store) UpdateRemoteURL(ctx context.Context, id, url string) bool {
	s.mu.Lock()
	photo, ok := s.photos[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	photo.Metadata.RemoteURL = url
	s.mu.Unlock()

	_ = s.persistPhoto(ctx, photo)
	return true
}

func (s *Store) PutGallery(ctx context.Context, gallery *models.PhotoGallery) error {
	s.mu.Lock()
	s.galleries[gallery.ID] = gallery
	s.mu.Unlock()
	s.persistGallery(ctx, gallery)
	return nil
}

// GetGallery returns a deep copy; the cascade delete rewrites gallery photo
// slices in place, so no caller may alias them.
func (s *Store) GetGallery(id string) (models.PhotoGallery, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.galleries[id]
	if !ok {
		return models.PhotoGallery{}, false
	}
	return g.Clone(), true
}

func (s *Store) Galleries() []models.PhotoGallery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PhotoGallery, 0, len(s.galleries))
	for _, g := range s.galleries {
		out = append(out, g.Clone())
	}
	return out
}

// AddPhotoToGallery appends a blob-free copy of an existing photo. False if
// either id is unknown.
func (s *Store) AddPhotoToGallery(ctx context.Context, galleryID, photoID string) bool {
	s.mu.Lock()
	gallery, ok := s.galleries[galleryID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	photo, ok := s.photos[photoID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	gallery.Photos = append(gallery.Photos, photo.WithoutBlobs())
	s.mu.Unlock()

	s.persistGallery(ctx, gallery)
	return true
}

func (s *Store) persistPhoto(ctx context.Context, photo *models.CameraPhoto) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.UpsertPhoto(ctx, photo.WithoutBlobs()); err != nil {
		s.log.Error().Err(err).Str("photo_id", photo.ID).Msg("photo persistence failed")
		return err
	}
	return nil
}

func (s *Store) persistGallery(ctx context.Context, gallery *models.PhotoGallery) {
	if s.repo == nil {
		return
	}
	if err := s.repo.UpsertGallery(ctx, *gallery); err != nil {
		s.log.Error().Err(err).Str("gallery_id", gallery.ID).Msg("gallery persistence failed")
	}
}

package gallery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"photodoc/internal/models"
	"photodoc/internal/store"
)

// Manager groups photos into named collections tied to business records.
// Galleries never own photos; cascading removal lives in the store.
type Manager struct {
	store *store.Store
	log   zerolog.Logger
}

func NewManager(st *store.Store, log zerolog.Logger) *Manager {
	return &Manager{store: st, log: log}
}

// CreateGallery makes an empty gallery. The purchase order reference, when
// given, is copied as a point-in-time snapshot.
func (m *Manager) CreateGallery(ctx context.Context, name, description string, po *models.PurchaseOrderRef, tags []string, isPublic bool) (*models.PhotoGallery, error) {
	gallery := &models.PhotoGallery{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Photos:      []models.CameraPhoto{},
		CreatedAt:   time.Now(),
		Tags:        append([]string(nil), tags...),
		IsPublic:    isPublic,
	}
	if po != nil {
		snapshot := *po
		gallery.AssociatedPurchaseOrder = &snapshot
	}

	if err := m.store.PutGallery(ctx, gallery); err != nil {
		return nil, err
	}

	m.log.Info().Str("gallery_id", gallery.ID).Str("name", name).Msg("gallery created")
	out := gallery.Clone()
	return &out, nil
}

// AddPhoto appends an existing photo by value; false if either id is unknown.
func (m *Manager) AddPhoto(ctx context.Context, galleryID, photoID string) bool {
	return m.store.AddPhotoToGallery(ctx, galleryID, photoID)
}

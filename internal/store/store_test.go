package store

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"photodoc/internal/models"
)

func testPhoto(id, recordID string) *models.CameraPhoto {
	p := &models.CameraPhoto{
		ID:             id,
		Filename:       "receipt_" + id + ".jpg",
		OriginalBlob:   []byte("original"),
		CompressedBlob: []byte("compressed"),
		Thumbnail:      "data:image/jpeg;base64,AAAA",
		Metadata: models.PhotoMetadata{
			CapturedAt: time.Now(),
		},
		Tags: []string{"receipt"},
	}
	if recordID != "" {
		p.AssociatedRecords = []models.AssociatedRecord{{
			Type:         models.RecordPurchaseOrder,
			RecordID:     recordID,
			RecordNumber: "PO-2024-001",
		}}
	}
	return p
}

func testGallery(id string) *models.PhotoGallery {
	return &models.PhotoGallery{
		ID:        id,
		Name:      "Receipt Documentation - PO-2024-001",
		Photos:    []models.CameraPhoto{},
		CreatedAt: time.Now(),
	}
}

func TestPutGetDelete(t *testing.T) {
	s := New(nil, zerolog.Nop())
	ctx := context.Background()

	photo := testPhoto("p1", "")
	if err := s.PutPhoto(ctx, photo); err != nil {
		t.Fatalf("PutPhoto() failed: %v", err)
	}

	got, ok := s.GetPhoto("p1")
	if !ok {
		t.Fatal("GetPhoto() did not find stored photo")
	}
	if got.Filename != photo.Filename {
		t.Errorf("Filename = %q, want %q", got.Filename, photo.Filename)
	}

	if !s.DeletePhoto(ctx, "p1") {
		t.Error("DeletePhoto() = false for existing photo")
	}
	if s.DeletePhoto(ctx, "p1") {
		t.Error("second DeletePhoto() of same id should be a no-op returning false")
	}
	if _, ok := s.GetPhoto("p1"); ok {
		t.Error("photo still present after delete")
	}
}

func TestDeleteReleasesBlobs(t *testing.T) {
	s := New(nil, zerolog.Nop())
	ctx := context.Background()

	photo := testPhoto("p1", "")
	if err := s.PutPhoto(ctx, photo); err != nil {
		t.Fatalf("PutPhoto() failed: %v", err)
	}
	s.DeletePhoto(ctx, "p1")

	if photo.OriginalBlob != nil || photo.CompressedBlob != nil {
		t.Error("delete must release transient blob handles")
	}
}

func TestDeleteCascadesThroughGalleries(t *testing.T) {
	s := New(nil, zerolog.Nop())
	ctx := context.Background()

	gallery := testGallery("g1")
	if err := s.PutGallery(ctx, gallery); err != nil {
		t.Fatalf("PutGallery() failed: %v", err)
	}
	for _, id := range []string{"p1", "p2"} {
		if err := s.PutPhoto(ctx, testPhoto(id, "")); err != nil {
			t.Fatalf("PutPhoto(%s) failed: %v", id, err)
		}
		if !s.AddPhotoToGallery(ctx, "g1", id) {
			t.Fatalf("AddPhotoToGallery(%s) = false", id)
		}
	}

	g, _ := s.GetGallery("g1")
	if len(g.Photos) != 2 {
		t.Fatalf("gallery photo count = %d, want 2", len(g.Photos))
	}

	s.DeletePhoto(ctx, "p1")

	g, _ = s.GetGallery("g1")
	if len(g.Photos) != 1 {
		t.Fatalf("gallery photo count after delete = %d, want 1", len(g.Photos))
	}
	if g.Photos[0].ID != "p2" {
		t.Errorf("remaining gallery photo = %s, want p2", g.Photos[0].ID)
	}
}

func TestAddPhotoToGallery_UnknownIDs(t *testing.T) {
	s := New(nil, zerolog.Nop())
	ctx := context.Background()

	if s.AddPhotoToGallery(ctx, "missing", "missing") {
		t.Error("AddPhotoToGallery() = true for unknown gallery")
	}

	if err := s.PutGallery(ctx, testGallery("g1")); err != nil {
		t.Fatalf("PutGallery() failed: %v", err)
	}
	if s.AddPhotoToGallery(ctx, "g1", "missing") {
		t.Error("AddPhotoToGallery() = true for unknown photo")
	}
}

func TestGalleryHoldsCopies(t *testing.T) {
	s := New(nil, zerolog.Nop())
	ctx := context.Background()

	if err := s.PutGallery(ctx, testGallery("g1")); err != nil {
		t.Fatalf("PutGallery() failed: %v", err)
	}
	photo := testPhoto("p1", "")
	if err := s.PutPhoto(ctx, photo); err != nil {
		t.Fatalf("PutPhoto() failed: %v", err)
	}
	s.AddPhotoToGallery(ctx, "g1", "p1")

	g, _ := s.GetGallery("g1")
	if g.Photos[0].OriginalBlob != nil || g.Photos[0].CompressedBlob != nil {
		t.Error("gallery copies must not own the image blobs")
	}
}

func TestGetPhotoReturnsIndependentCopy(t *testing.T) {
	s := New(nil, zerolog.Nop())
	ctx := context.Background()

	if err := s.PutPhoto(ctx, testPhoto("p1", "")); err != nil {
		t.Fatal(err)
	}

	before, _ := s.GetPhoto("p1")
	if before.OriginalBlob != nil || before.CompressedBlob != nil {
		t.Error("GetPhoto() must not hand out the image blobs")
	}

	// Mutations through the store must not show up in copies handed out
	// earlier; the upload consumer and tag edits run while handlers hold one.
	s.UpdateRemoteURL(ctx, "p1", "https://store.example/p1.jpg")
	s.UpdateTags(ctx, "p1", []string{"damage"})

	if before.Metadata.RemoteURL != "" {
		t.Error("copy picked up a later RemoteURL write")
	}
	if len(before.Tags) != 1 || before.Tags[0] != "receipt" {
		t.Errorf("copy picked up a later tag write: %v", before.Tags)
	}

	after, _ := s.GetPhoto("p1")
	if after.Metadata.RemoteURL != "https://store.example/p1.jpg" {
		t.Errorf("fresh copy RemoteURL = %q", after.Metadata.RemoteURL)
	}
}

func TestPhotoForUploadCarriesBlobs(t *testing.T) {
	s := New(nil, zerolog.Nop())
	ctx := context.Background()

	if err := s.PutPhoto(ctx, testPhoto("p1", "")); err != nil {
		t.Fatal(err)
	}

	got, ok := s.PhotoForUpload("p1")
	if !ok {
		t.Fatal("PhotoForUpload() did not find stored photo")
	}
	if string(got.CompressedBlob) != "compressed" || string(got.OriginalBlob) != "original" {
		t.Error("PhotoForUpload() must keep the image payloads attached")
	}

	if _, ok := s.PhotoForUpload("missing"); ok {
		t.Error("PhotoForUpload() = true for unknown photo")
	}
}

func TestGetGalleryReturnsIndependentCopy(t *testing.T) {
	s := New(nil, zerolog.Nop())
	ctx := context.Background()

	if err := s.PutGallery(ctx, testGallery("g1")); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"p1", "p2"} {
		if err := s.PutPhoto(ctx, testPhoto(id, "")); err != nil {
			t.Fatal(err)
		}
		s.AddPhotoToGallery(ctx, "g1", id)
	}

	before, _ := s.GetGallery("g1")

	// The cascade delete rewrites the stored gallery's photo slice in place;
	// a copy handed out earlier must not see it.
	s.DeletePhoto(ctx, "p1")

	if len(before.Photos) != 2 {
		t.Errorf("copy photo count after cascade = %d, want 2", len(before.Photos))
	}
	after, _ := s.GetGallery("g1")
	if len(after.Photos) != 1 || after.Photos[0].ID != "p2" {
		t.Errorf("fresh copy photos = %+v, want only p2", after.Photos)
	}
}

func TestListByAssociatedRecord(t *testing.T) {
	s := New(nil, zerolog.Nop())
	ctx := context.Background()

	if err := s.PutPhoto(ctx, testPhoto("p1", "po-42")); err != nil {
		t.Fatal(err)
	}
	if err := s.PutPhoto(ctx, testPhoto("p2", "po-42")); err != nil {
		t.Fatal(err)
	}
	if err := s.PutPhoto(ctx, testPhoto("p3", "po-99")); err != nil {
		t.Fatal(err)
	}

	got := s.ListByAssociatedRecord("po-42")
	if len(got) != 2 {
		t.Errorf("ListByAssociatedRecord(po-42) returned %d photos, want 2", len(got))
	}
	if got := s.ListByAssociatedRecord("po-00"); len(got) != 0 {
		t.Errorf("ListByAssociatedRecord(po-00) returned %d photos, want 0", len(got))
	}
}

func TestUpdateTagsAndRemoteURL(t *testing.T) {
	s := New(nil, zerolog.Nop())
	ctx := context.Background()

	if err := s.PutPhoto(ctx, testPhoto("p1", "")); err != nil {
		t.Fatal(err)
	}

	if !s.UpdateTags(ctx, "p1", []string{"damage", "evidence"}) {
		t.Error("UpdateTags() = false for existing photo")
	}
	if !s.UpdateRemoteURL(ctx, "p1", "https://store.example/p1.jpg") {
		t.Error("UpdateRemoteURL() = false for existing photo")
	}

	got, _ := s.GetPhoto("p1")
	if len(got.Tags) != 2 || got.Tags[0] != "damage" {
		t.Errorf("Tags = %v, want [damage evidence]", got.Tags)
	}
	if got.Metadata.RemoteURL != "https://store.example/p1.jpg" {
		t.Errorf("RemoteURL = %q", got.Metadata.RemoteURL)
	}

	if s.UpdateTags(ctx, "missing", nil) {
		t.Error("UpdateTags() = true for unknown photo")
	}
}

package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"photodoc/internal/config"
	"photodoc/internal/models"
)

// ObjectStoreUploader pushes compressed payloads into an S3-compatible
// bucket, metadata and tags attached as object user metadata.
type ObjectStoreUploader struct {
	client *minio.Client
	cfg    config.StorageConfig
	log    zerolog.Logger
}

func NewObjectStoreUploader(cfg config.StorageConfig, log zerolog.Logger) (*ObjectStoreUploader, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}

	return &ObjectStoreUploader{client: client, cfg: cfg, log: log}, nil
}

func (u *ObjectStoreUploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", u.cfg.Bucket, err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, u.cfg.Bucket, minio.MakeBucketOptions{Region: u.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", u.cfg.Bucket, err)
		}
	}
	return nil
}

func (u *ObjectStoreUploader) Upload(ctx context.Context, photo *models.CameraPhoto, onProgress ProgressFunc) (string, error) {
	if len(photo.CompressedBlob) == 0 {
		return "", &UploadError{Op: "prepare", Err: errors.New("no compressed payload")}
	}

	metadata, err := json.Marshal(photo.Metadata)
	if err != nil {
		return "", &UploadError{Op: "encode metadata", Err: err}
	}
	tags, err := json.Marshal(photo.Tags)
	if err != nil {
		return "", &UploadError{Op: "encode tags", Err: err}
	}

	objectKey := u.buildObjectKey(photo)
	size := int64(len(photo.CompressedBlob))
	reader := newProgressReader(bytes.NewReader(photo.CompressedBlob), size, onProgress)

	_, err = u.client.PutObject(ctx, u.cfg.Bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: "image/jpeg",
		UserMetadata: map[string]string{
			"Filename": photo.Filename,
			"Metadata": string(metadata),
			"Tags":     string(tags),
		},
	})
	if err != nil {
		return "", &UploadError{Op: "put object", Err: err}
	}
	reader.finish()

	remoteURL := u.buildPublicURL(objectKey)
	u.log.Info().Str("photo_id", photo.ID).Str("url", remoteURL).Msg("photo uploaded to object store")
	return remoteURL, nil
}

func (u *ObjectStoreUploader) buildObjectKey(photo *models.CameraPhoto) string {
	datePrefix := photo.Metadata.CapturedAt.UTC().Format("2006/01/02")
	if photo.Metadata.CapturedAt.IsZero() {
		datePrefix = time.Now().UTC().Format("2006/01/02")
	}
	return path.Join(datePrefix, fmt.Sprintf("%s.jpg", photo.ID))
}

func (u *ObjectStoreUploader) buildPublicURL(objectKey string) string {
	base := strings.TrimSuffix(u.cfg.Endpoint, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return fmt.Sprintf("%s/%s/%s", base, u.cfg.Bucket, objectKey)
}

package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"photodoc/internal/models"
)

// HTTPUploader posts the compressed payload to a remote endpoint as a
// multipart form with the fields file, metadata and tags.
type HTTPUploader struct {
	endpoint string
	client   *http.Client
	log      zerolog.Logger
}

func NewHTTPUploader(endpoint string, log zerolog.Logger) *HTTPUploader {
	return &HTTPUploader{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		log:      log,
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, photo *models.CameraPhoto, onProgress ProgressFunc) (string, error) {
	if len(photo.CompressedBlob) == 0 {
		return "", &UploadError{Op: "prepare", Err: errors.New("no compressed payload")}
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", photo.Filename)
	if err != nil {
		return "", &UploadError{Op: "build form", Err: err}
	}
	if _, err := part.Write(photo.CompressedBlob); err != nil {
		return "", &UploadError{Op: "build form", Err: err}
	}

	metadata, err := json.Marshal(photo.Metadata)
	if err != nil {
		return "", &UploadError{Op: "encode metadata", Err: err}
	}
	if err := writer.WriteField("metadata", string(metadata)); err != nil {
		return "", &UploadError{Op: "build form", Err: err}
	}

	tags, err := json.Marshal(photo.Tags)
	if err != nil {
		return "", &UploadError{Op: "encode tags", Err: err}
	}
	if err := writer.WriteField("tags", string(tags)); err != nil {
		return "", &UploadError{Op: "build form", Err: err}
	}

	if err := writer.Close(); err != nil {
		return "", &UploadError{Op: "build form", Err: err}
	}

	reader := newProgressReader(&body, int64(body.Len()), onProgress)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, reader)
	if err != nil {
		return "", &UploadError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", &UploadError{Op: "post", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UploadError{Op: "post", Err: fmt.Errorf("remote status %d", resp.StatusCode)}
	}
	reader.finish()

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.URL == "" {
		// Endpoints that do not echo a URL still count as success.
		result.URL = fmt.Sprintf("%s/%s", u.endpoint, photo.ID)
	}

	u.log.Info().Str("photo_id", photo.ID).Str("url", result.URL).Msg("photo uploaded via http")
	return result.URL, nil
}

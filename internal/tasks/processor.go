package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"photodoc/internal/store"
	"photodoc/internal/upload"
)

type TaskPayload struct {
	Type    string `json:"type"`
	PhotoID string `json:"photoId"`
}

// Processor executes queued upload tasks: load the photo, push the
// compressed payload, stamp the remote URL back onto the stored record.
type Processor struct {
	store    *store.Store
	uploader upload.Uploader
	logger   zerolog.Logger
}

func NewProcessor(st *store.Store, uploader upload.Uploader, logger zerolog.Logger) *Processor {
	return &Processor{store: st, uploader: uploader, logger: logger}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case "upload":
		return p.handleUpload(ctx, payload)
	default:
		p.logger.Warn().Str("type", payload.Type).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handleUpload(ctx context.Context, payload TaskPayload) error {
	photo, ok := p.store.PhotoForUpload(payload.PhotoID)
	if !ok {
		// Deleted before upload; nothing left to transfer.
		p.logger.Debug().Str("photo_id", payload.PhotoID).Msg("photo gone, dropping upload task")
		return nil
	}
	if photo.Metadata.RemoteURL != "" {
		return nil
	}
	if p.uploader == nil {
		return fmt.Errorf("no uploader configured")
	}

	url, err := p.uploader.Upload(ctx, &photo, nil)
	if err != nil {
		return fmt.Errorf("upload photo %s: %w", payload.PhotoID, err)
	}

	p.store.UpdateRemoteURL(ctx, payload.PhotoID, url)
	p.logger.Info().Str("photo_id", payload.PhotoID).Str("url", url).Msg("pending upload completed")
	return nil
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

package queue

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Producer enqueues pending-upload tasks so captured evidence survives until
// an uploader gets to it.
type Producer struct {
	client *redis.Client
	stream string
}

func NewProducer(client *redis.Client, stream string) *Producer {
	return &Producer{client: client, stream: stream}
}

func (p *Producer) EnqueueUpload(ctx context.Context, photoID string) error {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type":    "upload",
			"photoId": photoID,
		},
	}).Err()
}

package job

import (
	"context"
	"time"
)

// ImageWorker is the background half of the post image service.
type ImageWorker interface {
	ProcessImage(ctx context.Context, postID int64, key string) error
	DeleteObjects(ctx context.Context, keys []string) error
	SweepStale(ctx context.Context, staleAfter time.Duration, limit int) (int, error)
}

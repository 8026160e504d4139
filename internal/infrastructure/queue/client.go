package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/shared"
)

// TaskClient enqueues post image tasks for cmd/worker.
type TaskClient struct {
	client *asynq.Client
}

func NewTaskClient(client *asynq.Client) *TaskClient {
	return &TaskClient{client: client}
}

// EnqueueProcessImage schedules thumbnail generation for the post's current image.
func (c *TaskClient) EnqueueProcessImage(ctx context.Context, postID int64, key string) error {
	return c.enqueue(ctx, shared.TypeProcessPostImage,
		shared.ProcessPostImagePayload{PostID: postID, Key: key},
		asynq.Queue(shared.QueueImages),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	)
}

// EnqueueDeleteImages removes objects no post references anymore.
func (c *TaskClient) EnqueueDeleteImages(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.enqueue(ctx, shared.TypeDeletePostImage,
		shared.DeletePostImagePayload{Keys: keys},
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(5),
	)
}

func (c *TaskClient) enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}

	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(taskType, data), opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}

	log.Debug().
		Str("task_id", info.ID).
		Str("type", taskType).
		Str("queue", info.Queue).
		Msg("Task enqueued")
	return nil
}

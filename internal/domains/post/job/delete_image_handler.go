package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/shared"
)

// DeleteImageHandler removes image objects a post no longer references
type DeleteImageHandler struct {
	images ImageWorker
}

func NewDeleteImageHandler(images ImageWorker) *DeleteImageHandler {
	return &DeleteImageHandler{images: images}
}

func (h *DeleteImageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.DeletePostImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal DeletePostImage payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if len(payload.Keys) == 0 {
		return nil
	}

	if err := h.images.DeleteObjects(ctx, payload.Keys); err != nil {
		log.Error().Err(err).Strs("keys", payload.Keys).Msg("Failed to delete post images")
		return fmt.Errorf("delete images: %w", err)
	}
	return nil
}

package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/shared"
)

// ProcessImageHandler builds the thumbnail of an uploaded post image
type ProcessImageHandler struct {
	images ImageWorker
}

func NewProcessImageHandler(images ImageWorker) *ProcessImageHandler {
	return &ProcessImageHandler{images: images}
}

func (h *ProcessImageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ProcessPostImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ProcessPostImage payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Int64("post_id", payload.PostID).
		Str("key", payload.Key).
		Msg("Processing post image")

	if err := h.images.ProcessImage(ctx, payload.PostID, payload.Key); err != nil {
		log.Error().
			Err(err).
			Int64("post_id", payload.PostID).
			Msg("Failed to process post image")
		return fmt.Errorf("process image: %w", err)
	}
	return nil
}

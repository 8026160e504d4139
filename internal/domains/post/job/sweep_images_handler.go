package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/shared"
)

const (
	defaultStaleAfter = time.Hour
	defaultSweepLimit = 200
)

// SweepImagesHandler re-enqueues images stuck in processing
type SweepImagesHandler struct {
	images ImageWorker
}

func NewSweepImagesHandler(images ImageWorker) *SweepImagesHandler {
	return &SweepImagesHandler{images: images}
}

func (h *SweepImagesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.SweepPostImagesPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	staleAfter := time.Duration(payload.StaleAfterSeconds) * time.Second
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	limit := payload.Limit
	if limit <= 0 {
		limit = defaultSweepLimit
	}

	n, err := h.images.SweepStale(ctx, staleAfter, limit)
	if err != nil {
		return fmt.Errorf("sweep images: %w", err)
	}

	log.Info().
		Int("requeued", n).
		Dur("stale_after", staleAfter).
		Msg("Post image sweep finished")
	return nil
}

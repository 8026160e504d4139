package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/config"
	"yatube-backend/internal/shared"
)

// sweepBatchSize bounds how many stale images one sweep re-enqueues.
const sweepBatchSize = 200

type Scheduler struct {
	scheduler *asynq.Scheduler
	cfg       config.QueueConfig
}

func NewScheduler(redis asynq.RedisClientOpt, cfg config.QueueConfig) *Scheduler {
	scheduler := asynq.NewScheduler(redis, &asynq.SchedulerOpts{
		Location: time.UTC,
		LogLevel: asynq.InfoLevel,
	})

	return &Scheduler{scheduler: scheduler, cfg: cfg}
}

// RegisterJobs registers every periodic task.
func (s *Scheduler) RegisterJobs() error {
	return s.registerSweepPostImagesJob()
}

// registerSweepPostImagesJob retries thumbnails stuck in processing (crashed worker, lost task).
func (s *Scheduler) registerSweepPostImagesJob() error {
	payload, err := json.Marshal(shared.SweepPostImagesPayload{
		StaleAfterSeconds: int(s.cfg.ImageStaleWindow / time.Second),
		Limit:             sweepBatchSize,
	})
	if err != nil {
		return err
	}

	_, err = s.scheduler.Register(
		s.cfg.ImageSweepCron,
		asynq.NewTask(shared.TypeSweepPostImages, payload),
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("register %s: %w", shared.TypeSweepPostImages, err)
	}

	log.Info().
		Str("cron", s.cfg.ImageSweepCron).
		Msg("Registered post image sweep")
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}

package main

import (
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"yatube-backend/internal/config"
	"yatube-backend/internal/shared/utils"
	"yatube-backend/pkg/container"
)

// Config holds the worker process settings.
type Config struct {
	Redis      asynq.RedisClientOpt
	Queue      config.QueueConfig
	HealthAddr string
}

func loadConfig(c *container.Container) *Config {
	cfg := &Config{
		Redis:      container.RedisClientOpt(c.Config.Redis),
		Queue:      c.Config.Queue,
		HealthAddr: utils.GetEnvVariable("WORKER_HEALTH_ADDR", ":9999"),
	}

	log.Info().
		Str("redis", cfg.Redis.Addr).
		Int("concurrency", cfg.Queue.Concurrency).
		Str("sweep_cron", cfg.Queue.ImageSweepCron).
		Msg("Worker config loaded")

	return cfg
}

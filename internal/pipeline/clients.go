package pipeline

import (
	"time"

	"ladle/internal/config"
	"ladle/internal/services/audiocap"
	"ladle/internal/services/vision"
)

func retryOptionsVision(cfg *config.Config) []vision.Option {
	return []vision.Option{
		vision.WithRetryMaxAttempts(cfg.Workflow.RetryAttempts),
		vision.WithRetryBackoff(
			time.Duration(cfg.Workflow.RetryBaseSeconds)*time.Second,
			time.Duration(cfg.Workflow.RetryMaxSeconds)*time.Second,
		),
	}
}

func retryOptionsAudio(cfg *config.Config) []audiocap.Option {
	return []audiocap.Option{
		audiocap.WithRetryMaxAttempts(cfg.Workflow.RetryAttempts),
		audiocap.WithRetryBackoff(
			time.Duration(cfg.Workflow.RetryBaseSeconds)*time.Second,
			time.Duration(cfg.Workflow.RetryMaxSeconds)*time.Second,
		),
	}
}

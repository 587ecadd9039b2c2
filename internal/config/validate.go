package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownKnowledgeFields = map[string]struct{}{
	"procedure_description":            {},
	"step_description":                 {},
	"food_and_kitchenware_description": {},
	"environment_sound_description":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScenes(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateVision(); err != nil {
		return err
	}
	if err := c.validateKnowledge(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateScenes() error {
	if c.Scenes.Threshold <= 0 || c.Scenes.Threshold >= 1 {
		return errors.New("scenes.threshold must be between 0 and 1 exclusive")
	}
	switch strings.ToLower(strings.TrimSpace(c.Scenes.FrameFormat)) {
	case "jpg", "jpeg", "png":
		return nil
	default:
		return fmt.Errorf("scenes.frame_format: unsupported value %q", c.Scenes.FrameFormat)
	}
}

func (c *Config) validateAudio() error {
	if c.Audio.MinClipSeconds < 0 {
		return errors.New("audio.min_clip_seconds must not be negative")
	}
	if c.Audio.CaptionTimeout <= 0 {
		return errors.New("audio.caption_timeout must be positive")
	}
	return nil
}

func (c *Config) validateVision() error {
	if c.Vision.MaxTokens <= 0 {
		return errors.New("vision.max_tokens must be positive")
	}
	if c.Vision.TimeoutSeconds <= 0 {
		return errors.New("vision.timeout_seconds must be positive")
	}
	if c.Vision.Model == "" {
		return errors.New("vision.model must be set")
	}
	return nil
}

func (c *Config) validateKnowledge() error {
	for _, field := range c.Knowledge.Fields {
		if _, ok := knownKnowledgeFields[field]; !ok {
			return fmt.Errorf("knowledge.fields: unknown field %q", field)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.RetryAttempts < 1 {
		return errors.New("workflow.retry_attempts must be at least 1")
	}
	if c.Workflow.RetryBaseSeconds < 0 || c.Workflow.RetryMaxSeconds < 0 {
		return errors.New("workflow retry backoff values must not be negative")
	}
	if c.Workflow.RetryMaxSeconds > 0 && c.Workflow.RetryMaxSeconds < c.Workflow.RetryBaseSeconds {
		return errors.New("workflow.retry_max_seconds must not be below workflow.retry_base_seconds")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

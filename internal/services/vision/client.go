package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// Config captures the runtime settings required to talk to the vision model.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	TimeoutSeconds int
}

// Client issues image-description requests against an OpenAI-compatible API.
type Client struct {
	api *openai.Client
	cfg Config

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithAPI overrides the underlying OpenAI client (useful for tests).
func WithAPI(api *openai.Client) Option {
	return func(c *Client) {
		if api != nil {
			c.api = api
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retryMaxAttempts = attempts
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a vision client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	apiCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		apiCfg.BaseURL = base
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}

	client := &Client{
		api:              openai.NewClientWithConfig(apiCfg),
		cfg:              cfg,
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// DescribeImages sends the image set with the prompt and returns the model's
// single natural-language description for the whole set.
func (c *Client) DescribeImages(ctx context.Context, images [][]byte, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("vision describe: prompt required")
	}
	if len(images) == 0 {
		return "", errors.New("vision describe: at least one image required")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", errors.New("vision describe: api key required")
	}

	parts := make([]openai.ChatMessagePart, 0, len(images)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: prompt,
	})
	for _, image := range images {
		encoded := base64.StdEncoding.EncodeToString(image)
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: "data:image/png;base64," + encoded,
			},
		})
	}

	req := openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	}

	var lastErr error
	delay := c.retryBaseDelay
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				err = errors.New("vision describe: empty choices")
			} else {
				content := strings.TrimSpace(resp.Choices[0].Message.Content)
				if content == "" {
					err = fmt.Errorf("vision describe: empty content (finish_reason=%q)", resp.Choices[0].FinishReason)
				} else {
					return content, nil
				}
			}
		}
		lastErr = err
		if attempt == c.retryMaxAttempts || ctx.Err() != nil {
			break
		}
		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
		if next := delay * 2; next <= c.retryMaxDelay {
			delay = next
		}
	}
	return "", lastErr
}

// HealthCheck issues a minimal completion to verify the key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return errors.New("vision health: api key required")
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		MaxTokens: 5,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Reply with the single word: ok"},
		},
	})
	if err != nil {
		return fmt.Errorf("vision health: %w", err)
	}
	if len(resp.Choices) == 0 {
		return errors.New("vision health: empty choices")
	}
	return nil
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if c.sleeper != nil {
		c.sleeper(delay)
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

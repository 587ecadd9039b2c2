package audiocap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// EnvironmentSoundQuestion is the default question asked about each clip.
const EnvironmentSoundQuestion = "Describe the audio precisely. " +
	"You should focus on the non-speech part of the audio. " +
	"Go straight to the description without any introductory words such as: " +
	"'Audio caption:...', 'Audio description:...', etc."

const (
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// Config captures the runtime settings for the captioning service.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// Client talks to a Gradio-hosted audio captioning space.
type Client struct {
	http *resty.Client
	cfg  Config

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

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

// NewClient constructs an audio-caption client for the configured space.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")).
		SetTimeout(timeout)

	client := &Client{
		http:             httpClient,
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

// DescribeAudio uploads the clip and returns the model's answer to question.
func (c *Client) DescribeAudio(ctx context.Context, clipPath, question string) (string, error) {
	clipPath = strings.TrimSpace(clipPath)
	if clipPath == "" {
		return "", errors.New("audiocap describe: clip path required")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		question = EnvironmentSoundQuestion
	}

	var lastErr error
	delay := c.retryBaseDelay
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		description, err := c.describeOnce(ctx, clipPath, question)
		if err == nil {
			return description, nil
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

// HealthCheck verifies the space responds to its config endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/config")
	if err != nil {
		return fmt.Errorf("audiocap health: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("audiocap health: http %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) describeOnce(ctx context.Context, clipPath, question string) (string, error) {
	serverPath, err := c.upload(ctx, clipPath)
	if err != nil {
		return "", err
	}

	eventID, err := c.queuePredict(ctx, serverPath, question)
	if err != nil {
		return "", err
	}

	return c.awaitResult(ctx, eventID)
}

func (c *Client) upload(ctx context.Context, clipPath string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFile("files", clipPath).
		Post("/upload")
	if err != nil {
		return "", fmt.Errorf("audiocap upload: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("audiocap upload: http %d: %s", resp.StatusCode(), summarizeBody(resp.Body()))
	}
	var paths []string
	if err := json.Unmarshal(resp.Body(), &paths); err != nil {
		return "", fmt.Errorf("audiocap upload: parse response: %w", err)
	}
	if len(paths) == 0 || strings.TrimSpace(paths[0]) == "" {
		return "", errors.New("audiocap upload: empty server path")
	}
	return paths[0], nil
}

func (c *Client) queuePredict(ctx context.Context, serverPath, question string) (string, error) {
	payload := map[string]any{
		"data": []any{
			map[string]any{
				"path": serverPath,
				"orig_name": filepath.Base(serverPath),
				"meta": map[string]string{"_type": "gradio.FileData"},
			},
			question,
		},
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/call/predict")
	if err != nil {
		return "", fmt.Errorf("audiocap predict: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("audiocap predict: http %d: %s", resp.StatusCode(), summarizeBody(resp.Body()))
	}
	var queued struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(resp.Body(), &queued); err != nil {
		return "", fmt.Errorf("audiocap predict: parse response: %w", err)
	}
	if queued.EventID == "" {
		return "", errors.New("audiocap predict: missing event id")
	}
	return queued.EventID, nil
}

func (c *Client) awaitResult(ctx context.Context, eventID string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/call/predict/" + eventID)
	if err != nil {
		return "", fmt.Errorf("audiocap result: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("audiocap result: http %d: %s", resp.StatusCode(), summarizeBody(resp.Body()))
	}
	return parseEventStream(resp.Body())
}

// parseEventStream extracts the final data payload from a Gradio SSE response.
// The predict endpoint returns a pair (clip summary, answer); the answer is
// the second element.
func parseEventStream(body []byte) (string, error) {
	var lastData string
	failed := false
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "event:") {
			event := strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			failed = event == "error"
			continue
		}
		if strings.HasPrefix(line, "data:") {
			lastData = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	if failed {
		return "", fmt.Errorf("audiocap result: prediction failed: %s", summarizeBody([]byte(lastData)))
	}
	if lastData == "" || lastData == "null" {
		return "", errors.New("audiocap result: empty event stream")
	}
	var values []any
	if err := json.Unmarshal([]byte(lastData), &values); err != nil {
		return "", fmt.Errorf("audiocap result: parse data: %w", err)
	}
	if len(values) < 2 {
		return "", fmt.Errorf("audiocap result: expected 2 outputs, got %d", len(values))
	}
	answer, ok := values[1].(string)
	if !ok {
		return "", errors.New("audiocap result: answer is not text")
	}
	return strings.TrimSpace(answer), nil
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

func summarizeBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}

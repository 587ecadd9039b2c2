package vision_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ladle/internal/services/vision"
)

func newTestServer(t *testing.T, fail int32, content string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= fail {
			http.Error(w, "upstream unavailable", http.StatusInternalServerError)
			return
		}
		var payload struct {
			Messages []struct {
				Content []struct {
					Type string `json:"type"`
				} `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` + content + `"},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func newTestClient(server *httptest.Server, attempts int) *vision.Client {
	return vision.NewClient(vision.Config{
		APIKey:         "test-key",
		BaseURL:        server.URL + "/v1",
		Model:          "gpt-4o-mini",
		MaxTokens:      100,
		TimeoutSeconds: 5,
	},
		vision.WithRetryMaxAttempts(attempts),
		vision.WithSleeper(func(time.Duration) {}),
	)
}

func TestDescribeImagesReturnsContent(t *testing.T) {
	server, calls := newTestServer(t, 0, "The chef is searing a steak.")
	client := newTestClient(server, 1)

	got, err := client.DescribeImages(context.Background(), [][]byte{[]byte("img")}, vision.StepPrompt)
	if err != nil {
		t.Fatalf("DescribeImages: %v", err)
	}
	if got != "The chef is searing a steak." {
		t.Fatalf("unexpected description: %q", got)
	}
	if *calls != 1 {
		t.Fatalf("expected 1 call, got %d", *calls)
	}
}

func TestDescribeImagesRetriesOnFailure(t *testing.T) {
	server, calls := newTestServer(t, 2, "Diced onions in a metal bowl.")
	client := newTestClient(server, 3)

	got, err := client.DescribeImages(context.Background(), [][]byte{[]byte("img")}, vision.FoodKitchenwarePrompt)
	if err != nil {
		t.Fatalf("DescribeImages: %v", err)
	}
	if got != "Diced onions in a metal bowl." {
		t.Fatalf("unexpected description: %q", got)
	}
	if *calls != 3 {
		t.Fatalf("expected 3 calls, got %d", *calls)
	}
}

func TestDescribeImagesExhaustsRetries(t *testing.T) {
	server, calls := newTestServer(t, 99, "never")
	client := newTestClient(server, 2)

	if _, err := client.DescribeImages(context.Background(), [][]byte{[]byte("img")}, "prompt"); err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if *calls != 2 {
		t.Fatalf("expected 2 calls, got %d", *calls)
	}
}

func TestDescribeImagesValidatesInput(t *testing.T) {
	server, _ := newTestServer(t, 0, "unused")
	client := newTestClient(server, 1)

	if _, err := client.DescribeImages(context.Background(), nil, "prompt"); err == nil {
		t.Fatal("expected error for empty image set")
	}
	if _, err := client.DescribeImages(context.Background(), [][]byte{[]byte("img")}, "  "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestPromptsAvoidIntroductoryPhrasing(t *testing.T) {
	for _, prompt := range []string{vision.StepPrompt, vision.FoodKitchenwarePrompt} {
		if !strings.Contains(prompt, "cooking video") {
			t.Fatalf("prompt missing domain context: %q", prompt)
		}
	}
}

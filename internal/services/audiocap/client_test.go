package audiocap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeClip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo_clip_0_10.wav")
	if err := os.WriteFile(path, []byte("RIFF fake audio"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	return path
}

func newCaptionServer(t *testing.T, failUploads int) (*httptest.Server, *int) {
	t.Helper()
	uploads := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		uploads++
		if uploads <= failUploads {
			http.Error(w, "space waking up", http.StatusServiceUnavailable)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("files"); err != nil {
			t.Errorf("missing files part: %v", err)
		}
		_ = json.NewEncoder(w).Encode([]string{"/tmp/gradio/demo_clip_0_10.wav"})
	})
	mux.HandleFunc("/call/predict", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Data []any `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode predict payload: %v", err)
		}
		if len(payload.Data) != 2 {
			t.Errorf("predict data length = %d, want 2", len(payload.Data))
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"event_id": "ev-123"})
	})
	mux.HandleFunc("/call/predict/ev-123", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: complete\ndata: [\"clip summary\", \"Sizzling oil and a knife tapping a board.\"]\n\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &uploads
}

func TestDescribeAudioReturnsAnswer(t *testing.T) {
	srv, uploads := newCaptionServer(t, 0)
	client := NewClient(Config{BaseURL: srv.URL, TimeoutSeconds: 5})

	answer, err := client.DescribeAudio(context.Background(), writeClip(t), EnvironmentSoundQuestion)
	if err != nil {
		t.Fatalf("DescribeAudio: %v", err)
	}
	if answer != "Sizzling oil and a knife tapping a board." {
		t.Fatalf("answer = %q", answer)
	}
	if *uploads != 1 {
		t.Fatalf("uploads = %d, want 1", *uploads)
	}
}

func TestDescribeAudioRetriesTransientFailures(t *testing.T) {
	srv, uploads := newCaptionServer(t, 2)
	var slept []time.Duration
	client := NewClient(Config{BaseURL: srv.URL, TimeoutSeconds: 5},
		WithRetryMaxAttempts(3),
		WithRetryBackoff(time.Millisecond, 4*time.Millisecond),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }))

	answer, err := client.DescribeAudio(context.Background(), writeClip(t), "")
	if err != nil {
		t.Fatalf("DescribeAudio: %v", err)
	}
	if answer == "" {
		t.Fatal("expected answer after retries")
	}
	if *uploads != 3 {
		t.Fatalf("uploads = %d, want 3", *uploads)
	}
	if len(slept) != 2 {
		t.Fatalf("sleeps = %d, want 2", len(slept))
	}
}

func TestDescribeAudioExhaustsRetries(t *testing.T) {
	srv, _ := newCaptionServer(t, 10)
	client := NewClient(Config{BaseURL: srv.URL, TimeoutSeconds: 5},
		WithRetryMaxAttempts(2),
		WithSleeper(func(time.Duration) {}))

	if _, err := client.DescribeAudio(context.Background(), writeClip(t), ""); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
}

func TestDescribeAudioRejectsMissingPath(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1})
	if _, err := client.DescribeAudio(context.Background(), "  ", ""); err == nil {
		t.Fatal("expected error for empty clip path")
	}
}

func TestParseEventStream(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "complete",
			body: "event: complete\ndata: [\"summary\", \"whisk against metal bowl\"]\n",
			want: "whisk against metal bowl",
		},
		{
			name:    "error event",
			body:    "event: error\ndata: null\n",
			wantErr: true,
		},
		{
			name:    "single output",
			body:    "event: complete\ndata: [\"only one\"]\n",
			wantErr: true,
		},
		{
			name:    "empty stream",
			body:    "",
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseEventStream([]byte(tc.body))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEventStream: %v", err)
			}
			if got != tc.want {
				t.Fatalf("answer = %q, want %q", got, tc.want)
			}
		})
	}
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qdoctor/agent/internal/core"
)

func TestOpenAICompatible_Complete(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		want        string
		wantErr     error
		checkReq    func(t *testing.T, payload map[string]any)
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"choices":[{"message":{"content":"an answer"}}]}`,
			want:   "an answer",
		},
		{
			name:    "http_error_is_upstream",
			status:  http.StatusInternalServerError,
			body:    `{"error":"overload"}`,
			wantErr: core.ErrUpstream,
		},
		{
			name:    "empty_choices",
			status:  http.StatusOK,
			body:    `{"choices":[]}`,
			wantErr: core.ErrUpstream,
		},
		{
			name:    "garbage_body",
			status:  http.StatusOK,
			body:    `{{{`,
			wantErr: core.ErrUpstream,
		},
		{
			name:   "sends_system_and_user_messages",
			status: http.StatusOK,
			body:   `{"choices":[{"message":{"content":"ok"}}]}`,
			want:   "ok",
			checkReq: func(t *testing.T, payload map[string]any) {
				msgs, _ := payload["messages"].([]any)
				if len(msgs) != 2 {
					t.Fatalf("messages = %d, want 2", len(msgs))
				}
				first, _ := msgs[0].(map[string]any)
				if first["role"] != "system" {
					t.Errorf("first role = %v, want system", first["role"])
				}
				if payload["model"] != "test-model" {
					t.Errorf("model = %v, want test-model", payload["model"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/chat/completions" {
					t.Errorf("path = %s", r.URL.Path)
				}
				_ = json.NewDecoder(r.Body).Decode(&captured)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewOpenAICompatible(OpenAICompatibleConfig{
				BaseURL:    server.URL,
				APIKey:     "key",
				AuthHeader: "Authorization",
				AuthPrefix: "Bearer ",
			})

			got, err := client.Complete(context.Background(), core.CompletionRequest{
				Model:       "test-model",
				System:      "be helpful",
				User:        "hello",
				Temperature: 0.1,
				MaxTokens:   64,
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if tt.checkReq != nil {
				tt.checkReq(t, captured)
			}
		})
	}
}

func TestOpenAICompatible_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL: server.URL,
		Timeout: 20 * time.Millisecond,
	})

	_, err := client.Complete(context.Background(), core.CompletionRequest{Model: "m", User: "q"})
	if !errors.Is(err, core.ErrUpstreamTimeout) {
		t.Errorf("err = %v, want ErrUpstreamTimeout", err)
	}
}

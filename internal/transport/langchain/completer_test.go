package langchain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/kailas-cloud/convsearch/internal/domain"
	"github.com/kailas-cloud/convsearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

func TestCompleter_Complete(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content any    `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(body.Messages) == 1 {
			if s, ok := body.Messages[0].Content.(string); ok {
				prompt = s
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "qwen2.5:3b",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "Hiking Boots"},
			}},
			"usage": map[string]any{"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7},
		})
	}))
	defer server.Close()

	c, err := NewCompleter(&Config{
		APIKey:   "none",
		BaseURL:  server.URL,
		Model:    "qwen2.5:3b",
		Provider: "local",
	})
	if err != nil {
		t.Fatalf("NewCompleter: %v", err)
	}

	content, err := c.Complete(context.Background(), domain.CompletionRequest{Prompt: "boots please"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "Hiking Boots" {
		t.Errorf("content = %q", content)
	}
	if prompt != "" && prompt != "boots please" {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestCompleter_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer server.Close()

	c, err := NewCompleter(&Config{APIKey: "none", BaseURL: server.URL, Model: "m"})
	if err != nil {
		t.Fatalf("NewCompleter: %v", err)
	}

	if _, err := c.Complete(context.Background(), domain.CompletionRequest{Prompt: "p"}); err == nil {
		t.Fatal("expected error")
	}
}

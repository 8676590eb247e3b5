package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ArticleEnhancer/internal/config"
)

func TestChatGPTComplete(t *testing.T) {
	t.Parallel()

	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected auth header: %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"content\":\"ok\"}"}}]}`))
	}))
	defer server.Close()

	client := NewChatGPTClient(config.ChatGPTConfig{
		Endpoint: server.URL,
		Model:    "gpt-test",
		APIKey:   "key",
	}, server.Client())

	reply, err := client.Complete(context.Background(), "rewrite this")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if reply != `{"content":"ok"}` {
		t.Fatalf("unexpected reply: %s", reply)
	}
	if received["model"] != "gpt-test" {
		t.Fatalf("unexpected model in payload: %v", received["model"])
	}
	format, _ := received["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected json response format, got %v", received["response_format"])
	}
}

func TestChatGPTCompleteErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewChatGPTClient(config.ChatGPTConfig{Endpoint: server.URL, Model: "m", APIKey: "k"}, server.Client())
	if _, err := client.Complete(context.Background(), "p"); err == nil {
		t.Fatalf("expected error for 429")
	}

	unconfigured := NewChatGPTClient(config.ChatGPTConfig{}, nil)
	if _, err := unconfigured.Complete(context.Background(), "p"); err == nil {
		t.Fatalf("expected misconfiguration error")
	}
}

package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "gpt-4o" {
			t.Errorf("model = %s", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", req.Messages)
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "```yaml\n---\n```"}},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewOpenAIProviderWithClient("gpt-4o", "test-key", server.URL, server.Client())

	resp, err := p.Complete(context.Background(), CompletionRequest{System: "convert", Prompt: "do it"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "```yaml\n---\n```" {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestOpenAICompleteRequiresKey(t *testing.T) {
	p := NewOpenAIProvider("gpt-4o", "")
	if _, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x"}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestOpenAICompleteNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewOpenAIProviderWithClient("gpt-4o", "test-key", server.URL, server.Client())
	if _, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x"}); err == nil {
		t.Error("expected error on non-200 status")
	}
}

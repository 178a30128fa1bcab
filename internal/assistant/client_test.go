package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompleteSendsSystemPromptAndHistory(t *testing.T) {
	var captured completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "hi there"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient("sk-test", WithBaseURL(server.URL), WithModel("test-model"))
	history := []ChatMessage{
		{Role: RoleUser, Content: "earlier question"},
		{Role: RoleAssistant, Content: "earlier answer"},
	}
	reply, err := client.Complete(context.Background(), history, "new question")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply.Role != RoleAssistant || reply.Content != "hi there" {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	if captured.Model != "test-model" {
		t.Fatalf("expected model override, got %q", captured.Model)
	}
	// system prompt, two history turns, then the new user message.
	if len(captured.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != RoleSystem {
		t.Fatalf("expected leading system message, got %s", captured.Messages[0].Role)
	}
	if captured.Messages[1].Content != "earlier question" || captured.Messages[2].Content != "earlier answer" {
		t.Fatalf("history not preserved: %+v", captured.Messages)
	}
	last := captured.Messages[3]
	if last.Role != RoleUser || last.Content != "new question" {
		t.Fatalf("unexpected final message: %+v", last)
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Incorrect API key provided"},
		})
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL))
	_, err := client.Complete(context.Background(), nil, "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Incorrect API key provided") {
		t.Fatalf("expected API message surfaced, got %v", err)
	}
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := NewClient("sk-test", WithBaseURL(server.URL))
	_, err := client.Complete(context.Background(), nil, "hello")
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("expected no-choices error, got %v", err)
	}
}

func TestCompleteHonorsContextCancel(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The server only watches for client disconnect (which cancels
		// r.Context()) once the request body has been consumed.
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	client := NewClient("sk-test", WithBaseURL(server.URL))
	_, err := client.Complete(ctx, nil, "hello")
	if err == nil {
		t.Fatal("expected error after cancel")
	}
}

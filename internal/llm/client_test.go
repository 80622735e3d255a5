package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pdfchat/internal/domain"
)

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func chatOK(content string) ChatResponse {
	return ChatResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
		Choices: []ChatChoice{
			{Message: ChatChoiceMessage{Role: "assistant", Content: content}},
		},
	}
}

func TestChatWithMessages(t *testing.T) {
	var gotReq ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(chatOK("Paris is the capital of France."))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model", time.Second)
	answer, err := client.ChatWithMessages(context.Background(),
		[]Message{{Role: "user", Content: "What is the capital of France?"}},
		ChatParams{Temperature: 0.7, MaxTokens: 100},
	)
	if err != nil {
		t.Fatalf("ChatWithMessages() error: %v", err)
	}
	if answer != "Paris is the capital of France." {
		t.Errorf("answer = %q", answer)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("request model = %q, want test-model", gotReq.Model)
	}
	if gotReq.Temperature != 0.7 || gotReq.MaxTokens != 100 {
		t.Errorf("request params = (%v, %d)", gotReq.Temperature, gotReq.MaxTokens)
	}
}

func TestChatWithMessages_RetriesTransientFailures(t *testing.T) {
	// Two 503s followed by success must be absorbed by the retry policy.
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(chatOK("recovered"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model", time.Second)
	client.retry = fastRetry()

	answer, err := client.ChatWithMessages(context.Background(),
		[]Message{{Role: "user", Content: "hi"}}, ChatParams{})
	if err != nil {
		t.Fatalf("ChatWithMessages() error: %v", err)
	}
	if answer != "recovered" {
		t.Errorf("answer = %q, want recovered", answer)
	}
	if calls != 3 {
		t.Errorf("server called %d times, want 3", calls)
	}
}

func TestChatWithMessages_NoRetryOnClientError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model", time.Second)
	client.retry = fastRetry()

	_, err := client.ChatWithMessages(context.Background(),
		[]Message{{Role: "user", Content: "hi"}}, ChatParams{})
	if !errors.Is(err, domain.ErrGenerationService) {
		t.Errorf("error = %v, want ErrGenerationService", err)
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1 for a 400", calls)
	}
}

func TestChatWithMessages_QuotaExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model", time.Second)
	client.retry = fastRetry()

	_, err := client.ChatWithMessages(context.Background(),
		[]Message{{Role: "user", Content: "hi"}}, ChatParams{})
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Errorf("error = %v, want ErrQuotaExceeded", err)
	}
}

func TestChatWithMessages_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ChatResponse{ID: "empty"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model", time.Second)
	client.retry = fastRetry()

	_, err := client.ChatWithMessages(context.Background(),
		[]Message{{Role: "user", Content: "hi"}}, ChatParams{})
	if !errors.Is(err, domain.ErrGenerationService) {
		t.Errorf("error = %v, want ErrGenerationService", err)
	}
}

func TestHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model", time.Second)
	if err := client.Healthy(context.Background()); err != nil {
		t.Errorf("Healthy() error: %v", err)
	}
}

func TestHealthy_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", "model", time.Second)
	if err := client.Healthy(context.Background()); err == nil {
		t.Error("Healthy() expected error for 500 response")
	}
}

package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChatSuccess(t *testing.T) {
	var gotReq chatRequest
	var gotAuth, gotRequestID string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"role": "assistant", "content": "hello from upstream"}},
			},
		})
	}))
	defer ts.Close()

	c := New("test-key", ts.URL, 5*time.Second)
	answer, err := c.Chat(context.Background(), Query{
		Model:        "sonar",
		SystemPrompt: "be brief",
		UserContent:  "hi",
		MaxTokens:    100,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if answer != "hello from upstream" {
		t.Errorf("Unexpected answer: %q", answer)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected bearer auth, got %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("Expected X-Request-ID header to be set")
	}
	if gotReq.Model != "sonar" || gotReq.MaxTokens != 100 {
		t.Errorf("Unexpected request payload: %+v", gotReq)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("Expected [system, user] messages, got %+v", gotReq.Messages)
	}
}

func TestChatAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "quota exhausted", "type": "rate_limit"},
		})
	}))
	defer ts.Close()

	c := New("test-key", ts.URL, 5*time.Second)
	_, err := c.Chat(context.Background(), Query{Model: "sonar", UserContent: "hi"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", apiErr.Status)
	}
	if apiErr.Message != "quota exhausted" {
		t.Errorf("Expected upstream message, got %q", apiErr.Message)
	}
}

func TestChatAPIErrorPlainBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer ts.Close()

	c := New("test-key", ts.URL, 5*time.Second)
	_, err := c.Chat(context.Background(), Query{Model: "sonar", UserContent: "hi"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Message != "upstream unavailable" {
		t.Errorf("Expected raw body as message, got %q", apiErr.Message)
	}
}

func TestChatMalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer ts.Close()

	c := New("test-key", ts.URL, 5*time.Second)
	_, err := c.Chat(context.Background(), Query{Model: "sonar", UserContent: "hi"})
	if err == nil {
		t.Fatal("Expected error for empty choices")
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("Malformed 200 response must not be an APIError")
	}
}

func TestChatContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	c := New("test-key", ts.URL, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Chat(ctx, Query{Model: "sonar", UserContent: "hi"}); err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}

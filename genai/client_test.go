package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompleteSendsPromptAndReturnsText(t *testing.T) {
	var gotAuth string
	var gotReq completionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Try the dosa!  "}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "llama-3.1-8b-instant")
	out, err := c.Complete(context.Background(), "you are a canteen assistant", "what should I eat")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Try the dosa!" {
		t.Fatalf("Complete = %q; want trimmed assistant text", out)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "llama-3.1-8b-instant" || len(gotReq.Messages) != 2 {
		t.Fatalf("request = %+v", gotReq)
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Content != "what should I eat" {
		t.Fatalf("messages = %+v", gotReq.Messages)
	}
	if gotReq.MaxTokens != 150 {
		t.Fatalf("max_tokens = %d; want 150", gotReq.MaxTokens)
	}
}

func TestCompleteSurfacesServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "llama-3.1-8b-instant")
	_, err := c.Complete(context.Background(), "sys", "user")
	if err == nil || !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Fatalf("err = %v; want the upstream message", err)
	}
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m")
	if _, err := c.Complete(context.Background(), "sys", "user"); err == nil {
		t.Fatal("want error on empty choices")
	}
}

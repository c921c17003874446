package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forPelevin/hlshorts/internal/types"
)

func TestComplete(t *testing.T) {
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"video_summary\":[]}"}}]}`))
	}))
	defer srv.Close()

	a := New(Options{APIKey: "k", BaseURL: srv.URL + "/"})
	out, err := a.Complete(context.Background(), []types.Message{
		{Role: types.RoleSystem, Content: "sys"},
		{Role: types.RoleUser, Content: "transcript"},
		{Role: types.RoleAssistant, Content: "bad"},
		{Role: types.RoleUser, Content: "fix"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"video_summary":[]}` {
		t.Fatalf("unexpected reply %q", out)
	}
	if req.Model != "gpt-4o" || len(req.Messages) != 4 {
		t.Fatalf("unexpected request: %+v", req)
	}
	roles := []string{"system", "user", "assistant", "user"}
	for i, r := range roles {
		if req.Messages[i].Role != r {
			t.Fatalf("message %d role %q, want %q", i, req.Messages[i].Role, r)
		}
	}
	if req.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %q", req.ResponseFormat.Type)
	}
}

func TestComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	a := New(Options{APIKey: "k", BaseURL: srv.URL + "/"})
	if _, err := a.Complete(context.Background(), []types.Message{{Role: types.RoleUser, Content: "x"}}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestComplete_RejectsUnknownRole(t *testing.T) {
	a := New(Options{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	if _, err := a.Complete(context.Background(), []types.Message{{Role: "tool", Content: "x"}}); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dailyecho/dailyecho/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.GeminiConfig{
		APIKey:  "test-key",
		Model:   "test-model",
		BaseURL: srv.URL,
	})
}

func TestGenerate_Success(t *testing.T) {
	var gotPath, gotPrompt string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"P1\n"},{"text":"P2"}]}}]}`))
	})

	got, err := c.Generate(context.Background(), "write posts")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "P1\nP2" {
		t.Errorf("text = %q, want parts joined", got)
	}
	if gotPath != "/v1beta/models/test-model:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotPrompt != "write posts" {
		t.Errorf("prompt = %q", gotPrompt)
	}
}

func TestGenerate_HTTPError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":429,"message":"quota"}}`, http.StatusTooManyRequests)
	})

	_, err := c.Generate(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error on 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("err = %v, want status mentioned", err)
	}
}

func TestGenerate_EmptyResponse(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error on empty candidates")
	}
}

func TestGenerate_ServiceErrorBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad prompt"}}`))
	})

	_, err := c.Generate(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error from error body")
	}
	if !strings.Contains(err.Error(), "bad prompt") {
		t.Errorf("err = %v, want service message", err)
	}
}

func TestGenerate_NoAPIKey(t *testing.T) {
	c := NewClient(config.GeminiConfig{Model: "m"})
	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error without api key")
	}
}

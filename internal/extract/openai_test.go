package extract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/corpus-harvest/pkg/types"
)

const chatSuccessBody = `{"choices": [{"message": {"role": "assistant", "content": "  {\"title\": \"T\"}  "}}]}`

func TestOpenAIBackendComplete(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatSuccessBody))
	}))
	defer srv.Close()

	backend := NewOpenAIBackend(types.ModelConfig{
		BaseURL: srv.URL + "/",
		Model:   "test-model",
		APIKey:  "test-key",
	})

	content, err := backend.Complete(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != `{"title": "T"}` {
		t.Errorf("content = %q, want trimmed message content", content)
	}

	if gotPath != "/chat/completions" {
		t.Errorf("path = %q, want /chat/completions", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want bearer credential", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("model = %v, want test-model", gotBody["model"])
	}
	rf, ok := gotBody["response_format"].(map[string]any)
	if !ok || rf["type"] != "json_object" {
		t.Errorf("response_format = %v, want json_object", gotBody["response_format"])
	}
	if _, ok := gotBody["temperature"]; ok {
		t.Error("zero temperature should be omitted from the request")
	}
	msgs, ok := gotBody["messages"].([]any)
	if !ok || len(msgs) != 1 {
		t.Fatalf("messages = %v, want one user message", gotBody["messages"])
	}
	msg := msgs[0].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "the prompt" {
		t.Errorf("message = %v, want the user prompt", msg)
	}
}

func TestOpenAIBackendStatusKinds(t *testing.T) {
	tests := []struct {
		status int
		want   types.ErrorKind
	}{
		{http.StatusUnauthorized, types.KindAuth},
		{http.StatusForbidden, types.KindAuth},
		{http.StatusTooManyRequests, types.KindRateLimit},
		{http.StatusBadRequest, types.KindInvalidRequest},
		{http.StatusNotFound, types.KindInvalidRequest},
		{http.StatusUnprocessableEntity, types.KindInvalidRequest},
		{http.StatusRequestTimeout, types.KindTransientNetwork},
		{http.StatusInternalServerError, types.KindTransientNetwork},
		{http.StatusServiceUnavailable, types.KindTransientNetwork},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream complaint", tt.status)
			}))
			defer srv.Close()

			backend := NewOpenAIBackend(types.ModelConfig{BaseURL: srv.URL})
			_, err := backend.Complete(context.Background(), "p")
			if err == nil {
				t.Fatal("expected error")
			}
			var xerr *Error
			if !errors.As(err, &xerr) || xerr.Kind != tt.want {
				t.Errorf("error = %v, want kind %s", err, tt.want)
			}
			if !strings.Contains(err.Error(), "upstream complaint") {
				t.Errorf("error should carry the response body: %v", err)
			}
		})
	}
}

func TestOpenAIBackendMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	backend := NewOpenAIBackend(types.ModelConfig{BaseURL: srv.URL})
	_, err := backend.Complete(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error")
	}
	var xerr *Error
	if !errors.As(err, &xerr) || xerr.Kind != types.KindTransientNetwork {
		t.Errorf("error = %v, want kind %s", err, types.KindTransientNetwork)
	}
}

func TestOpenAIBackendNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	backend := NewOpenAIBackend(types.ModelConfig{BaseURL: srv.URL})
	_, err := backend.Complete(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "no choices") {
		t.Errorf("error = %v, want a no-choices complaint", err)
	}
}

func TestOpenAIBackendConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	backend := NewOpenAIBackend(types.ModelConfig{BaseURL: srv.URL})
	_, err := backend.Complete(context.Background(), "p")
	if err == nil {
		t.Fatal("expected error")
	}
	var xerr *Error
	if !errors.As(err, &xerr) || xerr.Kind != types.KindTransientNetwork {
		t.Errorf("error = %v, want kind %s", err, types.KindTransientNetwork)
	}
}

func TestNewOpenAIBackendDefaults(t *testing.T) {
	backend := NewOpenAIBackend(types.ModelConfig{})
	if backend.Name() != "gpt-4o" {
		t.Errorf("Name() = %q, want default model", backend.Name())
	}
	if backend.cfg.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("BaseURL = %q, want hosted default", backend.cfg.BaseURL)
	}
	if backend.client.Timeout != 60*time.Second {
		t.Errorf("client.Timeout = %v, want 60s default", backend.client.Timeout)
	}

	custom := NewOpenAIBackend(types.ModelConfig{Model: "llama3.2", Timeout: 5 * time.Second})
	if custom.Name() != "llama3.2" {
		t.Errorf("Name() = %q, want configured model", custom.Name())
	}
	if custom.client.Timeout != 5*time.Second {
		t.Errorf("client.Timeout = %v, want configured timeout", custom.client.Timeout)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/corpus-harvest/internal/httputil"
	"github.com/pdiddy/corpus-harvest/pkg/types"
)

// OpenAIBackend drives an OpenAI-dialect chat/completions endpoint in
// JSON-object mode. Hosted and self-hosted servers differ only in BaseURL
// and APIKey, so a local llama server works unchanged. Per
// prd003-metadata-extraction R5.1.
type OpenAIBackend struct {
	cfg    types.ModelConfig
	client *http.Client
}

// NewOpenAIBackend returns a backend with config defaults applied.
func NewOpenAIBackend(cfg types.ModelConfig) *OpenAIBackend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	return &OpenAIBackend{cfg: cfg, client: httputil.NewClient(cfg.Timeout)}
}

// Name identifies the backend in logs and status output.
func (b *OpenAIBackend) Name() string { return b.cfg.Model }

// chatRequest is the request body for the chat/completions endpoint.
type chatRequest struct {
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
	Messages       []chatMessage  `json:"messages"`
}

// responseFormat constrains the model to emit a single JSON object.
type responseFormat struct {
	Type string `json:"type"`
}

// chatMessage is a single message in the chat conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response body from the chat/completions endpoint.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// chatChoice is one completion candidate in the response.
type chatChoice struct {
	Message chatMessage `json:"message"`
}

// Complete sends one prompt and returns the first choice's message content.
// Transport failures and non-200 statuses come back as *Error with the
// kind mapped per prd004-results R2.2; timeouts count as transient.
func (b *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:          b.cfg.Model,
		Temperature:    b.cfg.Temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := strings.TrimRight(b.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", &Error{
			Kind: types.KindTransientNetwork,
			Err:  fmt.Errorf("calling model endpoint: %w", err),
		}
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return "", &Error{
			Kind: types.KindTransientNetwork,
			Err:  fmt.Errorf("reading model response: %w", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Kind: httputil.StatusKind(resp.StatusCode),
			Err:  fmt.Errorf("model endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var cResp chatResponse
	if err := json.Unmarshal(body, &cResp); err != nil {
		return "", &Error{
			Kind: types.KindTransientNetwork,
			Err:  fmt.Errorf("decoding model response: %w", err),
		}
	}
	if len(cResp.Choices) == 0 {
		return "", &Error{
			Kind: types.KindTransientNetwork,
			Err:  errors.New("no choices in model response"),
		}
	}
	return strings.TrimSpace(cResp.Choices[0].Message.Content), nil
}

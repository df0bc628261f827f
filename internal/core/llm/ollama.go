package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/markdave123-py/LoanAdvisor/internal/core"
)

// ErrNoResponse is returned when the inference server replies without a
// response field.
var ErrNoResponse = errors.New("no response key in inference output")

// OllamaClient calls the /api/generate endpoint of a local Ollama server.
type OllamaClient struct {
	Endpoint   string
	Model      string
	HTTPClient *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response *string `json:"response"`
	Error    string  `json:"error,omitempty"`
}

// NewOllamaClient builds a client. A zero timeout leaves the request
// bounded only by the caller's context.
func NewOllamaClient(endpoint, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		Endpoint:   endpoint,
		Model:      model,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Generate sends one non-streaming generate request.
func (c *OllamaClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	data, err := json.Marshal(ollamaRequest{
		Model:  c.Model,
		Prompt: userPrompt,
		System: systemPrompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if msg := strings.TrimSpace(string(body)); msg != "" {
			return "", fmt.Errorf("inference server returned status: %s: %s", resp.Status, msg)
		}
		return "", fmt.Errorf("inference server returned status: %s", resp.Status)
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode inference response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("inference server error: %s", out.Error)
	}
	if out.Response == nil {
		return "", ErrNoResponse
	}
	return *out.Response, nil
}

var _ core.LLMProvider = (*OllamaClient)(nil)

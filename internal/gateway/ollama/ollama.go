package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vbonduro/neuropost/internal/gateway"
)

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  *gateway.Schema `json:"format,omitempty"`
	Options options         `json:"options"`
}

type options struct {
	Temperature float32 `json:"temperature"`
}

// Client is a text-only backend for a local Ollama server. Ollama enforces the
// schema through structured outputs (the "format" field).
type Client struct {
	host   string
	model  string
	client *http.Client
}

func NewClient(host, model string) *Client {
	return &Client{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{},
	}
}

func (c *Client) GenerateJSON(ctx context.Context, req gateway.JSONRequest) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  req.Prompt,
		Stream:  false,
		Format:  req.Schema,
		Options: options{Temperature: req.Temperature},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ollama response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, errBody)
	}

	var respBody struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	text := strings.TrimSpace(respBody.Response)
	if text == "" {
		return "", gateway.ErrEmptyResult
	}
	return text, nil
}

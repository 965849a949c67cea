package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/neuropost/internal/gateway"
)

// maxTokens leaves room for a four-paragraph Arabic post plus a long English
// image prompt.
const maxTokens = 4096

// Client is a text-only gateway backend. The Messages API has no native
// response schema, so the schema is carried in the system prompt and the
// gateway's own validation does the enforcing.
type Client struct {
	client *anthropic.Client
	model  string
}

func NewClient(apiKey, model string, opts ...anthropic.ClientOption) *Client {
	return &Client{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (c *Client) GenerateJSON(ctx context.Context, req gateway.JSONRequest) (string, error) {
	system, err := systemPrompt(req.Schema)
	if err != nil {
		return "", err
	}

	temperature := req.Temperature
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      system,
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(req.Prompt)},
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	for _, content := range resp.Content {
		if content.Type == anthropic.MessagesContentTypeText {
			if text := strings.TrimSpace(content.GetText()); text != "" {
				return text, nil
			}
		}
	}
	return "", gateway.ErrEmptyResult
}

func systemPrompt(schema *gateway.Schema) (string, error) {
	if schema == nil {
		return "Respond with a single JSON object and nothing else.", nil
	}
	encoded, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode schema: %w", err)
	}
	return "Respond with a single JSON object and nothing else: no markdown, no commentary. " +
		"The object must conform to this JSON schema:\n" + string(encoded), nil
}

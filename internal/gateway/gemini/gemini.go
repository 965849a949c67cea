package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/vbonduro/neuropost/internal/domain"
	"github.com/vbonduro/neuropost/internal/gateway"
)

// modelsAPI is the subset of *genai.Models the client uses.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Client serves both the text and the image side of the gateway from the
// Gemini API.
type Client struct {
	models     modelsAPI
	textModel  string
	imageModel string
}

func NewClient(ctx context.Context, apiKey, textModel, imageModel string) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{
		models:     c.Models,
		textModel:  textModel,
		imageModel: imageModel,
	}, nil
}

func (c *Client) GenerateJSON(ctx context.Context, req gateway.JSONRequest) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.textModel, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenaiSchema(req.Schema),
		Temperature:      genai.Ptr(req.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("failed to call gemini: %w", err)
	}
	if resp == nil {
		return "", gateway.ErrEmptyResult
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", gateway.ErrEmptyResult
	}
	return text, nil
}

func (c *Client) GenerateImage(ctx context.Context, req gateway.ImageRequest) (*domain.GeneratedImage, error) {
	resp, err := c.models.GenerateImages(ctx, c.imageModel, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: req.MIMEType,
		AspectRatio:    req.AspectRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call imagen: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0] == nil {
		return nil, gateway.ErrEmptyResult
	}

	generated := resp.GeneratedImages[0]
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated.RAIFilteredReason != "" {
			return nil, fmt.Errorf("%w: filtered: %s", gateway.ErrEmptyResult, generated.RAIFilteredReason)
		}
		return nil, gateway.ErrEmptyResult
	}

	mimeType := generated.Image.MIMEType
	if mimeType == "" {
		mimeType = req.MIMEType
	}
	return &domain.GeneratedImage{
		Data:     generated.Image.ImageBytes,
		MIMEType: mimeType,
		Prompt:   req.Prompt,
	}, nil
}

// toGenaiSchema converts the gateway schema into the Gemini response schema.
func toGenaiSchema(s *gateway.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func toGenaiType(t string) genai.Type {
	switch t {
	case gateway.TypeObject:
		return genai.TypeObject
	case gateway.TypeArray:
		return genai.TypeArray
	default:
		return genai.TypeString
	}
}

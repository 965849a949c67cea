package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/neuropost/internal/domain"
	"github.com/vbonduro/neuropost/internal/prompt"
)

var (
	// ErrEmptyResult is returned when the model answered but produced nothing usable.
	ErrEmptyResult = errors.New("empty result from model")
	// ErrMalformedResponse is returned when a response does not match the
	// declared schema.
	ErrMalformedResponse = errors.New("malformed model response")
)

// JSONRequest asks a text model for a JSON document conforming to Schema.
type JSONRequest struct {
	Prompt      string
	Schema      *Schema
	Temperature float32
}

// TextModel produces JSON documents. Implementations should ask the remote
// service to enforce the schema where it can; the gateway validates the
// result regardless.
type TextModel interface {
	GenerateJSON(ctx context.Context, req JSONRequest) (string, error)
}

type ImageRequest struct {
	Prompt      string
	MIMEType    string
	AspectRatio string
}

type ImageModel interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*domain.GeneratedImage, error)
}

const (
	topicsTemperature  = 0.8
	contentTemperature = 0.95
)

// Gateway implements the three generation capabilities on top of a text and
// an image model.
type Gateway struct {
	text    TextModel
	image   ImageModel
	prompts *prompt.Builder
	logger  *slog.Logger
}

func New(text TextModel, image ImageModel, prompts *prompt.Builder, logger *slog.Logger) *Gateway {
	return &Gateway{
		text:    text,
		image:   image,
		prompts: prompts,
		logger:  logger,
	}
}

// SuggestTopics returns the next batch of topic suggestions in display order.
func (g *Gateway) SuggestTopics(ctx context.Context) ([]string, error) {
	p, err := g.prompts.Topics()
	if err != nil {
		return nil, err
	}

	raw, err := g.text.GenerateJSON(ctx, JSONRequest{
		Prompt:      p,
		Schema:      TopicsSchema,
		Temperature: topicsTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to suggest topics: %w", err)
	}

	topics, err := ParseTopics(raw)
	if err != nil {
		g.logger.Debug("rejected topics response", "raw", raw, "error", err)
		return nil, err
	}
	g.logger.Info("topics suggested", "count", len(topics))
	return topics, nil
}

// GenerateContent returns the post and image prompt for topic.
func (g *Gateway) GenerateContent(ctx context.Context, topic string) (*domain.GeneratedContent, error) {
	p, err := g.prompts.Content(topic)
	if err != nil {
		return nil, err
	}

	raw, err := g.text.GenerateJSON(ctx, JSONRequest{
		Prompt:      p,
		Schema:      ContentSchema,
		Temperature: contentTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	content, err := ParseContent(raw)
	if err != nil {
		g.logger.Debug("rejected content response", "raw", raw, "error", err)
		return nil, err
	}
	g.logger.Info("content generated", "topic", topic, "hashtags", len(content.Post.Hashtags))
	return content, nil
}

// GenerateImage returns one square JPEG for prompt.
func (g *Gateway) GenerateImage(ctx context.Context, imagePrompt string) (*domain.GeneratedImage, error) {
	if imagePrompt == "" {
		return nil, fmt.Errorf("image prompt is required")
	}

	img, err := g.image.GenerateImage(ctx, ImageRequest{
		Prompt:      imagePrompt,
		MIMEType:    "image/jpeg",
		AspectRatio: "1:1",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}
	if img == nil || len(img.Data) == 0 {
		return nil, ErrEmptyResult
	}

	mimeType, ok := DetectImageMIME(img.Data)
	if !ok {
		return nil, fmt.Errorf("%w: image data is not a supported format", ErrMalformedResponse)
	}
	g.logger.Info("image generated", "mime_type", mimeType, "bytes", len(img.Data))

	return &domain.GeneratedImage{Data: img.Data, MIMEType: mimeType, Prompt: imagePrompt}, nil
}

package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vbonduro/neuropost/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type topicsPayload struct {
	Topics []string `json:"topics"`
}

type contentPayload struct {
	Post  *postPayload  `json:"post" validate:"required"`
	Image *imagePayload `json:"image" validate:"required"`
}

type postPayload struct {
	Title    string   `json:"title" validate:"required"`
	Caption  string   `json:"caption" validate:"required"`
	Hashtags []string `json:"hashtags" validate:"required"`
}

type imagePayload struct {
	ImagePrompt string `json:"image_prompt" validate:"required"`
}

// ParseTopics decodes a {"topics": [...]} document. Blank topics are dropped;
// a document with no usable topics yields ErrEmptyResult.
func ParseTopics(raw string) ([]string, error) {
	var payload topicsPayload
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	topics := make([]string, 0, len(payload.Topics))
	for _, t := range payload.Topics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		return nil, ErrEmptyResult
	}
	return topics, nil
}

// ParseContent decodes and validates a {"post": ..., "image": ...} document.
func ParseContent(raw string) (*domain.GeneratedContent, error) {
	var payload contentPayload
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if payload.Post != nil {
		payload.Post.Title = strings.TrimSpace(payload.Post.Title)
		payload.Post.Caption = strings.TrimSpace(payload.Post.Caption)
	}
	if payload.Image != nil {
		payload.Image.ImagePrompt = strings.TrimSpace(payload.Image.ImagePrompt)
	}
	if err := validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	hashtags := make([]string, 0, len(payload.Post.Hashtags))
	for _, h := range payload.Post.Hashtags {
		if h = strings.TrimSpace(h); h != "" {
			hashtags = append(hashtags, h)
		}
	}

	return &domain.GeneratedContent{
		Post: domain.Post{
			Title:    payload.Post.Title,
			Caption:  payload.Post.Caption,
			Hashtags: hashtags,
		},
		Image: domain.ImagePrompt{ImagePrompt: payload.Image.ImagePrompt},
	}, nil
}

// extractJSON strips markdown code fences and any prose around the outermost
// JSON object. Models without native schema support often add both.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return strings.TrimSpace(s)
}

// DetectImageMIME sniffs image bytes returned by the image model. Only the
// output formats Imagen can be asked for (JPEG and PNG) are accepted; anything
// else, such as an error document delivered as the payload, is rejected.
func DetectImageMIME(data []byte) (string, bool) {
	switch mime := http.DetectContentType(data); mime {
	case "image/jpeg", "image/png":
		return mime, true
	default:
		return "", false
	}
}

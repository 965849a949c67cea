package domain

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// Post is the Arabic social-media post produced for one topic.
type Post struct {
	Title    string
	Caption  string
	Hashtags []string
}

// Paragraphs splits the caption on blank lines, dropping empty paragraphs.
func (p Post) Paragraphs() []string {
	parts := strings.Split(strings.ReplaceAll(p.Caption, "\r\n", "\n"), "\n\n")
	paragraphs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			paragraphs = append(paragraphs, part)
		}
	}
	return paragraphs
}

type ImagePrompt struct {
	ImagePrompt string
}

// GeneratedContent is the unit returned by one content generation call. Post
// and Image are always populated together.
type GeneratedContent struct {
	Post  Post
	Image ImagePrompt
}

type GeneratedImage struct {
	Data     []byte
	MIMEType string
	Prompt   string
}

// DataURI renders the image as an inline data: URI.
func (g *GeneratedImage) DataURI() string {
	return "data:" + g.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(g.Data)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// DownloadName builds the attachment filename for an image generated for a
// post with the given title.
func DownloadName(title, mimeType string) string {
	ext := ".jpg"
	if mimeType == "image/png" {
		ext = ".png"
	}

	name := whitespaceRun.ReplaceAllString(strings.TrimSpace(title), "_")
	if name == "" {
		name = "generated_image"
	}
	return name + ext
}

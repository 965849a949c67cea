package web_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/neuropost/internal/domain"
	"github.com/vbonduro/neuropost/internal/flow"
	"github.com/vbonduro/neuropost/internal/gateway"
	"github.com/vbonduro/neuropost/internal/prompt"
	"github.com/vbonduro/neuropost/internal/session"
	"github.com/vbonduro/neuropost/internal/web"
	"github.com/vbonduro/neuropost/internal/web/templates"
)

// minimalJPEG carries the JPEG magic bytes followed by zeros.
var minimalJPEG = func() []byte {
	b := make([]byte, 512)
	b[0] = 0xFF
	b[1] = 0xD8
	b[2] = 0xFF
	b[3] = 0xE0
	return b
}()

const contentJSON = `{
  "post": {
    "title": "الدوخة المفاجئة",
    "caption": "فقرة أولى\n\nفقرة ثانية",
    "hashtags": ["#د_هيام", "#صحة_المخ", "#دوخة"]
  },
  "image": {"image_prompt": "An Egyptian woman in hijab standing up slowly, mint green accents"}
}`

// scriptedText answers GenerateJSON by schema: topics or content. Topic calls
// fail while failTopics is set.
type scriptedText struct {
	mu         sync.Mutex
	failTopics bool
	prompts    []string
}

func (s *scriptedText) GenerateJSON(_ context.Context, req gateway.JSONRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, req.Prompt)

	if req.Schema == gateway.TopicsSchema {
		if s.failTopics {
			return "", errors.New("dial tcp: connection refused")
		}
		return `{"topics": ["T1", "T2", "T3", "T4"]}`, nil
	}
	return "```json\n" + contentJSON + "\n```", nil
}

func (s *scriptedText) setFailTopics(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failTopics = v
}

type fixedImage struct{}

func (fixedImage) GenerateImage(_ context.Context, req gateway.ImageRequest) (*domain.GeneratedImage, error) {
	return &domain.GeneratedImage{Data: minimalJPEG, MIMEType: req.MIMEType, Prompt: req.Prompt}, nil
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestServer(t *testing.T, text gateway.TextModel) *client {
	t.Helper()
	profile := prompt.DefaultProfile()
	gw := gateway.New(text, fixedImage{}, prompt.NewBuilder(profile), slog.Default())

	sessions := session.New(func() *flow.Flow {
		return flow.New(gw, slog.Default(), flow.WithTimeout(5*time.Second))
	}, time.Hour, slog.Default())

	srv, err := web.NewServer(sessions, templates.FS, profile.ClinicName, slog.Default())
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: ts.URL, http: &http.Client{Jar: jar}}
}

func (c *client) get(path string) (int, string) {
	c.t.Helper()
	resp, err := c.http.Get(c.base + path)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, string(body)
}

func (c *client) post(path string, form url.Values) (int, string) {
	c.t.Helper()
	resp, err := c.http.PostForm(c.base+path, form)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, string(body)
}

// settle polls /view until the fragment stops polling and returns it.
func (c *client) settle() string {
	c.t.Helper()
	var body string
	require.Eventually(c.t, func() bool {
		_, body = c.get("/view")
		return !strings.Contains(body, `hx-trigger="every 1s"`)
	}, 2*time.Second, 10*time.Millisecond)
	return body
}

func TestIntegration_FullCycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	text := &scriptedText{}
	c := newTestServer(t, text)

	status, _ := c.get("/")
	require.Equal(t, http.StatusOK, status)

	body := c.settle()
	assert.Contains(t, body, "اختر موضوعًا للبدء")
	for _, topic := range []string{"T1", "T2", "T3", "T4"} {
		assert.Contains(t, body, topic)
	}

	status, _ = c.post("/topics/select", url.Values{"topic": {"T2"}})
	require.Equal(t, http.StatusOK, status)

	body = c.settle()
	assert.Contains(t, body, "الدوخة المفاجئة")
	assert.Contains(t, body, "<p>فقرة أولى</p>")
	assert.Contains(t, body, "<p>فقرة ثانية</p>")
	assert.Contains(t, body, "#دوخة")
	assert.Contains(t, body, "Image Preview")

	text.mu.Lock()
	assert.Contains(t, text.prompts[len(text.prompts)-1], "T2")
	text.mu.Unlock()

	status, _ = c.post("/image", nil)
	require.Equal(t, http.StatusOK, status)
	body = c.settle()
	assert.Contains(t, body, "Download Image")

	resp, err := c.http.Get(c.base + "/image")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, minimalJPEG, data)

	status, _ = c.post("/start-over", nil)
	require.Equal(t, http.StatusOK, status)
	body = c.settle()
	assert.Contains(t, body, "اختر موضوعًا للبدء")
	assert.NotContains(t, body, "الدوخة المفاجئة")

	status, _ = c.get("/image")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIntegration_TopicFailureRetry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	text := &scriptedText{failTopics: true}
	c := newTestServer(t, text)

	c.get("/")
	body := c.settle()
	assert.Contains(t, body, "Failed to generate topic suggestions. Please try again.")
	assert.Contains(t, body, "حاول مرة أخرى")

	text.setFailTopics(false)
	status, _ := c.post("/topics/refresh", nil)
	require.Equal(t, http.StatusOK, status)

	body = c.settle()
	assert.NotContains(t, body, "Failed to generate topic suggestions")
	assert.Contains(t, body, "T4")
}

func TestIntegration_SessionsAreIndependent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	text := &scriptedText{}
	a := newTestServer(t, text)
	b := &client{t: t, base: a.base, http: &http.Client{Jar: mustJar(t)}}

	a.get("/")
	b.get("/")
	a.settle()
	b.settle()

	status, _ := a.post("/topics/select", url.Values{"topic": {"T1"}})
	require.Equal(t, http.StatusOK, status)
	a.settle()

	body := b.settle()
	assert.Contains(t, body, "اختر موضوعًا للبدء")
}

func mustJar(t *testing.T) http.CookieJar {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return jar
}

package flow

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/vbonduro/neuropost/internal/domain"
	"github.com/vbonduro/neuropost/internal/gateway"
)

type Screen string

const (
	TopicSelection Screen = "topicSelection"
	ContentDisplay Screen = "contentDisplay"
)

// Scope identifies the state slot a gateway response is written to.
type Scope string

const (
	ScopeTopics  Scope = "topics"
	ScopeContent Scope = "content"
	ScopeImage   Scope = "image"
)

// User-facing messages stored in the error slots.
const (
	MsgTopicsFailed  = "Failed to generate topic suggestions. Please try again."
	MsgContentParse  = "Failed to parse the response from the AI. The format might be incorrect."
	MsgContentFailed = "Failed to generate content. Please check your connection and API key."
	MsgImageFailed   = "Failed to generate image. Please try again."
)

var (
	ErrInvalidTransition = errors.New("invalid transition for current screen")
	ErrUnknownTopic      = errors.New("topic is not one of the current suggestions")
)

// Gateway is the set of generation capabilities the flow drives.
type Gateway interface {
	SuggestTopics(ctx context.Context) ([]string, error)
	GenerateContent(ctx context.Context, topic string) (*domain.GeneratedContent, error)
	GenerateImage(ctx context.Context, prompt string) (*domain.GeneratedImage, error)
}

// View is everything needed to render the current screen.
type View struct {
	Screen Screen

	Topics        []string
	TopicsLoading bool
	TopicsErr     string

	Topic          string
	Content        *domain.GeneratedContent
	ContentLoading bool
	ContentErr     string

	Image        *domain.GeneratedImage
	ImageLoading bool
	ImageErr     string
}

// Pending reports whether any gateway request is in flight.
func (v View) Pending() bool {
	return v.TopicsLoading || v.ContentLoading || v.ImageLoading
}

// ImagePrompt returns the prompt attached to the displayed content, if any.
func (v View) ImagePrompt() string {
	if v.Content == nil {
		return ""
	}
	return v.Content.Image.ImagePrompt
}

// token tags an in-flight request. A response is applied only while its
// token's epoch is still the current epoch for the scope.
type token struct {
	scope Scope
	epoch uint64
}

// Flow is the view state machine for one browser session.
type Flow struct {
	gateway Gateway
	logger  *slog.Logger
	baseCtx context.Context
	timeout time.Duration

	mu      sync.Mutex
	mounted bool
	view    View
	epochs  map[Scope]uint64

	inflight sync.WaitGroup
}

type Option func(*Flow)

// WithContext bounds every gateway call by ctx, normally the server lifetime.
func WithContext(ctx context.Context) Option {
	return func(f *Flow) { f.baseCtx = ctx }
}

// WithTimeout limits each gateway call. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(f *Flow) { f.timeout = d }
}

func New(gw Gateway, logger *slog.Logger, opts ...Option) *Flow {
	f := &Flow{
		gateway: gw,
		logger:  logger,
		baseCtx: context.Background(),
		view:    View{Screen: TopicSelection},
		epochs:  make(map[Scope]uint64),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Mount enters TopicSelection and fetches suggestions. Only the first call
// has any effect.
func (f *Flow) Mount() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mounted {
		return
	}
	f.mounted = true
	f.view.Screen = TopicSelection
	f.fetchTopicsLocked()
}

// RefreshTopics re-issues the suggestion call. Topics already shown stay in
// place until the new batch arrives.
func (f *Flow) RefreshTopics() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.view.Screen != TopicSelection {
		return ErrInvalidTransition
	}
	f.fetchTopicsLocked()
	return nil
}

// SelectTopic moves to ContentDisplay and generates content for topic, which
// must be one of the displayed suggestions.
func (f *Flow) SelectTopic(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.view.Screen != TopicSelection {
		return ErrInvalidTransition
	}
	if topic == "" || !slices.Contains(f.view.Topics, topic) {
		return ErrUnknownTopic
	}

	f.invalidateLocked(ScopeTopics, ScopeImage)
	f.view = View{
		Screen:         ContentDisplay,
		Topic:          topic,
		ContentLoading: true,
	}

	t := f.issueLocked(ScopeContent)
	f.logger.Info("topic selected", "topic", topic)
	f.launch(t, func(ctx context.Context) func(*View) {
		content, err := f.gateway.GenerateContent(ctx, topic)
		if err != nil {
			f.logger.Error("content generation failed", "topic", topic, "error", err)
			msg := MsgContentFailed
			if errors.Is(err, gateway.ErrMalformedResponse) {
				msg = MsgContentParse
			}
			return func(v *View) {
				v.ContentLoading = false
				v.ContentErr = msg
			}
		}
		return func(v *View) {
			v.ContentLoading = false
			v.Content = content
		}
	})
	return nil
}

// StartOver discards the post, image, errors and cached topics and returns to
// TopicSelection with a fresh suggestion fetch.
func (f *Flow) StartOver() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.view.Screen != ContentDisplay {
		return ErrInvalidTransition
	}

	f.invalidateLocked(ScopeContent, ScopeImage)
	f.view = View{Screen: TopicSelection}
	f.fetchTopicsLocked()
	return nil
}

// GenerateImage requests an image for the displayed content's prompt. It
// reports false without touching any state when there is no prompt or an
// image request is already in flight.
func (f *Flow) GenerateImage() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	prompt := f.view.ImagePrompt()
	if f.view.Screen != ContentDisplay || prompt == "" || f.view.ImageLoading {
		return false
	}

	t := f.issueLocked(ScopeImage)
	f.view.Image = nil
	f.view.ImageErr = ""
	f.view.ImageLoading = true

	f.launch(t, func(ctx context.Context) func(*View) {
		img, err := f.gateway.GenerateImage(ctx, prompt)
		if err != nil {
			f.logger.Error("image generation failed", "error", err)
			return func(v *View) {
				v.ImageLoading = false
				v.ImageErr = MsgImageFailed
			}
		}
		return func(v *View) {
			v.ImageLoading = false
			v.Image = img
		}
	})
	return true
}

// Snapshot returns a copy of the current view.
func (f *Flow) Snapshot() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := f.view
	v.Topics = slices.Clone(f.view.Topics)
	return v
}

// Wait blocks until every in-flight gateway call has resolved.
func (f *Flow) Wait() {
	f.inflight.Wait()
}

func (f *Flow) fetchTopicsLocked() {
	t := f.issueLocked(ScopeTopics)
	f.view.TopicsLoading = true
	f.view.TopicsErr = ""

	f.launch(t, func(ctx context.Context) func(*View) {
		topics, err := f.gateway.SuggestTopics(ctx)
		if err != nil {
			f.logger.Error("topic suggestion failed", "error", err)
			return func(v *View) {
				v.TopicsLoading = false
				v.TopicsErr = MsgTopicsFailed
			}
		}
		return func(v *View) {
			v.TopicsLoading = false
			v.Topics = topics
		}
	})
}

func (f *Flow) issueLocked(scope Scope) token {
	f.epochs[scope]++
	return token{scope: scope, epoch: f.epochs[scope]}
}

func (f *Flow) invalidateLocked(scopes ...Scope) {
	for _, s := range scopes {
		f.epochs[s]++
	}
}

// launch runs call on its own goroutine and applies the returned mutation if
// t is still current when the call resolves.
func (f *Flow) launch(t token, call func(ctx context.Context) func(*View)) {
	f.inflight.Add(1)
	go func() {
		defer f.inflight.Done()

		ctx, cancel := f.callContext()
		defer cancel()
		apply := call(ctx)

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.epochs[t.scope] != t.epoch {
			f.logger.Debug("discarding stale response", "scope", t.scope, "epoch", t.epoch, "current", f.epochs[t.scope])
			return
		}
		apply(&f.view)
	}()
}

func (f *Flow) callContext() (context.Context, context.CancelFunc) {
	if f.timeout > 0 {
		return context.WithTimeout(f.baseCtx, f.timeout)
	}
	return context.WithCancel(f.baseCtx)
}

package web

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/vbonduro/neuropost/internal/domain"
	"github.com/vbonduro/neuropost/internal/flow"
)

// sessionFor resolves the caller's flow from the session cookie, creating and
// mounting a new one when the cookie is missing or expired. created reports
// the latter.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (f *flow.Flow, created bool) {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	id, f, created = s.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		f.Mount()
	}
	return f, created
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	f, _ := s.sessionFor(w, r)
	s.render(w, "base", f.Snapshot())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	f, _ := s.sessionFor(w, r)
	s.render(w, "screen", f.Snapshot())
}

func (s *Server) handleRefreshTopics(w http.ResponseWriter, r *http.Request) {
	f, created := s.sessionFor(w, r)
	if err := f.RefreshTopics(); err != nil {
		s.transitionError(w, r, f, created, "refresh topics", err)
		return
	}
	s.render(w, "screen", f.Snapshot())
}

const maxTopicLen = 500

func (s *Server) handleSelectTopic(w http.ResponseWriter, r *http.Request) {
	topic := r.FormValue("topic")
	if len(topic) > maxTopicLen {
		http.Error(w, "topic too long", http.StatusBadRequest)
		return
	}

	f, created := s.sessionFor(w, r)
	if err := f.SelectTopic(topic); err != nil {
		s.transitionError(w, r, f, created, "select topic", err)
		return
	}
	s.render(w, "screen", f.Snapshot())
}

func (s *Server) handleStartOver(w http.ResponseWriter, r *http.Request) {
	f, created := s.sessionFor(w, r)
	if err := f.StartOver(); err != nil {
		s.transitionError(w, r, f, created, "start over", err)
		return
	}
	s.render(w, "screen", f.Snapshot())
}

func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	f, _ := s.sessionFor(w, r)
	if !f.GenerateImage() {
		s.logger.Debug("image request ignored", "screen", f.Snapshot().Screen)
	}
	s.render(w, "screen", f.Snapshot())
}

func (s *Server) handleDownloadImage(w http.ResponseWriter, r *http.Request) {
	f, _ := s.sessionFor(w, r)
	v := f.Snapshot()
	if v.Image == nil || v.Content == nil {
		http.NotFound(w, r)
		return
	}

	name := domain.DownloadName(v.Content.Post.Title, v.Image.MIMEType)
	w.Header().Set("Content-Type", v.Image.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(v.Image.Data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if _, err := w.Write(v.Image.Data); err != nil {
		s.logger.Error("failed to write image", "error", err)
	}
}

// transitionError answers a rejected transition. A page whose session is gone
// or out of step with the server (htmx requests, or a session created by this
// very request) gets the current screen instead, since htmx does not swap
// error responses and the page would otherwise stay stale.
func (s *Server) transitionError(w http.ResponseWriter, r *http.Request, f *flow.Flow, created bool, op string, err error) {
	s.logger.Warn("rejected transition", "op", op, "session_created", created, "error", err)

	if created || r.Header.Get("HX-Request") == "true" {
		s.render(w, "screen", f.Snapshot())
		return
	}

	switch {
	case errors.Is(err, flow.ErrUnknownTopic):
		http.Error(w, "unknown topic", http.StatusBadRequest)
	case errors.Is(err, flow.ErrInvalidTransition):
		http.Error(w, op+" is not allowed on this screen", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

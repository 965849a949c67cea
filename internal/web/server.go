package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/neuropost/internal/domain"
	"github.com/vbonduro/neuropost/internal/flow"
	"github.com/vbonduro/neuropost/internal/session"
)

const sessionCookie = "neuropost_session"

type Server struct {
	sessions   *session.Store[*flow.Flow]
	tmpl       *template.Template
	clinicName string
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer parses every template in tmplFS up front so rendering never
// touches the filesystem.
func NewServer(sessions *session.Store[*flow.Flow], tmplFS fs.FS, clinicName string, logger *slog.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"dataURI":      func(img *domain.GeneratedImage) template.URL { return template.URL(img.DataURI()) },
		"downloadName": domain.DownloadName,
	}).ParseFS(tmplFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		sessions:   sessions,
		tmpl:       tmpl,
		clinicName: clinicName,
		mux:        http.NewServeMux(),
		logger:     logger,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /view", s.handleView)
	s.mux.HandleFunc("POST /topics/refresh", s.handleRefreshTopics)
	s.mux.HandleFunc("POST /topics/select", s.handleSelectTopic)
	s.mux.HandleFunc("POST /start-over", s.handleStartOver)
	s.mux.HandleFunc("POST /image", s.handleGenerateImage)
	s.mux.HandleFunc("GET /image", s.handleDownloadImage)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline' https://unpkg.com; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		// HTMX polls /view every second while a request is in flight.
		if r.URL.Path == "/view" && rec.status == http.StatusOK {
			level = slog.LevelDebug
		}
		logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains open requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type pageData struct {
	ClinicName string
	View       flow.View
}

func (p pageData) TopicScreen() bool {
	return p.View.Screen == flow.TopicSelection
}

func (s *Server) render(w http.ResponseWriter, name string, view flow.View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := pageData{ClinicName: s.clinicName, View: view}
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("failed to render template", "template", name, "error", err)
	}
}

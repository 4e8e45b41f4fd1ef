// Package web serves the decoding wizard and the analysis view as
// server-rendered pages.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/wanze/AppTranslator/internal/analysis"
	"github.com/wanze/AppTranslator/internal/app"
)

//go:embed templates/*.html
var templateFS embed.FS

// maxUploadMemory is how much of an uploaded file is buffered in memory
// before spilling to a temporary file.
const maxUploadMemory = 8 << 20

// Server renders the decode and analysis pages for one shared session.
type Server struct {
	decode   *app.Controller
	analysis *analysis.Controller
	logger   *logrus.Logger
	tmpl     *template.Template
	mux      *http.ServeMux
}

// New builds the front-end around one decoding session and one analysis view.
func New(decode *app.Controller, an *analysis.Controller, logger *logrus.Logger) (*Server, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		decode:   decode,
		analysis: an,
		logger:   logger,
		tmpl:     tmpl,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.Handle("GET /{$}", http.RedirectHandler("/decode", http.StatusFound))

	s.mux.HandleFunc("GET /decode", s.handleDecode)
	s.mux.HandleFunc("GET /decode/progress", s.handleProgress)
	s.mux.HandleFunc("POST /decode/settings", s.handleSettings)
	s.mux.HandleFunc("POST /decode/translate", s.handleTranslate)
	s.mux.HandleFunc("POST /decode/upload", s.handleUpload)

	s.mux.HandleFunc("GET /analysis", s.handleAnalysis)
	s.mux.HandleFunc("GET /analysis/top-terms", s.handleTopTerms)
	s.mux.HandleFunc("GET /analysis/variations", s.handleVariations)

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the routes wrapped with request logging and metrics.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("Starting web front-end")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down web front-end")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.WithError(err).WithField("template", name).Error("Failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode JSON response")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"status": "healthy",
	})
}

package web

import (
	"errors"
	"net/http"

	"github.com/wanze/AppTranslator/internal/analysis"
	"github.com/wanze/AppTranslator/internal/translation"
)

type analysisPage struct {
	Title     string
	FormErr   string
	State     analysis.State
	Languages []translation.Language
}

func (s *Server) analysisPage() analysisPage {
	return analysisPage{
		Title:     "Analysis",
		State:     s.analysis.State(),
		Languages: translation.Languages,
	}
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "analysis", s.analysisPage())
}

func (s *Server) handleTopTerms(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = s.analysis.State().TopLang
	}
	err := s.analysis.LoadTopTerms(r.Context(), lang)
	s.renderAnalysis(w, err)
}

func (s *Server) handleVariations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	err := s.analysis.LoadVariations(r.Context(), analysis.VariationQuery{
		Source: q.Get("source"),
		Target: q.Get("target"),
		Term:   q.Get("term"),
	})
	s.renderAnalysis(w, err)
}

// renderAnalysis shows the view after a load. Invalid queries answer 400;
// service failures are part of the page state.
func (s *Server) renderAnalysis(w http.ResponseWriter, err error) {
	status := http.StatusOK
	if err != nil && !errors.Is(err, analysis.ErrStale) {
		if translation.KindOf(err) == translation.KindInvalidRequest {
			status = http.StatusBadRequest
		} else {
			status = http.StatusBadGateway
		}
	}
	s.render(w, status, "analysis", s.analysisPage())
}

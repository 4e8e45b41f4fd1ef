package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/wanze/AppTranslator/internal/app"
	"github.com/wanze/AppTranslator/internal/decoder"
	"github.com/wanze/AppTranslator/internal/input"
	"github.com/wanze/AppTranslator/internal/markdown"
	"github.com/wanze/AppTranslator/internal/translation"
)

var stepNames = map[app.Step]string{
	app.StepConfig:   "Input",
	app.StepSettings: "Settings",
	app.StepResults:  "Results",
}

type stepLink struct {
	Number    app.Step
	Name      string
	Current   bool
	Reachable bool
}

type settingsGroup struct {
	Kind   decoder.Kind
	Fields []decoder.Field
}

type decodePage struct {
	Title     string
	FormErr   string
	State     app.State
	Steps     []stepLink
	Kinds     []decoder.Kind
	Languages []translation.Language
	Mode      string
	Text      string
	Groups    []settingsGroup
	Help      template.HTML
}

func (s *Server) decodePage(formErr string) decodePage {
	st := s.decode.State()
	p := decodePage{
		Title:     "Decode",
		FormErr:   formErr,
		State:     st,
		Kinds:     decoder.Kinds,
		Languages: translation.Languages,
		Mode:      string(st.Payload.Mode()),
		Text:      input.Join(st.Input),
	}
	for _, n := range []app.Step{app.StepConfig, app.StepSettings, app.StepResults} {
		p.Steps = append(p.Steps, stepLink{
			Number:    n,
			Name:      stepNames[n],
			Current:   n == st.Step,
			Reachable: n <= st.MaxStep,
		})
	}

	kinds := []decoder.Kind{st.Selection.Kind}
	if st.Selection.IsCompare() {
		kinds = decoder.Backends
	}
	for _, k := range kinds {
		settings, err := st.Selection.Config.For(k)
		if err != nil {
			continue
		}
		p.Groups = append(p.Groups, settingsGroup{Kind: k, Fields: settings.Fields()})
	}

	if md, err := decoder.Help(st.Selection.Kind); err == nil {
		p.Help = markdown.ToHTML(md)
	}
	return p
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("step"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.render(w, http.StatusBadRequest, "decode", s.decodePage("invalid step "+strconv.Quote(v)))
			return
		}
		// Steps beyond the furthest one reached stay locked.
		if st := s.decode.State(); app.Step(n) <= st.MaxStep {
			s.decode.ChangeStep(app.Step(n))
		}
	}
	s.render(w, http.StatusOK, "decode", s.decodePage(""))
}

// handleSettings stores the fields of the config or settings step. Backend
// parameters are posted as "<backend>.<field>".
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "decode", s.decodePage(err.Error()))
		return
	}

	if err := s.applySettings(r); err != nil {
		s.logger.WithError(err).Warn("Rejected decoder settings")
		s.render(w, http.StatusBadRequest, "decode", s.decodePage(err.Error()))
		return
	}

	next := app.StepSettings
	if n, err := strconv.Atoi(r.PostForm.Get("next")); err == nil {
		next = app.Step(n)
	}
	s.decode.ChangeStep(next)
	http.Redirect(w, r, "/decode", http.StatusSeeOther)
}

func (s *Server) applySettings(r *http.Request) error {
	form := r.PostForm

	if v := form.Get("decoder"); v != "" {
		if err := s.decode.SelectDecoder(decoder.Kind(v)); err != nil {
			return err
		}
	}
	if form.Has("source") || form.Has("target") {
		cur := s.decode.State().Langs
		pair := translation.LanguagePair{Source: cur.Source, Target: cur.Target}
		if v := form.Get("source"); v != "" {
			pair.Source = v
		}
		if v := form.Get("target"); v != "" {
			pair.Target = v
		}
		if err := s.decode.SetLanguages(pair); err != nil {
			return err
		}
	}
	if form.Has("strings") {
		s.decode.SetStrings(input.Lines(form.Get("strings")))
	}
	if v := form.Get("mode"); v != "" {
		mode, err := translation.ParseMode(v)
		if err != nil {
			return err
		}
		if err := s.decode.SetMode(mode); err != nil {
			return err
		}
	}

	values := make(map[string]string)
	for key := range form {
		if strings.Contains(key, ".") {
			values[key] = form.Get(key)
		}
	}
	if len(values) > 0 {
		return s.decode.ApplySettings(values)
	}
	return nil
}

// handleTranslate submits the session. Failures are kept in the session
// state and shown on the results step.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if err := s.decode.Submit(r.Context()); err != nil && !errors.Is(err, app.ErrStale) {
		s.logger.WithError(err).Debug("Translate request failed")
	}
	http.Redirect(w, r, "/decode", http.StatusSeeOther)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.render(w, http.StatusBadRequest, "decode", s.decodePage("invalid upload: "+err.Error()))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.render(w, http.StatusBadRequest, "decode", s.decodePage("no file selected"))
		return
	}
	defer file.Close()

	if err := s.decode.Upload(r.Context(), header.Filename, file, header.Size); err != nil {
		s.logger.WithError(err).Debug("Upload request failed")
	}
	http.Redirect(w, r, "/decode", http.StatusSeeOther)
}

type progressResponse struct {
	Progress  int    `json:"progress"`
	IsLoading bool   `json:"is_loading"`
	Loaded    bool   `json:"loaded"`
	Mode      string `json:"mode"`
	Filename  string `json:"filename,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// handleProgress reports upload progress and loading flags for polling.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	st := s.decode.State()
	resp := progressResponse{
		Progress:  st.Progress,
		IsLoading: st.IsLoading,
		Loaded:    st.Loaded,
		Mode:      string(st.Payload.Mode()),
		Filename:  st.Payload.Filename(),
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
		resp.ErrorKind = st.ErrKind.String()
	}
	s.writeJSON(w, resp)
}

// Package app holds the state of a decoding session and drives the
// submission, upload and rendering flow against the translation service.
package app

import (
	"context"
	"errors"
	"html/template"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wanze/AppTranslator/internal/decoder"
	"github.com/wanze/AppTranslator/internal/metrics"
	"github.com/wanze/AppTranslator/internal/table"
	"github.com/wanze/AppTranslator/internal/translation"
	"github.com/wanze/AppTranslator/internal/upload"
)

// ErrStale is returned for a response that arrived after a newer request
// was issued. Its result is discarded.
var ErrStale = errors.New("response superseded by a newer request")

// Backend is the part of the translation service the controller needs.
type Backend interface {
	Translate(ctx context.Context, endpoint string, req translation.Request) (*translation.Response, error)
	Upload(ctx context.Context, filename string, r io.Reader) (*translation.UploadResult, error)
}

// LanguageDetector resolves an automatic source language.
type LanguageDetector interface {
	DetectLines(lines []string) (string, bool)
}

// Step is a page of the decode wizard.
type Step int

const (
	StepConfig Step = iota + 1
	StepSettings
	StepResults
)

// State is a snapshot of the session. Table and Debug keep the last
// successful result until a newer one replaces them.
type State struct {
	Selection decoder.Selection
	Langs     translation.LanguagePair
	Payload   translation.Payload
	// Input keeps the typed lines even while an uploaded file is selected.
	Input []string
	// Uploaded is the server-side name of the last accepted upload.
	Uploaded string

	IsLoading bool
	Loaded    bool
	Progress  int
	Step      Step
	MaxStep   Step

	Table *table.Table
	Debug template.HTML

	Err     error
	ErrKind translation.ErrorKind
}

// Controller owns one decoding session. It is safe for concurrent use.
type Controller struct {
	backend    Backend
	detector   LanguageDetector
	logger     *logrus.Logger
	onProgress func(percent int)

	mu    sync.Mutex
	state State
	seq   uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithDetector enables the automatic source language.
func WithDetector(d LanguageDetector) Option {
	return func(c *Controller) {
		c.detector = d
	}
}

func WithLogger(l *logrus.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithProgress registers a callback for upload progress changes. It is
// called without the controller lock held.
func WithProgress(fn func(percent int)) Option {
	return func(c *Controller) {
		c.onProgress = fn
	}
}

// WithSelection sets the decoder and settings a session starts with.
func WithSelection(sel decoder.Selection) Option {
	return func(c *Controller) {
		c.state.Selection = sel
	}
}

// WithLanguages sets the language pair a session starts with.
func WithLanguages(p translation.LanguagePair) Option {
	return func(c *Controller) {
		c.state.Langs = p
	}
}

// New returns a session with the default decoder, languages and string input.
func New(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		logger:  logrus.StandardLogger(),
		state: State{
			Selection: decoder.DefaultSelection(),
			Langs:     translation.DefaultLanguagePair(),
			Payload:   translation.Strings(nil),
			Step:      StepConfig,
			MaxStep:   StepConfig,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	st.Input = append([]string(nil), c.state.Input...)
	return st
}

// ChangeStep moves the wizard to step s, remembering the furthest step seen.
func (c *Controller) ChangeStep(s Step) {
	if s < StepConfig || s > StepResults {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changeStep(s)
}

func (c *Controller) changeStep(s Step) {
	c.state.Step = s
	if s > c.state.MaxStep {
		c.state.MaxStep = s
	}
}

// SetLanguages validates and stores the language pair. The source may be
// translation.AutoDetect.
func (c *Controller) SetLanguages(p translation.LanguagePair) error {
	if p.Source == translation.AutoDetect {
		dst, err := translation.ValidateLanguage(p.Target)
		if err != nil {
			return translation.Wrap(translation.KindInvalidRequest, "set languages", err)
		}
		p.Target = dst
	} else {
		norm, err := p.Normalize()
		if err != nil {
			return translation.Wrap(translation.KindInvalidRequest, "set languages", err)
		}
		p = norm
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Langs = p
	return nil
}

func (c *Controller) SelectDecoder(kind decoder.Kind) error {
	k, err := decoder.ParseKind(string(kind))
	if err != nil {
		return translation.Wrap(translation.KindInvalidRequest, "select decoder", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selection.Kind = k
	return nil
}

// ApplySettings updates backend parameters from "<backend>.<field>" values.
func (c *Controller) ApplySettings(values map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg := c.state.Selection.Config
	if err := cfg.Apply(values); err != nil {
		return translation.Wrap(translation.KindInvalidRequest, "apply settings", err)
	}
	c.state.Selection.Config = cfg
	return nil
}

// SetStrings switches the input to typed lines.
func (c *Controller) SetStrings(lines []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Input = append([]string(nil), lines...)
	c.state.Payload = translation.Strings(lines)
}

// UseUploaded selects a file that already exists on the service, as
// returned by an earlier upload.
func (c *Controller) UseUploaded(filename string) error {
	if filename == "" {
		return translation.Errorf(translation.KindInvalidRequest, "use uploaded", "filename is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Uploaded = filename
	c.state.Payload = translation.XMLFile(filename)
	return nil
}

// SetMode switches between typed lines and the uploaded file. Switching to
// XML requires a previous successful upload.
func (c *Controller) SetMode(mode translation.Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch mode {
	case translation.ModeString:
		c.state.Payload = translation.Strings(c.state.Input)
	case translation.ModeXML:
		if c.state.Uploaded == "" {
			return translation.Errorf(translation.KindInvalidRequest, "set mode", "no XML file uploaded yet")
		}
		c.state.Payload = translation.XMLFile(c.state.Uploaded)
	default:
		return translation.Errorf(translation.KindInvalidRequest, "set mode", "unknown input mode %q", mode)
	}
	return nil
}

// Submit sends the current selection, languages and input for translation.
// On success the table and debug transcript are replaced; on failure they
// are kept and the error is recorded in the state. A response for a request
// that has since been superseded is dropped and ErrStale is returned.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.IsLoading = true
	c.state.Loaded = false
	c.changeStep(StepResults)

	sel := c.state.Selection
	payload := c.state.Payload
	langs, err := c.resolveLanguages(c.state.Langs, payload)
	if err != nil {
		c.fail(err)
		c.mu.Unlock()
		return err
	}
	endpoint, req, err := translation.Build(sel, langs, payload)
	if err != nil {
		c.fail(err)
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	log := c.logger.WithFields(logrus.Fields{
		"seq":      seq,
		"endpoint": endpoint,
		"decoder":  sel.Kind,
		"mode":     payload.Mode(),
	})
	log.Info("Submitting translation request")

	resp, err := c.backend.Translate(ctx, endpoint, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		metrics.IncStale()
		log.WithField("latest", c.seq).Warn("Discarding stale translation response")
		return ErrStale
	}
	if err != nil {
		log.WithError(err).WithField("kind", translation.KindOf(err).String()).Error("Translation failed")
		c.fail(err)
		return err
	}

	tbl := table.Normalize(resp, payload, sel.Kind)
	c.state.Table = tbl
	c.state.Debug = table.FormatDebug(resp.Debug)
	c.state.IsLoading = false
	c.state.Loaded = true
	c.state.Err = nil
	c.state.ErrKind = translation.KindNone
	metrics.AddRows(string(sel.Kind), string(payload.Mode()), tbl.Len())
	log.WithField("rows", tbl.Len()).Info("Translation completed")
	return nil
}

// resolveLanguages replaces an automatic source language with the detected
// one. Only typed lines can be detected.
func (c *Controller) resolveLanguages(langs translation.LanguagePair, payload translation.Payload) (translation.LanguagePair, error) {
	if langs.Source != translation.AutoDetect {
		return langs, nil
	}
	const op = "detect language"
	if c.detector == nil {
		return langs, translation.Errorf(translation.KindInvalidRequest, op, "language detection is not available")
	}
	if payload.Mode() != translation.ModeString {
		return langs, translation.Errorf(translation.KindInvalidRequest, op, "source language of an XML file must be given")
	}
	code, ok := c.detector.DetectLines(payload.Lines())
	if !ok {
		return langs, translation.Errorf(translation.KindInvalidRequest, op, "could not detect the source language")
	}
	src, err := translation.ValidateLanguage(code)
	if err != nil {
		return langs, translation.Wrap(translation.KindInvalidRequest, op, err)
	}
	c.logger.WithField("source", src).Info("Detected source language")
	langs.Source = src
	return langs, nil
}

// fail records err while keeping the previous result. Callers hold mu.
func (c *Controller) fail(err error) {
	c.state.IsLoading = false
	c.state.Err = err
	c.state.ErrKind = translation.KindOf(err)
}

// Upload sends a file to the service. On success the input switches to the
// uploaded file; on failure the input is left unchanged and the error is
// recorded. Progress is published in the state while the file streams.
func (c *Controller) Upload(ctx context.Context, filename string, r io.Reader, size int64) error {
	c.mu.Lock()
	c.state.Progress = 0
	c.mu.Unlock()

	// finished is guarded by c.mu. Reads reported after the backend
	// returned no longer move the session progress.
	var finished bool
	var tracker *upload.Tracker
	tracker = upload.NewTracker(size, func(int) {
		c.mu.Lock()
		if finished {
			c.mu.Unlock()
			return
		}
		p := tracker.Percent()
		c.state.Progress = p
		c.mu.Unlock()
		if c.onProgress != nil {
			c.onProgress(p)
		}
	})
	tracker.Start()

	log := c.logger.WithFields(logrus.Fields{
		"file": filename,
		"size": size,
	})
	log.Info("Uploading file")

	res, err := c.backend.Upload(ctx, filename, tracker.Reader(r))
	if err == nil {
		tracker.Complete()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	finished = true
	c.state.Progress = tracker.Percent()

	if err != nil {
		log.WithError(err).Error("Upload failed")
		c.state.Err = err
		c.state.ErrKind = translation.KindOf(err)
		return err
	}

	c.state.Uploaded = res.Filename
	c.state.Payload = translation.XMLFile(res.Filename)
	c.state.Err = nil
	c.state.ErrKind = translation.KindNone
	log.WithField("server_file", res.Filename).Info("Upload completed")
	return nil
}

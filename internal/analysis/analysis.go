// Package analysis loads corpus statistics from the translation service:
// the most frequent terms of a language and the translations seen for a
// given term.
package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wanze/AppTranslator/internal/metrics"
	"github.com/wanze/AppTranslator/internal/translation"
)

// ErrStale is returned when a newer request of the same kind was issued
// while this one was in flight.
var ErrStale = errors.New("analysis response superseded by a newer request")

// Source is the part of the translation service the analysis view needs.
type Source interface {
	TopTerms(ctx context.Context, lang string) ([]translation.TermCount, error)
	TermVariations(ctx context.Context, source, target, term string) ([]translation.TermCount, error)
}

// Bar is one entry of the top terms chart. Percent is relative to the
// largest count in the chart.
type Bar struct {
	Label   string
	Count   int
	Percent int
}

// Chart is a bar chart of term counts scaled to the largest count.
type Chart struct {
	Lang string
	Bars []Bar
	Max  int
}

// NewChart keeps the order of terms as returned by the service.
func NewChart(lang string, terms []translation.TermCount) Chart {
	c := Chart{Lang: lang, Bars: make([]Bar, 0, len(terms))}
	for _, t := range terms {
		if t.Count > c.Max {
			c.Max = t.Count
		}
	}
	for _, t := range terms {
		p := 0
		if c.Max > 0 && t.Count > 0 {
			p = t.Count * 100 / c.Max
		}
		c.Bars = append(c.Bars, Bar{Label: t.Term, Count: t.Count, Percent: p})
	}
	return c
}

// Labels and Counts return the chart series.
func (c Chart) Labels() []string {
	out := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		out[i] = b.Label
	}
	return out
}

func (c Chart) Counts() []int {
	out := make([]int, len(c.Bars))
	for i, b := range c.Bars {
		out[i] = b.Count
	}
	return out
}

// VariationQuery names the term whose translations are listed.
type VariationQuery struct {
	Source string
	Target string
	Term   string
}

// State is a snapshot of the analysis view.
type State struct {
	TopLang string
	Chart   Chart

	Query      VariationQuery
	Variations []translation.TermCount

	IsLoading bool
	Loaded    bool
	Err       error
	ErrKind   translation.ErrorKind
}

// Controller holds the analysis view state. Top terms and variations are
// loaded independently; a response older than the latest request of its
// kind is dropped.
type Controller struct {
	source Source
	logger *logrus.Logger

	mu           sync.Mutex
	state        State
	topSeq       uint64
	variationSeq uint64
	pending      int
}

// New returns a view starting on English top terms and English to French
// variations. A nil logger uses the standard logger.
func New(source Source, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Controller{
		source: source,
		logger: logger,
		state: State{
			TopLang: "en",
			Query:   VariationQuery{Source: "en", Target: "fr"},
		},
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	st.Variations = append([]translation.TermCount(nil), c.state.Variations...)
	st.Chart.Bars = append([]Bar(nil), c.state.Chart.Bars...)
	return st
}

// LoadTopTerms fetches the top terms of lang and rebuilds the chart.
func (c *Controller) LoadTopTerms(ctx context.Context, lang string) error {
	const op = "top terms"

	code, err := translation.ValidateLanguage(lang)
	if err != nil {
		err = translation.Wrap(translation.KindInvalidRequest, op, err)
		c.mu.Lock()
		c.record(err)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.topSeq++
	seq := c.topSeq
	c.state.TopLang = code
	c.begin()
	c.mu.Unlock()

	terms, err := c.source.TopTerms(ctx, code)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending--
	c.state.IsLoading = c.pending > 0

	if seq != c.topSeq {
		metrics.IncStale()
		return ErrStale
	}
	if err != nil {
		c.logger.WithError(err).WithField("lang", code).Error("Failed to load top terms")
		c.record(err)
		return err
	}

	c.state.Chart = NewChart(code, terms)
	c.succeed()
	c.logger.WithFields(logrus.Fields{"lang": code, "terms": len(terms)}).Info("Loaded top terms")
	return nil
}

// LoadVariations fetches the translations seen for q.Term.
func (c *Controller) LoadVariations(ctx context.Context, q VariationQuery) error {
	const op = "term variations"

	q.Term = strings.TrimSpace(q.Term)
	pair, err := translation.LanguagePair{Source: q.Source, Target: q.Target}.Normalize()
	if err != nil {
		err = translation.Wrap(translation.KindInvalidRequest, op, err)
	} else if q.Term == "" {
		err = translation.Errorf(translation.KindInvalidRequest, op, "term is required")
	}
	if err != nil {
		c.mu.Lock()
		c.record(err)
		c.mu.Unlock()
		return err
	}
	q.Source, q.Target = pair.Source, pair.Target

	c.mu.Lock()
	c.variationSeq++
	seq := c.variationSeq
	c.state.Query = q
	c.begin()
	c.mu.Unlock()

	variations, err := c.source.TermVariations(ctx, q.Source, q.Target, q.Term)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending--
	c.state.IsLoading = c.pending > 0

	if seq != c.variationSeq {
		metrics.IncStale()
		return ErrStale
	}
	if err != nil {
		c.logger.WithError(err).WithField("term", q.Term).Error("Failed to load term variations")
		c.record(err)
		return err
	}

	c.state.Variations = variations
	c.succeed()
	return nil
}

func (c *Controller) begin() {
	c.pending++
	c.state.IsLoading = true
	c.state.Loaded = false
}

func (c *Controller) succeed() {
	c.state.Loaded = true
	c.state.Err = nil
	c.state.ErrKind = translation.KindNone
}

func (c *Controller) record(err error) {
	c.state.Err = err
	c.state.ErrKind = translation.KindOf(err)
}

// Package decoder describes the translation backends a user can pick and the
// parameters each of them accepts.
//
// Every backend owns a dedicated settings struct. Selection ties one backend
// kind to the full Config so the request payload can be derived without any
// dynamically keyed maps.
package decoder

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind names a decoder. Compare runs every backend side by side.
type Kind string

const (
	Moses      Kind = "moses"
	Solr       Kind = "solr"
	Lamtram    Kind = "lamtram"
	Tensorflow Kind = "tensorflow"
	Compare    Kind = "compare"
)

// Kinds lists every selectable decoder in display order.
var Kinds = []Kind{Moses, Solr, Lamtram, Tensorflow, Compare}

// Backends lists the decoders that own a settings record.
var Backends = []Kind{Moses, Solr, Lamtram, Tensorflow}

// ParseKind accepts a decoder name in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown decoder %q", s)
}

func (k Kind) String() string {
	return string(k)
}

// Label is the human readable backend name used in column headers.
func (k Kind) Label() string {
	switch k {
	case Moses:
		return "Moses"
	case Solr:
		return "Solr"
	case Lamtram:
		return "Lamtram"
	case Tensorflow:
		return "Tensorflow"
	case Compare:
		return "Compare"
	}
	return string(k)
}

// Field is one named parameter of a settings record, formatted for display.
type Field struct {
	Name  string
	Value string
}

// Settings is implemented by the parameter record of each backend.
type Settings interface {
	Kind() Kind
	Fields() []Field
}

// MosesSettings are the phrase-based decoder parameters.
type MosesSettings struct {
	DropUnknown     string `mapstructure:"drop_unknown" json:"drop_unknown"`
	SearchAlgorithm int    `mapstructure:"search_algorithm" json:"search_algorithm"`
	MaxPhraseLength int    `mapstructure:"max_phrase_length" json:"max_phrase_length"`
	Verbose         int    `mapstructure:"verbose" json:"verbose"`
	Stack           int    `mapstructure:"stack" json:"stack"`
	TuneWeights     int    `mapstructure:"tune_weights" json:"tune_weights"`
	WeightD         string `mapstructure:"weight_d" json:"weight_d"`
	WeightL         string `mapstructure:"weight_l" json:"weight_l"`
	WeightT         string `mapstructure:"weight_t" json:"weight_t"`
	WeightW         string `mapstructure:"weight_w" json:"weight_w"`
}

func (MosesSettings) Kind() Kind { return Moses }

func (s MosesSettings) Fields() []Field {
	return []Field{
		{"drop_unknown", s.DropUnknown},
		{"search_algorithm", strconv.Itoa(s.SearchAlgorithm)},
		{"max_phrase_length", strconv.Itoa(s.MaxPhraseLength)},
		{"verbose", strconv.Itoa(s.Verbose)},
		{"stack", strconv.Itoa(s.Stack)},
		{"tune_weights", strconv.Itoa(s.TuneWeights)},
		{"weight_d", s.WeightD},
		{"weight_l", s.WeightL},
		{"weight_t", s.WeightT},
		{"weight_w", s.WeightW},
	}
}

type SolrSettings struct {
	Rows int `mapstructure:"rows" json:"rows"`
}

func (SolrSettings) Kind() Kind { return Solr }

func (s SolrSettings) Fields() []Field {
	return []Field{{"rows", strconv.Itoa(s.Rows)}}
}

type LamtramSettings struct {
	WordPen float64 `mapstructure:"word_pen" json:"word_pen"`
	Beam    int     `mapstructure:"beam" json:"beam"`
}

func (LamtramSettings) Kind() Kind { return Lamtram }

func (s LamtramSettings) Fields() []Field {
	return []Field{
		{"word_pen", strconv.FormatFloat(s.WordPen, 'f', -1, 64)},
		{"beam", strconv.Itoa(s.Beam)},
	}
}

type TensorflowSettings struct {
	NumLayers int `mapstructure:"num_layers" json:"num_layers"`
	Size      int `mapstructure:"size" json:"size"`
}

func (TensorflowSettings) Kind() Kind { return Tensorflow }

func (s TensorflowSettings) Fields() []Field {
	return []Field{
		{"num_layers", strconv.Itoa(s.NumLayers)},
		{"size", strconv.Itoa(s.Size)},
	}
}

// Config holds the settings of every backend. Only the active backend's
// record is sent unless Compare is selected.
type Config struct {
	Moses      MosesSettings      `mapstructure:"moses" json:"moses"`
	Solr       SolrSettings       `mapstructure:"solr" json:"solr"`
	Lamtram    LamtramSettings    `mapstructure:"lamtram" json:"lamtram"`
	Tensorflow TensorflowSettings `mapstructure:"tensorflow" json:"tensorflow"`
}

// DefaultConfig returns the settings the demo service ships with.
func DefaultConfig() Config {
	return Config{
		Moses: MosesSettings{
			DropUnknown:     "0",
			SearchAlgorithm: 0,
			MaxPhraseLength: 20,
			Verbose:         2,
			Stack:           100,
			TuneWeights:     0,
			WeightD:         "0.3",
			WeightL:         "0.5",
			WeightT:         "0.2 0.2 0.2 0.2",
			WeightW:         "-1",
		},
		Solr:       SolrSettings{Rows: 100},
		Lamtram:    LamtramSettings{WordPen: 0.0, Beam: 5},
		Tensorflow: TensorflowSettings{NumLayers: 2, Size: 256},
	}
}

// For returns the settings record owned by a backend. Compare owns none.
func (c Config) For(kind Kind) (Settings, error) {
	switch kind {
	case Moses:
		return c.Moses, nil
	case Solr:
		return c.Solr, nil
	case Lamtram:
		return c.Lamtram, nil
	case Tensorflow:
		return c.Tensorflow, nil
	case Compare:
		return nil, fmt.Errorf("decoder %q has no settings of its own", kind)
	}
	return nil, fmt.Errorf("unknown decoder %q", kind)
}

// compareRecord is the wire shape of the full configuration sent in
// compare mode.
type compareRecord struct {
	Decoder    Kind               `json:"decoder"`
	Moses      MosesSettings      `json:"moses"`
	Solr       SolrSettings       `json:"solr"`
	Lamtram    LamtramSettings    `json:"lamtram"`
	Tensorflow TensorflowSettings `json:"tensorflow"`
	Compare    struct{}           `json:"compare"`
}

// Selection is the active decoder together with every backend's settings.
type Selection struct {
	Kind   Kind
	Config Config
}

// DefaultSelection is Moses with default settings.
func DefaultSelection() Selection {
	return Selection{Kind: Moses, Config: DefaultConfig()}
}

// Payload returns the value sent as decoder_settings: the whole
// configuration in compare mode, the active backend's record otherwise.
func (s Selection) Payload() (any, error) {
	if s.Kind == Compare {
		return compareRecord{
			Decoder:    Compare,
			Moses:      s.Config.Moses,
			Solr:       s.Config.Solr,
			Lamtram:    s.Config.Lamtram,
			Tensorflow: s.Config.Tensorflow,
		}, nil
	}
	return s.Config.For(s.Kind)
}

// IsCompare reports whether every backend is asked for output.
func (s Selection) IsCompare() bool {
	return s.Kind == Compare
}

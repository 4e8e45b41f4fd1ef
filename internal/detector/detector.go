// Package detector guesses the source language of input lines among the
// languages the translation corpus covers.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// supported maps corpus language codes to detector languages.
var supported = map[string]lingua.Language{
	"en": lingua.English,
	"de": lingua.German,
	"fr": lingua.French,
}

// Detector identifies which corpus language a text is written in.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector limited to the corpus languages. Building it loads
// language models, so callers should reuse the instance.
func New() *Detector {
	langs := make([]lingua.Language, 0, len(supported))
	for _, l := range supported {
		langs = append(langs, l)
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(langs...).
		Build()

	return &Detector{detector: detector}
}

// Detect reports the language of text. Blank text is never detected.
func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// DetectLines detects the language of all lines taken together.
func (d *Detector) DetectLines(lines []string) (string, bool) {
	return d.DetectISO(strings.Join(lines, "\n"))
}

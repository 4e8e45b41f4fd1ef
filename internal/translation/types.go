// Package translation holds the wire model of the translation service and
// builds the requests sent to it.
package translation

import (
	"fmt"

	"golang.org/x/text/language"
)

// AutoDetect as a source language asks for detection from the input lines.
const AutoDetect = "auto"

// Language is a supported corpus language and its display name.
type Language struct {
	Code string
	Name string
}

// Languages is the fixed set of codes the demo corpus covers.
var Languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "de", Name: "German"},
	{Code: "fr", Name: "French"},
}

// LanguageName returns the display name for a supported code.
func LanguageName(code string) string {
	for _, l := range Languages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}

// ValidateLanguage checks that code is a well-formed BCP 47 tag whose base
// language is one of Languages, and returns the canonical base code.
func ValidateLanguage(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", code, err)
	}
	base, _ := tag.Base()
	for _, l := range Languages {
		if l.Code == base.String() {
			return l.Code, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q", code)
}

// LanguagePair is the source and target language of a request.
type LanguagePair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// DefaultLanguagePair is English to French.
func DefaultLanguagePair() LanguagePair {
	return LanguagePair{Source: "en", Target: "fr"}
}

// Normalize validates both sides and returns the pair with canonical codes.
func (p LanguagePair) Normalize() (LanguagePair, error) {
	src, err := ValidateLanguage(p.Source)
	if err != nil {
		return p, fmt.Errorf("source: %w", err)
	}
	dst, err := ValidateLanguage(p.Target)
	if err != nil {
		return p, fmt.Errorf("target: %w", err)
	}
	return LanguagePair{Source: src, Target: dst}, nil
}

// Mode is the kind of input a payload carries.
type Mode string

const (
	ModeString Mode = "string"
	ModeXML    Mode = "xml"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeString, ModeXML:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown input mode %q", s)
}

// Payload is the input of a translation: either ordered text lines or the
// server-side name of a previously uploaded XML file.
type Payload struct {
	mode     Mode
	lines    []string
	filename string
}

// Strings returns a payload of text lines. lines is copied.
func Strings(lines []string) Payload {
	return Payload{mode: ModeString, lines: append([]string(nil), lines...)}
}

// XMLFile returns a payload naming an uploaded file on the server.
func XMLFile(filename string) Payload {
	return Payload{mode: ModeXML, filename: filename}
}

// Mode defaults to string input for the zero Payload.
func (p Payload) Mode() Mode {
	if p.mode == "" {
		return ModeString
	}
	return p.mode
}

// Lines returns a copy of the text lines. It is empty for XML input.
func (p Payload) Lines() []string {
	return append([]string(nil), p.lines...)
}

func (p Payload) Filename() string {
	return p.filename
}

// Line returns input line i and whether it exists.
func (p Payload) Line(i int) (string, bool) {
	if i < 0 || i >= len(p.lines) {
		return "", false
	}
	return p.lines[i], true
}

// UploadResult is the reply of the upload endpoint.
type UploadResult struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
}

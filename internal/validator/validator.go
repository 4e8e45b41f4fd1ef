// Package validator checks that the decoder output in a result table is
// written in the expected target language.
package validator

import (
	"fmt"
	"html"
	"strings"

	"github.com/wanze/AppTranslator/internal/table"
)

// minValidationLength is the minimum rune count required to attempt language detection.
// Shorter texts produce unreliable results and are accepted without validation.
const minValidationLength = 20

// Detector reports the ISO 639-1 code of a text.
type Detector interface {
	DetectISO(text string) (string, bool)
}

// Mismatch is an output cell detected in another language than expected.
type Mismatch struct {
	Row      int
	Column   string
	Detected string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("row %d, %s: detected %s", m.Row+1, m.Column, m.Detected)
}

// Validator checks output text against the target language.
type Validator struct {
	det Detector
}

func New(det Detector) *Validator {
	return &Validator{det: det}
}

// IsValid reports whether text appears to be written in targetLang. Short
// texts and texts whose language cannot be determined pass.
func (v *Validator) IsValid(text, targetLang string) (bool, string) {
	text = strings.TrimSpace(text)
	if targetLang == "" || text == "" {
		return true, ""
	}

	// Detector is unreliable for very short texts; skip validation.
	if len([]rune(text)) < minValidationLength {
		return true, ""
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return true, ""
	}
	return strings.EqualFold(detected, targetLang), detected
}

// CheckTable validates every output column of t against targetLang.
// Input, key and source columns are skipped.
func (v *Validator) CheckTable(t *table.Table, targetLang string) []Mismatch {
	if t == nil {
		return nil
	}

	var outputs []int
	for i, c := range t.Columns {
		if strings.HasPrefix(c, "Output") {
			outputs = append(outputs, i)
		}
	}

	var mismatches []Mismatch
	for r, row := range t.Rows {
		// Keyed rows are compacted, so only full rows line up with the headers.
		if len(row) != len(t.Columns) {
			continue
		}
		for _, i := range outputs {
			cell := row[i]
			if cell == table.Placeholder {
				continue
			}
			if ok, detected := v.IsValid(html.UnescapeString(string(cell)), targetLang); !ok {
				mismatches = append(mismatches, Mismatch{Row: r, Column: t.Columns[i], Detected: detected})
			}
		}
	}
	return mismatches
}

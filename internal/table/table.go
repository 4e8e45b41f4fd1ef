// Package table turns translate responses into the rows shown to the user.
package table

import (
	"html/template"
	"strings"

	"github.com/wanze/AppTranslator/internal/decoder"
	"github.com/wanze/AppTranslator/internal/translation"
)

// Placeholder fills cells whose value is missing or empty.
const Placeholder template.HTML = "&nbsp;"

var compareColumns = []string{"Output Moses", "Output Tensorflow", "Output Solr"}

// keyOrder fixes the position of each keyed record field.
var keyOrder = map[string]int{
	"key":        0,
	"source":     1,
	"target":     2,
	"moses":      3,
	"tensorflow": 4,
	"solr":       5,
}

const keySlots = 6

// layoutSlots lists the keyed fields each input mode and decoder display.
func layoutSlots(mode translation.Mode, kind decoder.Kind) [keySlots]bool {
	var allowed [keySlots]bool
	allowed[keyOrder["source"]] = true
	if mode == translation.ModeXML {
		allowed[keyOrder["key"]] = true
	}
	if kind == decoder.Compare {
		allowed[keyOrder["moses"]] = true
		allowed[keyOrder["tensorflow"]] = true
		allowed[keyOrder["solr"]] = true
	} else {
		allowed[keyOrder["target"]] = true
	}
	return allowed
}

// Table is a normalized translate response: headers plus escaped rows.
type Table struct {
	Columns []string
	Rows    [][]template.HTML
}

// Len reports the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Columns returns the headers for an input mode and decoder.
func Columns(mode translation.Mode, kind decoder.Kind) []string {
	var cols []string
	if mode == translation.ModeXML {
		cols = []string{"Key", "Source"}
	} else {
		cols = []string{"Input"}
	}
	if kind == decoder.Compare {
		return append(cols, compareColumns...)
	}
	return append(cols, "Output")
}

// Normalize builds the table for a response produced from payload with the
// given decoder. Plain records are paired with the input line at the same
// index; keyed records are laid out by field and compacted.
func Normalize(resp *translation.Response, payload translation.Payload, kind decoder.Kind) *Table {
	t := &Table{Columns: Columns(payload.Mode(), kind)}
	if resp == nil {
		return t
	}
	allowed := layoutSlots(payload.Mode(), kind)

	t.Rows = make([][]template.HTML, 0, len(resp.Translations))
	for i, rec := range resp.Translations {
		if rec.IsKeyed() {
			t.Rows = append(t.Rows, keyedRow(rec.Fields, allowed))
			continue
		}
		input, _ := payload.Line(i)
		t.Rows = append(t.Rows, []template.HTML{Cell(input), Cell(rec.Text)})
	}
	return t
}

// keyedRow lays out fields by position, keeping only the allowed positions
// the record actually carries.
func keyedRow(fields map[string]string, allowed [keySlots]bool) []template.HTML {
	var slots [keySlots]template.HTML
	var used [keySlots]bool
	for key, value := range fields {
		idx, ok := keyOrder[key]
		if !ok || !allowed[idx] {
			continue
		}
		slots[idx] = Cell(value)
		used[idx] = true
	}

	row := make([]template.HTML, 0, len(fields))
	for i := range slots {
		if used[i] {
			row = append(row, slots[i])
		}
	}
	return row
}

// Cell escapes s for literal display. Blank values become the placeholder.
func Cell(s string) template.HTML {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return template.HTML(template.HTMLEscapeString(s))
}

// FormatDebug makes a decoder debug transcript readable as HTML: the text is
// escaped, then literal \n and \t sequences are expanded.
func FormatDebug(s string) template.HTML {
	return template.HTML(ExpandEscapes(template.HTMLEscapeString(s)))
}

var escapeReplacer = strings.NewReplacer(`\n`, "&#13;&#10;", `\t`, "    ")

// ExpandEscapes replaces literal backslash-n with a CRLF character reference
// and literal backslash-t with four spaces. Applying it twice is a no-op.
func ExpandEscapes(s string) string {
	return escapeReplacer.Replace(s)
}

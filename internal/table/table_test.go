package table

import (
	"html/template"
	"reflect"
	"testing"

	"github.com/wanze/AppTranslator/internal/decoder"
	"github.com/wanze/AppTranslator/internal/translation"
)

func TestColumns(t *testing.T) {
	tests := []struct {
		mode translation.Mode
		kind decoder.Kind
		want []string
	}{
		{translation.ModeString, decoder.Moses, []string{"Input", "Output"}},
		{translation.ModeString, decoder.Tensorflow, []string{"Input", "Output"}},
		{translation.ModeString, decoder.Compare, []string{"Input", "Output Moses", "Output Tensorflow", "Output Solr"}},
		{translation.ModeXML, decoder.Solr, []string{"Key", "Source", "Output"}},
		{translation.ModeXML, decoder.Compare, []string{"Key", "Source", "Output Moses", "Output Tensorflow", "Output Solr"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+string(tt.kind), func(t *testing.T) {
			got := Columns(tt.mode, tt.kind)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Columns(%s, %s) = %v, want %v", tt.mode, tt.kind, got, tt.want)
			}
		})
	}
}

func TestNormalize_PlainStrings(t *testing.T) {
	inputs := []string{"Hello", "Good morning", "a < b"}
	resp := &translation.Response{
		Translations: []translation.Record{
			translation.TextRecord("Bonjour"),
			translation.TextRecord("Bon matin"),
			translation.TextRecord("a < b & c"),
		},
	}

	tbl := Normalize(resp, translation.Strings(inputs), decoder.Moses)

	if !reflect.DeepEqual(tbl.Columns, []string{"Input", "Output"}) {
		t.Errorf("unexpected columns: %v", tbl.Columns)
	}
	if tbl.Len() != len(inputs) {
		t.Fatalf("expected %d rows, got %d", len(inputs), tbl.Len())
	}

	want := [][]template.HTML{
		{"Hello", "Bonjour"},
		{"Good morning", "Bon matin"},
		{"a &lt; b", "a &lt; b &amp; c"},
	}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Errorf("unexpected rows:\n got %v\nwant %v", tbl.Rows, want)
	}
}

func TestNormalize_MoreRecordsThanInputs(t *testing.T) {
	resp := &translation.Response{
		Translations: []translation.Record{
			translation.TextRecord("un"),
			translation.TextRecord("deux"),
		},
	}

	tbl := Normalize(resp, translation.Strings([]string{"one"}), decoder.Solr)

	if tbl.Rows[1][0] != Placeholder {
		t.Errorf("expected placeholder for missing input, got %q", tbl.Rows[1][0])
	}
}

func TestNormalize_CompareKeyedRecordIsCompacted(t *testing.T) {
	resp := &translation.Response{
		Translations: []translation.Record{
			translation.KeyedRecord(map[string]string{"moses": "Salut", "source": "Hi"}),
		},
	}

	tbl := Normalize(resp, translation.XMLFile("f.xml"), decoder.Compare)

	if len(tbl.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(tbl.Rows))
	}
	want := []template.HTML{"Hi", "Salut"}
	if !reflect.DeepEqual(tbl.Rows[0], want) {
		t.Errorf("expected %v, got %v", want, tbl.Rows[0])
	}
}

func TestNormalize_KeyedRecordOrderAndPlaceholders(t *testing.T) {
	resp := &translation.Response{
		Translations: []translation.Record{
			translation.KeyedRecord(map[string]string{
				"solr":       "",
				"tensorflow": "<b>maison</b>",
				"moses":      "maison",
				"source":     "house",
				"key":        "app.title",
				"extra":      "ignored",
			}),
		},
	}

	tbl := Normalize(resp, translation.XMLFile("f.xml"), decoder.Compare)

	want := []template.HTML{"app.title", "house", "maison", "&lt;b&gt;maison&lt;/b&gt;", Placeholder}
	if !reflect.DeepEqual(tbl.Rows[0], want) {
		t.Errorf("expected %v, got %v", want, tbl.Rows[0])
	}
	for i, cell := range tbl.Rows[0] {
		if cell == "" {
			t.Errorf("cell %d is empty", i)
		}
	}
}

func TestNormalize_XMLSingleBackend(t *testing.T) {
	resp := &translation.Response{
		Translations: []translation.Record{
			translation.KeyedRecord(map[string]string{"key": "k1", "source": "Hello", "target": "Hallo"}),
			translation.KeyedRecord(map[string]string{"key": "k2", "source": "Bye", "target": ""}),
		},
	}

	tbl := Normalize(resp, translation.XMLFile("f.xml"), decoder.Moses)

	if !reflect.DeepEqual(tbl.Columns, []string{"Key", "Source", "Output"}) {
		t.Errorf("unexpected columns: %v", tbl.Columns)
	}
	if !reflect.DeepEqual(tbl.Rows[1], []template.HTML{"k2", "Bye", Placeholder}) {
		t.Errorf("unexpected second row: %v", tbl.Rows[1])
	}
}

func TestNormalize_KeyedRecordKeepsLayoutSlots(t *testing.T) {
	full := map[string]string{
		"key":        "k",
		"source":     "Hi",
		"target":     "ref",
		"moses":      "M",
		"tensorflow": "T",
		"solr":       "S",
	}

	tests := []struct {
		name    string
		payload translation.Payload
		kind    decoder.Kind
		want    []template.HTML
	}{
		{"xml compare", translation.XMLFile("f.xml"), decoder.Compare, []template.HTML{"k", "Hi", "M", "T", "S"}},
		{"xml single", translation.XMLFile("f.xml"), decoder.Moses, []template.HTML{"k", "Hi", "ref"}},
		{"string compare", translation.Strings([]string{"Hi"}), decoder.Compare, []template.HTML{"Hi", "M", "T", "S"}},
		{"string single", translation.Strings([]string{"Hi"}), decoder.Solr, []template.HTML{"Hi", "ref"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &translation.Response{Translations: []translation.Record{translation.KeyedRecord(full)}}
			tbl := Normalize(resp, tt.payload, tt.kind)

			if !reflect.DeepEqual(tbl.Rows[0], tt.want) {
				t.Errorf("expected %v, got %v", tt.want, tbl.Rows[0])
			}
			if len(tbl.Rows[0]) > len(tbl.Columns) {
				t.Errorf("row has %d cells for %d columns", len(tbl.Rows[0]), len(tbl.Columns))
			}
		})
	}
}

func TestNormalize_XMLSingleDropsCompareFields(t *testing.T) {
	resp := &translation.Response{
		Translations: []translation.Record{
			translation.KeyedRecord(map[string]string{"key": "k", "source": "Hi", "target": "Salut", "moses": "M"}),
		},
	}

	tbl := Normalize(resp, translation.XMLFile("f.xml"), decoder.Moses)

	want := []template.HTML{"k", "Hi", "Salut"}
	if !reflect.DeepEqual(tbl.Rows[0], want) {
		t.Errorf("expected %v, got %v", want, tbl.Rows[0])
	}
}

func TestNormalize_NilResponse(t *testing.T) {
	tbl := Normalize(nil, translation.Strings([]string{"x"}), decoder.Moses)
	if tbl.Len() != 0 {
		t.Errorf("expected empty table, got %d rows", tbl.Len())
	}
}

func TestFormatDebug(t *testing.T) {
	in := `Translating: hello\n\tscore=<0.5>\nDone`
	got := FormatDebug(in)

	want := template.HTML("Translating: hello&#13;&#10;    score=&lt;0.5&gt;&#13;&#10;Done")
	if got != want {
		t.Errorf("FormatDebug() = %q, want %q", got, want)
	}
}

func TestExpandEscapes_Idempotent(t *testing.T) {
	inputs := []string{
		`a\nb\tc`,
		`\\n`,
		`\\t\n`,
		`no escapes here`,
		`trailing backslash \`,
	}

	for _, in := range inputs {
		once := ExpandEscapes(in)
		twice := ExpandEscapes(once)
		if once != twice {
			t.Errorf("ExpandEscapes not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

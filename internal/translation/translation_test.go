package translation

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/wanze/AppTranslator/internal/decoder"
)

func TestBuild_StringsSingleBackend(t *testing.T) {
	sel := decoder.DefaultSelection()
	sel.Kind = decoder.Solr

	endpoint, req, err := Build(sel, LanguagePair{Source: "en", Target: "fr"}, Strings([]string{"Hello", "World"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if endpoint != EndpointTranslateStrings {
		t.Errorf("expected endpoint %q, got %q", EndpointTranslateStrings, endpoint)
	}
	if req.LangFrom != "en" || req.LangTo != "fr" {
		t.Errorf("unexpected languages: %s -> %s", req.LangFrom, req.LangTo)
	}
	if len(req.Strings) != 2 || req.Strings[0] != "Hello" {
		t.Errorf("unexpected strings: %v", req.Strings)
	}
	if req.XMLFilename != "" {
		t.Errorf("expected no xml filename, got %q", req.XMLFilename)
	}
	if _, ok := req.DecoderSettings.(decoder.SolrSettings); !ok {
		t.Errorf("expected solr settings, got %T", req.DecoderSettings)
	}
}

func TestBuild_XMLCompare(t *testing.T) {
	sel := decoder.DefaultSelection()
	sel.Kind = decoder.Compare

	endpoint, req, err := Build(sel, LanguagePair{Source: "de", Target: "en"}, XMLFile("upload_42.xml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if endpoint != EndpointTranslateXML {
		t.Errorf("expected endpoint %q, got %q", EndpointTranslateXML, endpoint)
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if string(body["xml_filename"]) != `"upload_42.xml"` {
		t.Errorf("unexpected xml_filename: %s", body["xml_filename"])
	}
	if _, ok := body["strings"]; ok {
		t.Error("strings must be omitted for xml input")
	}

	var settings map[string]json.RawMessage
	if err := json.Unmarshal(body["decoder_settings"], &settings); err != nil {
		t.Fatalf("decoder_settings is not an object: %v", err)
	}
	for _, key := range []string{"moses", "solr", "lamtram", "tensorflow"} {
		if _, ok := settings[key]; !ok {
			t.Errorf("compare settings missing %q", key)
		}
	}
}

func TestBuild_Invalid(t *testing.T) {
	sel := decoder.DefaultSelection()

	tests := []struct {
		name    string
		sel     decoder.Selection
		langs   LanguagePair
		payload Payload
	}{
		{"unknown decoder", decoder.Selection{Kind: "google"}, DefaultLanguagePair(), Strings([]string{"a"})},
		{"unsupported language", sel, LanguagePair{Source: "en", Target: "ru"}, Strings([]string{"a"})},
		{"malformed language", sel, LanguagePair{Source: "e_n!", Target: "fr"}, Strings([]string{"a"})},
		{"unresolved auto", sel, LanguagePair{Source: AutoDetect, Target: "fr"}, Strings([]string{"a"})},
		{"no strings", sel, DefaultLanguagePair(), Strings(nil)},
		{"no file", sel, DefaultLanguagePair(), XMLFile("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Build(tt.sel, tt.langs, tt.payload)
			if err == nil {
				t.Fatal("expected error")
			}
			if KindOf(err) != KindInvalidRequest {
				t.Errorf("expected invalid request kind, got %s", KindOf(err))
			}
		})
	}
}

func TestValidateLanguage_Canonical(t *testing.T) {
	got, err := ValidateLanguage("fr-CH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fr" {
		t.Errorf("expected fr, got %q", got)
	}
}

func TestPayload_ZeroValueIsStringMode(t *testing.T) {
	var p Payload
	if p.Mode() != ModeString {
		t.Errorf("expected string mode, got %q", p.Mode())
	}
	if _, ok := p.Line(0); ok {
		t.Error("expected no lines")
	}
}

func TestPayload_StringsCopiesInput(t *testing.T) {
	lines := []string{"a", "b"}
	p := Strings(lines)
	lines[0] = "changed"

	if got, _ := p.Line(0); got != "a" {
		t.Errorf("payload shares caller slice: got %q", got)
	}
}

func TestResponse_UnmarshalMixedRecords(t *testing.T) {
	body := `{
		"translations": [
			"Bonjour",
			{"key": "k1", "source": "Hello", "moses": "Salut", "solr": null, "tensorflow": 3},
			null
		],
		"debug": "line1\\nline2"
	}`

	var resp Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(resp.Translations) != 3 {
		t.Fatalf("expected 3 records, got %d", len(resp.Translations))
	}
	if resp.Translations[0].IsKeyed() || resp.Translations[0].Text != "Bonjour" {
		t.Errorf("unexpected first record: %+v", resp.Translations[0])
	}

	keyed := resp.Translations[1]
	if !keyed.IsKeyed() {
		t.Fatal("expected keyed record")
	}
	if keyed.Fields["moses"] != "Salut" {
		t.Errorf("expected moses Salut, got %q", keyed.Fields["moses"])
	}
	if v, ok := keyed.Fields["solr"]; !ok || v != "" {
		t.Errorf("expected empty solr value, got %q (present=%v)", v, ok)
	}
	if keyed.Fields["tensorflow"] != "3" {
		t.Errorf("expected numeric value kept as text, got %q", keyed.Fields["tensorflow"])
	}
	if resp.Translations[2].IsKeyed() || resp.Translations[2].Text != "" {
		t.Errorf("expected empty text record for null, got %+v", resp.Translations[2])
	}
	if resp.Debug != `line1\nline2` {
		t.Errorf("unexpected debug: %q", resp.Debug)
	}
}

func TestResponse_UnmarshalRejectsArrays(t *testing.T) {
	var resp Response
	err := json.Unmarshal([]byte(`{"translations": [[1, 2]]}`), &resp)
	if err == nil {
		t.Error("expected error for array record")
	}
}

func TestTermCount_Unmarshal(t *testing.T) {
	var terms []TermCount
	body := `[{"term": "house", "count": 12}, {"value": "maison", "count": "7"}, {"term": " tree ", "count": 2.0}]`
	if err := json.Unmarshal([]byte(body), &terms); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	want := []TermCount{{"house", 12}, {"maison", 7}, {"tree", 2}}
	if len(terms) != len(want) {
		t.Fatalf("expected %d terms, got %d", len(want), len(terms))
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("term %d: expected %+v, got %+v", i, want[i], terms[i])
		}
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(nil) != KindNone {
		t.Error("expected none for nil")
	}
	if KindOf(errors.New("boom")) != KindTransport {
		t.Error("expected transport for plain errors")
	}

	wrapped := fmt.Errorf("outer: %w", &Error{Kind: KindStatus, Op: "translate", Status: 502, Err: errors.New("bad gateway")})
	if KindOf(wrapped) != KindStatus {
		t.Errorf("expected status kind, got %s", KindOf(wrapped))
	}
}

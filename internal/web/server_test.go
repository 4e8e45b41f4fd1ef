package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/wanze/AppTranslator/internal/analysis"
	"github.com/wanze/AppTranslator/internal/app"
	"github.com/wanze/AppTranslator/internal/client"
	"github.com/wanze/AppTranslator/internal/translation"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeService mimics the translation service endpoints.
type fakeService struct {
	failTranslate atomic.Bool
	lastRequest   atomic.Value
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/translateStrings", "/translateXML":
		if f.failTranslate.Load() {
			http.Error(w, "decoder unavailable", http.StatusServiceUnavailable)
			return
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		f.lastRequest.Store(req)

		if r.URL.Path == "/translateXML" {
			json.NewEncoder(w).Encode(map[string]any{
				"translations": []map[string]string{{"key": "app_name", "source": "Name", "target": "Nom"}},
				"debug":        "",
			})
			return
		}
		var out []string
		for _, s := range req["strings"].([]any) {
			out = append(out, "<"+strings.ToUpper(s.(string))+">")
		}
		json.NewEncoder(w).Encode(map[string]any{"translations": out, "debug": `line one\nline two`})
	case "/upload":
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		io.Copy(io.Discard, file)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "filename": "42_" + header.Filename})
	case "/getTopTerms":
		w.Write([]byte(`[{"value": "file", "count": 10}, {"value": "edit", "count": 5}]`))
	case "/getTermVariations":
		w.Write([]byte(`[{"term": "fichier", "count": 7}]`))
	default:
		http.NotFound(w, r)
	}
}

func newTestServer(t *testing.T) (*Server, *fakeService) {
	t.Helper()
	fake := &fakeService{}
	api := httptest.NewServer(fake)
	t.Cleanup(api.Close)

	logger := quietLogger()
	c := client.New(api.URL, client.WithHTTPClient(api.Client()), client.WithLogger(logger))
	s, err := New(app.New(c, app.WithLogger(logger)), analysis.New(c, logger), logger)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return s, fake
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, s, req)
}

func TestServer_RootRedirects(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/decode" {
		t.Errorf("unexpected response %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestServer_DecodePage(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/decode", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`action="/decode/settings"`, `<option value="compare"`, `name="file"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
}

func TestServer_TranslateFlow(t *testing.T) {
	s, fake := newTestServer(t)

	rec := postForm(t, s, "/decode/settings", url.Values{
		"decoder": {"moses"},
		"source":  {"en"},
		"target":  {"de"},
		"mode":    {"string"},
		"strings": {"hello\r\nworld\n\n"},
		"next":    {"2"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unexpected settings status %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/decode", nil))
	if !strings.Contains(rec.Body.String(), `name="moses.stack"`) {
		t.Error("expected moses settings on step 2")
	}
	if !strings.Contains(rec.Body.String(), "<h1>Moses</h1>") {
		t.Error("expected rendered decoder help on step 2")
	}

	rec = postForm(t, s, "/decode/settings", url.Values{"moses.stack": {"50"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unexpected settings status %d", rec.Code)
	}

	rec = postForm(t, s, "/decode/translate", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unexpected translate status %d", rec.Code)
	}

	req := fake.lastRequest.Load().(map[string]any)
	if req["lang_to"] != "de" {
		t.Errorf("unexpected request %v", req)
	}
	settings := req["decoder_settings"].(map[string]any)
	if settings["stack"] != float64(50) {
		t.Errorf("settings not applied: %v", settings)
	}

	body := do(t, s, httptest.NewRequest(http.MethodGet, "/decode", nil)).Body.String()
	for _, want := range []string{"<td>hello</td>", "<td>&lt;HELLO&gt;</td>", "<td>&lt;WORLD&gt;</td>", "line one&#13;&#10;line two"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in results page", want)
		}
	}
	if strings.Contains(body, "<HELLO>") {
		t.Error("translation output was not escaped")
	}
}

func TestServer_TranslateFailureKeepsResults(t *testing.T) {
	s, fake := newTestServer(t)

	postForm(t, s, "/decode/settings", url.Values{"strings": {"hello"}, "next": {"2"}})
	postForm(t, s, "/decode/translate", nil)

	fake.failTranslate.Store(true)
	postForm(t, s, "/decode/translate", nil)

	body := do(t, s, httptest.NewRequest(http.MethodGet, "/decode", nil)).Body.String()
	if !strings.Contains(body, "<td>&lt;HELLO&gt;</td>") {
		t.Error("previous results lost after failure")
	}
	if !strings.Contains(body, `id="request-error"`) || !strings.Contains(body, "decoder unavailable") {
		t.Error("expected error to be shown")
	}

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/decode/progress", nil))
	var progress progressResponse
	if err := json.NewDecoder(rec.Body).Decode(&progress); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if progress.IsLoading || progress.ErrorKind != translation.KindStatus.String() {
		t.Errorf("unexpected progress %+v", progress)
	}
}

func TestServer_InvalidSettings(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"unknown decoder", url.Values{"decoder": {"google"}}},
		{"unsupported language", url.Values{"target": {"ja"}}},
		{"xml without upload", url.Values{"mode": {"xml"}}},
		{"non numeric setting", url.Values{"solr.rows": {"many"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(t, s, "/decode/settings", tt.form)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestServer_UploadAndTranslateXML(t *testing.T) {
	s, fake := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "strings.xml")
	part.Write([]byte(`<resources><string name="app_name">Name</string></resources>`))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/decode/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(t, s, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unexpected upload status %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/decode/progress", nil))
	var progress progressResponse
	json.NewDecoder(rec.Body).Decode(&progress)
	if progress.Progress != 100 || progress.Mode != "xml" || progress.Filename != "42_strings.xml" {
		t.Errorf("unexpected progress %+v", progress)
	}

	postForm(t, s, "/decode/translate", nil)
	sent := fake.lastRequest.Load().(map[string]any)
	if sent["xml_filename"] != "42_strings.xml" {
		t.Errorf("unexpected request %v", sent)
	}

	body := do(t, s, httptest.NewRequest(http.MethodGet, "/decode", nil)).Body.String()
	if !strings.Contains(body, "<th>Key</th>") || !strings.Contains(body, "<td>app_name</td><td>Name</td><td>Nom</td>") {
		t.Errorf("unexpected xml results page:\n%s", body)
	}
}

func TestServer_StepLocked(t *testing.T) {
	s, _ := newTestServer(t)

	body := do(t, s, httptest.NewRequest(http.MethodGet, "/decode?step=3", nil)).Body.String()
	if !strings.Contains(body, `action="/decode/settings"`) {
		t.Error("unreached step should not be shown")
	}

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/decode?step=x", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid step, got %d", rec.Code)
	}
}

func TestServer_Analysis(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/analysis/top-terms?lang=en", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<td>file</td><td>10</td>`) || !strings.Contains(body, "width: 50%") {
		t.Errorf("unexpected top terms page:\n%s", body)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/analysis/variations?source=en&target=fr&term=file", nil))
	if !strings.Contains(rec.Body.String(), "<td>fichier</td><td>7</td>") {
		t.Errorf("unexpected variations page:\n%s", rec.Body.String())
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/analysis/variations?source=en&target=fr&term=", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty term, got %d", rec.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	s, _ := newTestServer(t)

	do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "apptranslator_http_requests_total") {
		t.Errorf("expected http metrics, got %d", rec.Code)
	}
}

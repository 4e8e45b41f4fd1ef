package translation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one unit of a translate response: either a plain output string
// or a mapping from field names (key, source, target, moses, tensorflow,
// solr) to strings.
type Record struct {
	Text   string
	Fields map[string]string
}

// IsKeyed reports whether the record is a field mapping.
func (r Record) IsKeyed() bool {
	return r.Fields != nil
}

// TextRecord returns a plain record.
func TextRecord(s string) Record {
	return Record{Text: s}
}

// KeyedRecord returns a record backed by fields.
func KeyedRecord(fields map[string]string) Record {
	if fields == nil {
		fields = map[string]string{}
	}
	return Record{Fields: fields}
}

func (r *Record) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		return fmt.Errorf("empty translation record")
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = TextRecord(s)
		return nil
	case data[0] == '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		fields := make(map[string]string, len(raw))
		for k, v := range raw {
			fields[k] = scalarString(v)
		}
		*r = KeyedRecord(fields)
		return nil
	case bytes.Equal(data, []byte("null")):
		*r = TextRecord("")
		return nil
	}
	return fmt.Errorf("unexpected translation record %s", truncate(string(data), 40))
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.IsKeyed() {
		return json.Marshal(r.Fields)
	}
	return json.Marshal(r.Text)
}

// scalarString renders a JSON value as text. Null becomes empty; strings
// are unquoted; anything else keeps its JSON form.
func scalarString(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Response is the reply of both translate endpoints.
type Response struct {
	Translations []Record `json:"translations"`
	Debug        string   `json:"debug"`
}

// TermCount is one entry of the top-terms and term-variations listings.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// UnmarshalJSON accepts the term under either "term" or "value".
func (t *TermCount) UnmarshalJSON(data []byte) error {
	var raw struct {
		Term  *string         `json:"term"`
		Value *string         `json:"value"`
		Count json.RawMessage `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Term != nil:
		t.Term = *raw.Term
	case raw.Value != nil:
		t.Term = *raw.Value
	default:
		return fmt.Errorf("term entry without term: %s", truncate(string(data), 40))
	}

	t.Count = 0
	if len(raw.Count) > 0 && !bytes.Equal(raw.Count, []byte("null")) {
		var n json.Number
		if err := json.Unmarshal(bytes.Trim(raw.Count, `"`), &n); err != nil {
			return fmt.Errorf("invalid count for %q: %w", t.Term, err)
		}
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return fmt.Errorf("invalid count for %q: %w", t.Term, err)
			}
			i = int64(f)
		}
		t.Count = int(i)
	}
	t.Term = strings.TrimSpace(t.Term)
	return nil
}

package cmd

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wanze/AppTranslator/internal/table"
)

func TestPrintTable(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"Input", "Output"},
		Rows: [][]template.HTML{
			{"Tom &amp; Jerry", "Tom &amp; Jerry"},
			{"hello", table.Placeholder},
		},
	}

	var buf bytes.Buffer
	if err := printTable(&buf, tbl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "INPUT") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "Tom & Jerry") {
		t.Errorf("cell not unescaped: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "-") {
		t.Errorf("placeholder not shown as dash: %q", lines[2])
	}
}

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("first\r\nsecond\n\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	lines, err := readLines(path, []string{"third", "  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"first", "second", "third"}) {
		t.Errorf("unexpected lines %q", lines)
	}

	if _, err := readLines("", nil); err == nil {
		t.Error("expected error for empty input")
	}
}

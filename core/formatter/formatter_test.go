package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func testView() View {
	return View{
		Name:    "kinds",
		Columns: []string{"id", "label", "role"},
		Hidden:  []string{"fields"},
	}
}

func testRecords() []map[string]any {
	return []map[string]any{
		{"id": "table_wrapper", "label": "Table Wrapper", "role": "root", "fields": []string{"bg"}},
		{"id": "cta_button", "label": "CTA Button", "role": "leaf", "fields": []string{"title", "alias"}},
	}
}

// ===========================================
// Registry Tests
// ===========================================

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	got := strings.Join(r.List(), ",")
	if got != "json,table,yaml" {
		t.Errorf("List() = %s, want json,table,yaml", got)
	}
	if r.Default().Name() != "table" {
		t.Errorf("Default() = %s, want table", r.Default().Name())
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	err := r.Register(NewTableFormatter())
	if err == nil {
		t.Fatal("expected error when registering duplicate formatter")
	}
	if !strings.Contains(err.Error(), "already registered") {
		t.Errorf("error message should mention 'already registered', got: %v", err)
	}
}

func TestRegistry_SetDefault(t *testing.T) {
	r := NewRegistry()
	if err := r.SetDefault("json"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if r.Default().Name() != "json" {
		t.Errorf("Default() = %s, want json", r.Default().Name())
	}
	if err := r.SetDefault("csv"); err == nil {
		t.Error("SetDefault should fail for unregistered formatter")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "table", false},
		{"yaml", "yaml", false},
		{"xml", "", true},
	}

	r := NewRegistry()
	for _, tt := range tests {
		f, err := r.Lookup(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Lookup(%q) expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("Lookup(%q) error: %v", tt.name, err)
			continue
		}
		if f.Name() != tt.want {
			t.Errorf("Lookup(%q) = %s, want %s", tt.name, f.Name(), tt.want)
		}
	}
}

func TestGlobalFunctions(t *testing.T) {
	if _, ok := Get("json"); !ok {
		t.Error("json formatter not in default registry")
	}
	if _, err := Lookup("table"); err != nil {
		t.Errorf("Lookup(table) error: %v", err)
	}
	if len(List()) != 3 {
		t.Errorf("List() = %v, want 3 formatters", List())
	}
}

// ===========================================
// Table Formatter Tests
// ===========================================

func TestTableFormatter_FormatList_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableFormatter().FormatList(&buf, testView(), nil, FormatOptions{}); err != nil {
		t.Fatalf("FormatList failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No records found.") {
		t.Errorf("output = %q, want empty message", buf.String())
	}
}

func TestTableFormatter_FormatList(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableFormatter().FormatList(&buf, testView(), testRecords(), FormatOptions{}); err != nil {
		t.Fatalf("FormatList failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	for _, h := range []string{"ID", "LABEL", "ROLE"} {
		if !strings.Contains(lines[0], h) {
			t.Errorf("header %q missing from %q", h, lines[0])
		}
	}
	if strings.Contains(lines[0], "FIELDS") {
		t.Error("hidden column should not be rendered by default")
	}
	if !strings.Contains(lines[2], "cta_button") {
		t.Errorf("row order wrong: %q", lines[2])
	}
}

func TestTableFormatter_FormatList_Columns(t *testing.T) {
	var buf bytes.Buffer
	opts := FormatOptions{Columns: []string{"id", "fields"}, NoHeader: true}
	if err := NewTableFormatter().FormatList(&buf, testView(), testRecords(), opts); err != nil {
		t.Fatalf("FormatList failed: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "ID") {
		t.Error("header printed with NoHeader")
	}
	if !strings.Contains(out, "title,alias") {
		t.Errorf("string slice not joined: %q", out)
	}
}

func TestTableFormatter_FormatRecord(t *testing.T) {
	var buf bytes.Buffer
	rec := map[string]any{"id": "mod_1", "label": "", "role": "root"}
	if err := NewTableFormatter().FormatRecord(&buf, testView(), rec, FormatOptions{}); err != nil {
		t.Fatalf("FormatRecord failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Id:") || !strings.Contains(out, "mod_1") {
		t.Errorf("output missing id: %q", out)
	}
	if !strings.Contains(out, "Label:") || !strings.Contains(out, "-") {
		t.Errorf("empty value should render as '-': %q", out)
	}

	buf.Reset()
	_ = NewTableFormatter().FormatRecord(&buf, testView(), nil, FormatOptions{})
	if !strings.Contains(buf.String(), "Record not found.") {
		t.Errorf("nil record output = %q", buf.String())
	}
}

func TestTableFormatter_FormatValue(t *testing.T) {
	f := NewTableFormatter()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		val      any
		maxWidth int
		want     string
	}{
		{"nil", nil, 0, "-"},
		{"empty string", "", 0, "-"},
		{"bool true", true, 0, "yes"},
		{"bool false", false, 0, "no"},
		{"int", 42, 0, "42"},
		{"whole float", float64(7), 0, "7"},
		{"fraction", 1.5, 0, "1.50"},
		{"time", ts, 0, "2026-03-01T12:00:00Z"},
		{"multiline", "a\nb", 0, "a b"},
		{"truncated", "abcdefghij", 8, "abcde..."},
		{"map", map[string]int{"a": 1}, 0, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.formatValue(tt.val, tt.maxWidth); got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.val, got, tt.want)
			}
		})
	}
}

func TestTableFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	_ = NewTableFormatter().FormatError(&buf, errors.New("boom"))
	if buf.String() != "Error: boom\n" {
		t.Errorf("FormatError = %q", buf.String())
	}
}

// ===========================================
// JSON Formatter Tests
// ===========================================

func TestJSONFormatter_FormatList(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter().FormatList(&buf, testView(), testRecords(), FormatOptions{Compact: true}); err != nil {
		t.Fatalf("FormatList failed: %v", err)
	}

	var out struct {
		Kind  string           `json:"kind"`
		Count int              `json:"count"`
		Data  []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Kind != "kinds" || out.Count != 2 {
		t.Errorf("kind/count = %s/%d, want kinds/2", out.Kind, out.Count)
	}
	if _, ok := out.Data[0]["fields"]; ok {
		t.Error("hidden field present in JSON output")
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Error("compact output should be a single line")
	}
}

func TestJSONFormatter_FormatRecord_KeepsHTML(t *testing.T) {
	var buf bytes.Buffer
	rec := map[string]any{"html": "<table>"}
	if err := NewJSONFormatter().FormatRecord(&buf, View{Name: "export"}, rec, FormatOptions{}); err != nil {
		t.Fatalf("FormatRecord failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<table>") {
		t.Errorf("HTML escaped in output: %s", buf.String())
	}
}

func TestJSONFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	_ = NewJSONFormatter().FormatError(&buf, errors.New("nope"))
	if !strings.Contains(buf.String(), `"error": "nope"`) {
		t.Errorf("FormatError = %s", buf.String())
	}
}

// ===========================================
// YAML Formatter Tests
// ===========================================

func TestYAMLFormatter_FormatList(t *testing.T) {
	var buf bytes.Buffer
	opts := FormatOptions{Columns: []string{"id"}}
	if err := NewYAMLFormatter().FormatList(&buf, testView(), testRecords(), opts); err != nil {
		t.Fatalf("FormatList failed: %v", err)
	}

	var out struct {
		Kind  string              `yaml:"kind"`
		Count int                 `yaml:"count"`
		Data  []map[string]string `yaml:"data"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if out.Count != 2 || len(out.Data[0]) != 1 || out.Data[0]["id"] != "table_wrapper" {
		t.Errorf("unexpected YAML output: %+v", out)
	}
}

func TestYAMLFormatter_FormatRecordNil(t *testing.T) {
	var buf bytes.Buffer
	if err := NewYAMLFormatter().FormatRecord(&buf, testView(), nil, FormatOptions{}); err != nil {
		t.Fatalf("FormatRecord failed: %v", err)
	}
	if !strings.Contains(buf.String(), "data: null") {
		t.Errorf("nil record YAML = %q", buf.String())
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testRecipe = `name: spring
steps:
  - op: insert_root
    ref: table
    kind: table_wrapper
  - op: insert_nested
    ref: switch
    kind: ampscript_country
    parent: table
  - op: insert_nested
    ref: us
    kind: cta_button
    parent: switch
    bucket: US
  - op: set
    target: us
    field: title
    value: Shop US
`

// run executes the root command with a config file in dir.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dir, "mailcraft.yaml")}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "database:\n  dsn: " + filepath.Join(dir, "exports.db") + "\nlogging:\n  level: error\n"
	if err := os.WriteFile(filepath.Join(dir, "mailcraft.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "spring.yaml"), []byte(testRecipe), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestBuild_PrintsHTML(t *testing.T) {
	dir := setup(t)
	out, _, err := run(t, dir, "build", filepath.Join(dir, "spring.yaml"), "--archive=false", "--modules=false", "--out=")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, want := range []string{`%%[ IF @Country == "US" THEN ]%%`, "shop_us_alias", "%%[ ENDIF ]%%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBuild_ArchiveAndList(t *testing.T) {
	dir := setup(t)
	recipe := filepath.Join(dir, "spring.yaml")

	_, stderr, err := run(t, dir, "build", recipe, "--archive", "--modules=false", "--out", filepath.Join(dir, "out.html"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(stderr, "archived (document spring)") {
		t.Errorf("stderr = %q, want archived", stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "out.html")); err != nil {
		t.Errorf("out.html not written: %v", err)
	}

	_, stderr, err = run(t, dir, "build", recipe, "--archive", "--modules=false", "--out", filepath.Join(dir, "out.html"))
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if !strings.Contains(stderr, "unchanged") {
		t.Errorf("stderr = %q, want unchanged", stderr)
	}

	out, _, err := run(t, dir, "-o", "json", "exports", "list", "spring")
	if err != nil {
		t.Fatalf("exports list: %v", err)
	}
	var doc struct {
		Count int              `json:"count"`
		Data  []map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if doc.Count != 1 || doc.Data[0]["document"] != "spring" {
		t.Errorf("exports = %+v, want one export of spring", doc)
	}
	if _, ok := doc.Data[0]["html"]; ok {
		t.Error("html should be hidden in listings")
	}
}

func TestBuild_Modules(t *testing.T) {
	dir := setup(t)
	out, _, err := run(t, dir, "-o", "table", "build", filepath.Join(dir, "spring.yaml"), "--archive=false", "--modules", "--out=")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, "ampscript_country") || !strings.Contains(out, "mod_3") {
		t.Errorf("module listing missing entries:\n%s", out)
	}
}

func TestBuild_InvalidRecipe(t *testing.T) {
	dir := setup(t)
	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("steps:\n  - op: insert_root\n    kind: cta_button\n"), 0o644)

	if _, _, err := run(t, dir, "build", bad, "--archive=false", "--modules=false", "--out="); err == nil {
		t.Fatal("expected placement error")
	}

	out, _, err := run(t, dir, "validate", filepath.Join(dir, "spring.yaml"), bad)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 recipes invalid") {
		t.Errorf("validate err = %v, want one invalid recipe", err)
	}
	if !strings.Contains(out, "Config valid") {
		t.Errorf("validate output = %q", out)
	}
}

func TestKinds(t *testing.T) {
	dir := setup(t)
	out, _, err := run(t, dir, "-o", "yaml", "kinds")
	if err != nil {
		t.Fatalf("kinds: %v", err)
	}
	for _, want := range []string{"table_wrapper", "cta_button", "title->alias"} {
		if !strings.Contains(out, want) {
			t.Errorf("kinds output missing %q", want)
		}
	}

	if _, _, err := run(t, dir, "-o", "xml", "kinds"); err == nil {
		t.Error("expected error for unknown output format")
	}
}

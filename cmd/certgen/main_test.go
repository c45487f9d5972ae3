package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const completeYAML = `fullName: Jane Ann Doe
gender: Female
dateOfBirth: "2024-03-07"
placeOfBirth: Springfield General
motherName: Mary Doe
registrationDate: "2024-03-10"
`

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "certgen version "+Version) {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestRenderCommandWritesText(t *testing.T) {
	values := writeTemp(t, "values.yaml", completeYAML)
	out, _, err := execute(t, "render", "--log-level", "error", "-f", values, "-r", "text")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"CERTIFICATE OF LIVE BIRTH", "Jane Ann Doe", "March 7, 2024", "BC20240307"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderCommandWritesFile(t *testing.T) {
	values := writeTemp(t, "values.yaml", completeYAML)
	output := filepath.Join(t.TempDir(), "certificate.html")
	_, stderr, err := execute(t, "render", "--log-level", "error", "-f", values, "-o", output)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(stderr, "Certificate written to "+output) {
		t.Fatalf("unexpected stderr %q", stderr)
	}
	body, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(body), "<html") || !strings.Contains(string(body), "Jane Ann Doe") {
		t.Fatalf("expected standalone certificate page, got:\n%s", body)
	}
}

func TestRenderCommandListsMissingFields(t *testing.T) {
	values := writeTemp(t, "values.yaml", "fullName: Jane Ann Doe\n")
	_, _, err := execute(t, "render", "--log-level", "error", "-f", values, "-r", "text")
	if err == nil {
		t.Fatalf("expected error for incomplete values")
	}
	for _, want := range []string{"Please fill in all required fields.", "Sex is required.", "Mother's Name is required."} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in error:\n%v", want, err)
		}
	}
	if strings.Contains(err.Error(), "Date of Registration") {
		t.Fatalf("registration date defaults to today and must not be reported: %v", err)
	}
}

func TestLintCommandReportsViolations(t *testing.T) {
	doc := writeTemp(t, "broken.json", `{
  "openapi": "3.0.3",
  "info": {"title": "t", "version": "1"},
  "paths": {},
  "components": {"schemas": {"Form": {
    "type": "object",
    "properties": {
      "a": {"type": "string", "title": "A", "x-certgen-widget": "select"}
    }
  }}}
}`)
	_, stderr, err := execute(t, "lint", "--component", "Form", doc)
	if err == nil || !strings.Contains(err.Error(), "1 lint violation(s)") {
		t.Fatalf("expected one violation, got %v", err)
	}
	if !strings.Contains(stderr, doc+`: components > schemas > Form > properties > a -> unsupported extension "x-certgen-widget"`) {
		t.Fatalf("unexpected lint output:\n%s", stderr)
	}
}

func TestLintCommandAcceptsBundledCatalog(t *testing.T) {
	if _, _, err := execute(t, "lint", filepath.Join("..", "..", "pkg", "schema", "catalog", "birth-certificate.yaml")); err != nil {
		t.Fatalf("lint bundled catalog: %v", err)
	}
}

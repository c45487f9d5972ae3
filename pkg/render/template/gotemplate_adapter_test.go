package template_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-certgen/pkg/render/template/gotemplate"
	"github.com/goliatone/go-certgen/pkg/testsupport"
)

//go:embed testdata/templates/*.tmpl
var embeddedTemplates embed.FS

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "hello.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"authority": "Department of Vital Records"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-global", nil, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-global.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-filter.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_PlaceholderFilter(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("placeholders", map[string]any{"name": "  Ada ", "time": ""})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "placeholders.golden"))
	if result != want {
		t.Fatalf("placeholder mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestGoTemplateEngine_RenderString(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.Render("{{ cert.title|upper }}", map[string]any{
		"cert": map[string]any{"title": "Certificate of Live Birth"},
	})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if result != "CERTIFICATE OF LIVE BIRTH" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_RequiresTemplatesFS(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without a templates filesystem")
	}
}

func TestGoTemplateEngine_ExtensionIsNormalised(t *testing.T) {
	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS), gotemplate.WithExtension("tmpl"))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "hello.golden"))
	for _, name := range []string{"hello", "hello.tmpl"} {
		got, err := engine.RenderTemplate(name, map[string]any{"name": "Ada"})
		if err != nil {
			t.Fatalf("render %s: %v", name, err)
		}
		if got != want {
			t.Fatalf("render %s mismatch\nwant: %q\n got: %q", name, want, got)
		}
	}
}

func TestGoTemplateEngine_StructsUseJSONTags(t *testing.T) {
	engine := newEngine(t)

	type field struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}
	data := struct {
		Fields []field `json:"fields"`
	}{Fields: []field{{Label: "Full Name", Value: "Jane Doe"}, {Label: "Sex", Value: ""}}}

	got, err := engine.RenderString("{% for f in fields %}{{ f.label }}={{ f.value|placeholder }};{% endfor %}", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(got, "Full Name=Jane Doe;Sex=") || strings.HasSuffix(got, "Sex=;") {
		t.Fatalf("unexpected output %q", got)
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

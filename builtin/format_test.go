package builtin_test

import (
	"strings"
	"testing"

	"github.com/midbel/webpp/builtin"
	"github.com/midbel/webpp/context"
	"github.com/midbel/webpp/fragment"
	"github.com/midbel/webpp/registry"
	"github.com/midbel/webpp/render"
	"github.com/midbel/webpp/value"
	"github.com/midbel/webpp/xml"
)

func newRenderer() (*render.Renderer, *fragment.Store) {
	store := fragment.NewStore("")
	reg := registry.New()
	builtin.Register(reg)
	return render.New(reg, store), store
}

func mustRender(t *testing.T, src string, ctx *context.RenderContext) (string, error) {
	t.Helper()
	rnd, store := newRenderer()
	frag, err := store.Put("page", src)
	if err != nil {
		t.Fatalf("parsing fragment: %s", err)
	}
	doc, err := rnd.Render(frag, ctx, nil)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	w := xml.NewWriter(&buf)
	w.WriterOptions = xml.OptionCompact | xml.OptionNoProlog
	if err := w.Write(doc); err != nil {
		t.Fatalf("unexpected write error: %s", err)
	}
	return buf.String(), nil
}

func TestFormatOutputInterpolatesVariable(t *testing.T) {
	ctx := context.NewRenderContext()
	ctx.Get("name").CreateValue(value.String("World"))

	src := `<w:root xmlns:w="webpp://xml" xmlns:f="webpp://format"><f:span>Hello #{name}</f:span></w:root>`
	out, err := mustRender(t, src, ctx)
	if err != nil {
		t.Fatalf("unexpected render error: %s", err)
	}
	if !strings.Contains(out, "<span>Hello World</span>") {
		t.Errorf("expected interpolated span, got: %s", out)
	}
}

func TestFormatWithFormatVerb(t *testing.T) {
	ctx := context.NewRenderContext()
	ctx.Get("age").CreateValue(value.Int(7))

	src := `<w:root xmlns:w="webpp://xml" xmlns:f="webpp://format"><f:span>#{age|%03d}</f:span></w:root>`
	out, err := mustRender(t, src, ctx)
	if err != nil {
		t.Fatalf("unexpected render error: %s", err)
	}
	if !strings.Contains(out, "<span>007</span>") {
		t.Errorf("expected formatted age, got: %s", out)
	}
}

func TestFormatUnterminatedTokenFails(t *testing.T) {
	ctx := context.NewRenderContext()
	src := `<w:root xmlns:w="webpp://xml" xmlns:f="webpp://format"><f:span>#{name</f:span></w:root>`
	_, err := mustRender(t, src, ctx)
	if err == nil || !strings.Contains(err.Error(), "#{ not terminated by }") {
		t.Fatalf("expected unterminated token error, got: %v", err)
	}
}

func TestFormatEmptyFormatStringFails(t *testing.T) {
	ctx := context.NewRenderContext()
	ctx.Get("name").CreateValue(value.String("World"))
	src := `<w:root xmlns:w="webpp://xml" xmlns:f="webpp://format"><f:span>#{name|}</f:span></w:root>`
	_, err := mustRender(t, src, ctx)
	if err == nil || !strings.Contains(err.Error(), "empty format string") {
		t.Fatalf("expected empty format string error, got: %v", err)
	}
}

func TestFormatMissingVariableOutputFails(t *testing.T) {
	ctx := context.NewRenderContext()
	src := `<w:root xmlns:w="webpp://xml" xmlns:f="webpp://format"><f:span>#{missing}</f:span></w:root>`
	_, err := mustRender(t, src, ctx)
	if err == nil || !strings.Contains(err.Error(), "output: required variable 'missing' not found in render context") {
		t.Fatalf("expected missing-variable output error, got: %v", err)
	}
}

func TestFormatMissingVariableWithFormatFails(t *testing.T) {
	ctx := context.NewRenderContext()
	src := `<w:root xmlns:w="webpp://xml" xmlns:f="webpp://format"><f:span>#{missing|%d}</f:span></w:root>`
	_, err := mustRender(t, src, ctx)
	if err == nil || !strings.Contains(err.Error(), "format: required variable 'missing' not found in render context") {
		t.Fatalf("expected missing-variable format error, got: %v", err)
	}
}

func TestFormatTextSplicesTransparently(t *testing.T) {
	ctx := context.NewRenderContext()
	ctx.Get("name").CreateValue(value.String("World"))

	src := `<w:root xmlns:w="webpp://xml" xmlns:f="webpp://format">` +
		`<w:p>before <f:text>#{name}</f:text> after</w:p></w:root>`
	out, err := mustRender(t, src, ctx)
	if err != nil {
		t.Fatalf("unexpected render error: %s", err)
	}
	if !strings.Contains(out, "<p>before World after</p>") {
		t.Errorf("expected f:text spliced inline, got: %s", out)
	}
	if strings.Contains(out, "<text") || strings.Contains(out, "<f:") {
		t.Errorf("expected no trace of the f:text element itself, got: %s", out)
	}
}

func TestFormatElementChildFails(t *testing.T) {
	ctx := context.NewRenderContext()
	src := `<f:span xmlns:f="webpp://format" xmlns:w="webpp://xml"><w:inner/></f:span>`
	_, err := mustRender(t, src, ctx)
	if err == nil || !strings.Contains(err.Error(), "can contain only text, comment or cdata nodes") {
		t.Fatalf("expected element-child rejection, got: %v", err)
	}
}

func TestFormatAttributeInterpolatesOnPassThroughElement(t *testing.T) {
	ctx := context.NewRenderContext()
	ctx.Get("name").CreateValue(value.String("World"))

	src := `<w:div xmlns:w="webpp://xml" xmlns:f="webpp://format" f:title="Hello #{name}">x</w:div>`
	out, err := mustRender(t, src, ctx)
	if err != nil {
		t.Fatalf("unexpected render error: %s", err)
	}
	if !strings.Contains(out, `title="Hello World"`) {
		t.Errorf("expected interpolated title attribute without namespace prefix, got: %s", out)
	}
}

func TestFormatUnknownAttributeNamespaceFails(t *testing.T) {
	ctx := context.NewRenderContext()
	src := `<f:span xmlns:f="webpp://format" xmlns:x="webpp://bogus" x:title="hi">ok</f:span>`
	_, err := mustRender(t, src, ctx)
	if err == nil || !strings.Contains(err.Error(), "unknown attribute namespace") {
		t.Fatalf("expected unknown attribute namespace error, got: %v", err)
	}
}

package render_test

import (
	"strings"
	"testing"

	"github.com/midbel/webpp/context"
	"github.com/midbel/webpp/fragment"
	"github.com/midbel/webpp/registry"
	"github.com/midbel/webpp/render"
	"github.com/midbel/webpp/xml"
)

func writeCompact(t *testing.T, doc *xml.Document) string {
	t.Helper()
	var buf strings.Builder
	w := xml.NewWriter(&buf)
	w.WriterOptions = xml.OptionCompact | xml.OptionNoProlog
	if err := w.Write(doc); err != nil {
		t.Fatalf("unexpected write error: %s", err)
	}
	return buf.String()
}

func mustFragment(t *testing.T, store *fragment.Store, name, src string) *fragment.Fragment {
	t.Helper()
	frag, err := store.Put(name, src)
	if err != nil {
		t.Fatalf("parsing fragment %q: %s", name, err)
	}
	return frag
}

func mustRenderString(t *testing.T, rnd *render.Renderer, frag *fragment.Fragment, ctx *context.RenderContext, insertions map[string]render.ViewInsertion) string {
	t.Helper()
	doc, err := rnd.Render(frag, ctx, insertions)
	if err != nil {
		t.Fatalf("unexpected render error: %s", err)
	}
	return writeCompact(t, doc)
}

func TestPassThroughStripsXmlNamespaceAndCopiesChildren(t *testing.T) {
	store := fragment.NewStore("")
	frag := mustFragment(t, store, "page", `<w:root xmlns:w="webpp://xml"><w:child>text</w:child></w:root>`)

	rnd := render.New(registry.New(), store)
	out := mustRenderString(t, rnd, frag, context.NewRenderContext(), nil)

	if !strings.Contains(out, "<root><child>text</child></root>") {
		t.Errorf("expected namespace stripped from output, got: %s", out)
	}
}

func TestRepeatInnerReplaysChildrenIntoSameElement(t *testing.T) {
	store := fragment.NewStore("")
	frag := mustFragment(t, store, "page", `<w:root xmlns:w="webpp://xml" xmlns:c="webpp://control" c:repeat="inner" c:repeat-array="items" c:repeat-variable="item"><w:li>x</w:li></w:root>`)

	ctx := context.NewRenderContext()
	ctx.Get("items").CreateArray(context.NewList(3))

	rnd := render.New(registry.New(), store)
	out := mustRenderString(t, rnd, frag, ctx, nil)

	if got := strings.Count(out, "<li>x</li>"); got != 3 {
		t.Errorf("expected 3 repeated <li> children, got %d in %s", got, out)
	}
}

func TestRepeatOuterDuplicatesTheElementItself(t *testing.T) {
	store := fragment.NewStore("")
	frag := mustFragment(t, store, "page", `<w:root xmlns:w="webpp://xml" xmlns:c="webpp://control">`+
		`<w:item c:repeat="outer" c:repeat-array="items" c:repeat-variable="item">x</w:item>`+
		`<w:other/></w:root>`)

	ctx := context.NewRenderContext()
	ctx.Get("items").CreateArray(context.NewList(2))

	rnd := render.New(registry.New(), store)
	out := mustRenderString(t, rnd, frag, ctx, nil)

	if got := strings.Count(out, "<item>x</item>"); got != 2 {
		t.Errorf("expected 2 sibling <item> elements, got %d in %s", got, out)
	}
	if !strings.Contains(out, "<other/>") {
		t.Errorf("expected sibling <other/> to survive the outer repeat, got %s", out)
	}
}

func TestOuterRepeatOnRootFails(t *testing.T) {
	store := fragment.NewStore("")
	frag := mustFragment(t, store, "page", `<w:root xmlns:w="webpp://xml" xmlns:c="webpp://control" c:repeat="outer" c:repeat-array="items" c:repeat-variable="item">x</w:root>`)

	rnd := render.New(registry.New(), store)
	_, err := rnd.Render(frag, context.NewRenderContext(), nil)
	if err == nil || !strings.Contains(err.Error(), "outer repeat on root element is not possible") {
		t.Errorf("expected outer-repeat-on-root error, got %v", err)
	}
}

func TestNotVisibleRemovesElement(t *testing.T) {
	store := fragment.NewStore("")
	frag := mustFragment(t, store, "page", `<w:root xmlns:w="webpp://xml" xmlns:c="webpp://control">`+
		`<w:hidden c:if-exists="missing">x</w:hidden><w:kept/></w:root>`)

	rnd := render.New(registry.New(), store)
	out := mustRenderString(t, rnd, frag, context.NewRenderContext(), nil)

	if strings.Contains(out, "hidden") {
		t.Errorf("expected hidden element to be removed, got %s", out)
	}
	if !strings.Contains(out, "<kept/>") {
		t.Errorf("expected sibling to survive, got %s", out)
	}
}

func TestNotVisibleRootFailsWithEmptyDocumentMessage(t *testing.T) {
	store := fragment.NewStore("")
	frag := mustFragment(t, store, "page", `<w:root xmlns:w="webpp://xml" xmlns:c="webpp://control" c:if-exists="missing">x</w:root>`)

	rnd := render.New(registry.New(), store)
	_, err := rnd.Render(frag, context.NewRenderContext(), nil)
	if err == nil || !strings.Contains(err.Error(), "response resulted in empty document") {
		t.Errorf("expected empty-document error, got %v", err)
	}
}

func TestUnknownControlAttributeFails(t *testing.T) {
	store := fragment.NewStore("")
	frag := mustFragment(t, store, "page", `<w:root xmlns:w="webpp://xml" xmlns:c="webpp://control" c:frobnicate="x">x</w:root>`)

	rnd := render.New(registry.New(), store)
	_, err := rnd.Render(frag, context.NewRenderContext(), nil)
	if err == nil || !strings.Contains(err.Error(), "webpp://control atribute frobnicate is not implemented") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBadRepeatValueFails(t *testing.T) {
	store := fragment.NewStore("")
	frag := mustFragment(t, store, "page", `<w:root xmlns:w="webpp://xml" xmlns:c="webpp://control" c:repeat="sideways">x</w:root>`)

	rnd := render.New(registry.New(), store)
	_, err := rnd.Render(frag, context.NewRenderContext(), nil)
	if err == nil || !strings.Contains(err.Error(), "repeat must be one of (inner,outer), not 'sideways'") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCustomTagDispatchesToRegistry(t *testing.T) {
	store := fragment.NewStore("")
	frag := mustFragment(t, store, "page", `<k:widget xmlns:k="webpp://custom"/>`)

	reg := registry.New()
	reg.RegisterTag("webpp://custom", "widget", registry.TagFunc(func(dst, src *xml.Element, ctx *context.RenderContext) error {
		dst.QName = xml.LocalName("rendered")
		dst.Append(xml.NewText("ok"))
		return nil
	}))

	rnd := render.New(reg, store)
	out := mustRenderString(t, rnd, frag, context.NewRenderContext(), nil)

	if !strings.Contains(out, "<rendered>ok</rendered>") {
		t.Errorf("expected registered tag handler output, got %s", out)
	}
}

func TestMissingCustomTagFails(t *testing.T) {
	store := fragment.NewStore("")
	frag := mustFragment(t, store, "page", `<k:widget xmlns:k="webpp://custom"/>`)

	rnd := render.New(registry.New(), store)
	_, err := rnd.Render(frag, context.NewRenderContext(), nil)
	if err == nil || !strings.Contains(err.Error(), "required custom tag widget in ns webpp://custom (or namespace handler) not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestControlInsertSplicesNamedFragment(t *testing.T) {
	store := fragment.NewStore("")
	mustFragment(t, store, "partial", `<w:span xmlns:w="webpp://xml">ok</w:span>`)
	page := mustFragment(t, store, "page", `<c:insert xmlns:c="webpp://control" name="partial" value-prefix=""/>`)

	rnd := render.New(registry.New(), store)
	out := mustRenderString(t, rnd, page, context.NewRenderContext(), nil)

	if !strings.Contains(out, "<span>ok</span>") {
		t.Errorf("expected spliced fragment content, got %s", out)
	}
}

func TestUnknownControlTagFails(t *testing.T) {
	store := fragment.NewStore("")
	page := mustFragment(t, store, "page", `<c:delete xmlns:c="webpp://control"/>`)

	rnd := render.New(registry.New(), store)
	_, err := rnd.Render(page, context.NewRenderContext(), nil)
	if err == nil || !strings.Contains(err.Error(), "unknown webpp://control tag: delete") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestViewInsertionBySplicesAtIdAnchorAndPreservesId(t *testing.T) {
	store := fragment.NewStore("")
	mustFragment(t, store, "view", `<w:section xmlns:w="webpp://xml">replaced</w:section>`)
	page := mustFragment(t, store, "page", `<w:root xmlns:w="webpp://xml"><w:div id="slot">orig</w:div></w:root>`)

	insertions := map[string]render.ViewInsertion{
		"slot": {ViewName: "view", ValuePrefix: ""},
	}

	rnd := render.New(registry.New(), store)
	out := mustRenderString(t, rnd, page, context.NewRenderContext(), insertions)

	if !strings.Contains(out, `<section id="slot">replaced</section>`) {
		t.Errorf("expected spliced view with preserved id, got %s", out)
	}
}

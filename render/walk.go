package render

import (
	"fmt"
	"strings"

	"github.com/midbel/webpp/context"
	"github.com/midbel/webpp/expr"
	"github.com/midbel/webpp/fragment"
	"github.com/midbel/webpp/registry"
	"github.com/midbel/webpp/stack"
	"github.com/midbel/webpp/xml"
)

// xhtmlNamespace is declared on the output root whenever a webpp://html5
// element is passed through.
const xhtmlNamespace = "http://www.w3.org/1999/xhtml"

// ViewInsertion names a sub-view to splice in at an id= anchor: the fragment
// to render and the render-context prefix to push while rendering it.
type ViewInsertion struct {
	ViewName    string
	ValuePrefix string
}

// Renderer walks a source fragment's document and rewrites it into an
// output document, dispatching custom tags and namespaces through a
// registry and splicing named sub-views in at their id= anchors.
type Renderer struct {
	Registry *registry.Registry
	Store    *fragment.Store
	Funcs    expr.Funcs
	Tracer   Tracer
}

// New returns a Renderer with a no-op tracer.
func New(reg *registry.Registry, store *fragment.Store) *Renderer {
	return &Renderer{Registry: reg, Store: store, Tracer: NoopTracer()}
}

// Render executes render(ctx) -> output_document against frag's document.
// insertions names every id= anchor the caller wants spliced with a named
// view; it is inherited unmodified into every recursive sub-render.
func (r *Renderer) Render(frag *fragment.Fragment, ctx *context.RenderContext, insertions map[string]ViewInsertion) (*xml.Document, error) {
	srcRoot, ok := frag.Doc.Root().(*xml.Element)
	if !ok {
		return nil, fmt.Errorf("fragment %q has no root element", frag.Name)
	}

	dstRoot := xml.NewElement(xml.LocalName(srcRoot.LocalName()))
	out := xml.EmptyDocument()
	for _, n := range frag.Doc.Nodes {
		switch n.Type() {
		case xml.TypeElement:
			out.Nodes = append(out.Nodes, dstRoot)
		case xml.TypeComment:
			out.Nodes = append(out.Nodes, xml.NewComment(n.Value()))
		}
	}

	w := &walker{
		reg:        r.Registry,
		store:      r.Store,
		funcs:      r.Funcs,
		tracer:     r.Tracer,
		insertions: insertions,
	}
	if w.tracer == nil {
		w.tracer = NoopTracer()
	}
	if w.insertions == nil {
		w.insertions = map[string]ViewInsertion{}
	}
	if err := w.processNode(srcRoot, dstRoot, ctx, false); err != nil {
		return nil, err
	}
	return out, nil
}

type walker struct {
	reg        *registry.Registry
	store      *fragment.Store
	funcs      expr.Funcs
	tracer     Tracer
	insertions map[string]ViewInsertion
}

// controlAttrs is the result of scanning a node's webpp://control
// attributes, before phase 2 decides what they mean.
type controlAttrs struct {
	repeat         string
	repeatArray    string
	repeatVariable string
}

func (w *walker) processNode(src *xml.Element, dst *xml.Element, ctx *context.RenderContext, outerActive bool) (err error) {
	w.tracer.Enter(src.Uri, src.Name, src.Line)
	defer func() {
		if err != nil {
			w.tracer.Error(src.Uri, src.Name, src.Line, err)
			err = stack.Annotate(err, fmt.Sprintf("node %s:%s at line %d", src.Uri, src.Name, src.Line))
		}
		w.tracer.Leave(src.Uri, src.Name, src.Line)
	}()

	ctl, visible, err := w.scanControl(src, ctx)
	if err != nil {
		return err
	}
	if outerActive && ctl.repeat == "outer" {
		ctl.repeat = ""
	}

	if !visible {
		return removeFromParent(dst)
	}
	if ctl.repeat == "outer" {
		return w.processOuterRepeat(src, dst, ctx, ctl)
	}
	return w.processVisibleBody(src, dst, ctx, ctl)
}

func (w *walker) scanControl(src *xml.Element, ctx *context.RenderContext) (controlAttrs, bool, error) {
	var ctl controlAttrs
	visible := true
	for _, a := range src.Attrs {
		if a.Uri != registry.NsControl {
			continue
		}
		switch a.Name {
		case "repeat":
			if a.Datum != "inner" && a.Datum != "outer" {
				return ctl, false, fmt.Errorf("repeat must be one of (inner,outer), not '%s' in line '%d', tag '%s'", a.Datum, src.Line, src.Name)
			}
			ctl.repeat = a.Datum
		case "repeat-array":
			ctl.repeatArray = a.Datum
		case "repeat-variable":
			ctl.repeatVariable = a.Datum
		case "if-exists":
			visible = visible && !ctx.GetReadOnly(a.Datum).Empty()
		case "if-not-exists":
			visible = visible && ctx.GetReadOnly(a.Datum).Empty()
		case "if-true":
			b, err := readBool(ctx, a.Datum)
			if err != nil {
				return ctl, false, err
			}
			visible = visible && b
		case "if-not-true":
			b, err := readBool(ctx, a.Datum)
			if err != nil {
				return ctl, false, err
			}
			visible = visible && !b
		case "visible-if":
			node, err := expr.Parse(a.Datum)
			if err != nil {
				return ctl, false, err
			}
			b, err := expr.Eval(node, ctx, w.funcs)
			if err != nil {
				return ctl, false, err
			}
			visible = visible && b
		default:
			return ctl, false, fmt.Errorf("webpp://control atribute %s is not implemented", a.Name)
		}
	}
	return ctl, visible, nil
}

func readBool(ctx *context.RenderContext, path string) (bool, error) {
	val, err := ctx.GetReadOnly(path).GetValue()
	if err != nil {
		return false, err
	}
	return val.IsTrue()
}

func (w *walker) processOuterRepeat(src, dst *xml.Element, ctx *context.RenderContext, ctl controlAttrs) error {
	if isRoot(src) {
		return fmt.Errorf("outer repeat on root element is not possible")
	}
	if ctl.repeatVariable == "" || ctl.repeatArray == "" {
		return fmt.Errorf("repeat attribute set, but repeat_variable or repeat_array is not set")
	}
	arr, err := ctx.Get(ctl.repeatArray).GetArray()
	if err != nil {
		return err
	}
	if arr.Empty() {
		return removeFromParent(dst)
	}

	arr.Reset()
	current := dst
	first := true
	for arr.HasNext() {
		el := arr.Next()
		if !first {
			parentEl, ok := current.Parent().(*xml.Element)
			if !ok {
				return fmt.Errorf("outer repeat on root element is not possible")
			}
			sibling := xml.NewElement(xml.LocalName(src.Name))
			parentEl.Append(sibling)
			current = sibling
		}
		v := ctx.Get(ctl.repeatVariable)
		v.RemoveLink()
		v.CreateLink(el)
		if err := w.processNode(src, current, ctx, true); err != nil {
			return err
		}
		first = false
	}
	return nil
}

func (w *walker) processVisibleBody(src, dst *xml.Element, ctx *context.RenderContext, ctl controlAttrs) error {
	if id := idOf(src); id != "" {
		if mapping, ok := w.insertions[id]; ok {
			return w.processViewInsertion(src, dst, ctx, id, mapping)
		}
	}

	uri := src.Uri
	switch {
	case uri == registry.NsXML || uri == registry.NsHTML5 || !isWebppURI(uri):
		if err := w.processPassThrough(src, dst, ctx, uri); err != nil {
			return err
		}
		return w.processChildren(src, dst, ctx, ctl)
	case uri == registry.NsControl:
		return w.processControlInsert(src, dst, ctx)
	default:
		return w.processCustomTag(src, dst, ctx)
	}
}

func (w *walker) processViewInsertion(src, dst *xml.Element, ctx *context.RenderContext, id string, mapping ViewInsertion) error {
	frag, err := w.store.Load(mapping.ViewName)
	if err != nil {
		return err
	}

	ctx.PushPrefix(mapping.ValuePrefix)
	defer ctx.PopPrefix()

	sub := &Renderer{Registry: w.reg, Store: w.store, Funcs: w.funcs, Tracer: w.tracer}
	subDoc, err := sub.Render(frag, ctx, w.insertions)
	if err != nil {
		return err
	}
	subRoot, ok := subDoc.Root().(*xml.Element)
	if !ok {
		return fmt.Errorf("view %q produced no root element", mapping.ViewName)
	}
	spliceSubview(dst, subRoot)
	dst.SetAttribute(xml.NewAttribute(xml.LocalName("id"), id))
	return nil
}

func (w *walker) processControlInsert(src, dst *xml.Element, ctx *context.RenderContext) error {
	if src.Name != "insert" {
		return fmt.Errorf("unknown webpp://control tag: %s", src.Name)
	}
	name := src.GetAttribute("name").Datum
	prefix := src.GetAttribute("value-prefix").Datum

	frag, err := w.store.Load(name)
	if err != nil {
		return err
	}

	ctx.PushPrefix(prefix)
	defer ctx.PopPrefix()

	sub := &Renderer{Registry: w.reg, Store: w.store, Funcs: w.funcs, Tracer: w.tracer}
	subDoc, err := sub.Render(frag, ctx, w.insertions)
	if err != nil {
		return err
	}
	subRoot, ok := subDoc.Root().(*xml.Element)
	if !ok {
		return fmt.Errorf("view %q produced no root element", name)
	}
	spliceSubview(dst, subRoot)
	return nil
}

func spliceSubview(dst, subRoot *xml.Element) {
	dst.QName = subRoot.QName
	dst.Attrs = subRoot.Attrs
	dst.Nodes = nil
	for _, n := range subRoot.Nodes {
		dst.Append(n)
	}
}

func (w *walker) processPassThrough(src, dst *xml.Element, ctx *context.RenderContext, uri string) error {
	switch uri {
	case registry.NsHTML5:
		dst.QName = xml.ExpandedName(src.Name, "", xhtmlNamespace)
		root := dst
		for {
			parent, ok := root.Parent().(*xml.Element)
			if !ok {
				break
			}
			root = parent
		}
		if root.GetAttribute("xmlns").Name == "" {
			root.SetAttribute(xml.NewAttribute(xml.LocalName("xmlns"), xhtmlNamespace))
		}
	case registry.NsXML:
		dst.QName = xml.LocalName(src.Name)
	default:
		dst.QName = src.QName
	}
	for _, a := range src.Attributes() {
		if a.Uri == registry.NsControl {
			continue
		}
		if a.Uri == "" {
			dst.SetAttribute(a)
			continue
		}
		h, ok := w.reg.Namespace(a.Uri)
		if !ok {
			return fmt.Errorf("unknown attribute namespace %s", a.Uri)
		}
		if err := h.Attribute(dst, a, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) processCustomTag(src, dst *xml.Element, ctx *context.RenderContext) error {
	if h, ok := w.reg.Tag(src.Uri, src.Name); ok {
		return h.Tag(dst, src, ctx)
	}
	if h, ok := w.reg.Namespace(src.Uri); ok {
		return h.Tag(dst, src, ctx)
	}
	return fmt.Errorf("required custom tag %s in ns %s (or namespace handler) not found", src.Name, src.Uri)
}

func (w *walker) processChildren(src, dst *xml.Element, ctx *context.RenderContext, ctl controlAttrs) error {
	switch ctl.repeat {
	case "", "none":
		return w.walkChildrenOnce(src, dst, ctx)
	case "inner":
		if ctl.repeatVariable == "" || ctl.repeatArray == "" {
			return fmt.Errorf("repeat attribute set, but repeat_variable or repeat_array is not set")
		}
		arr, err := ctx.Get(ctl.repeatArray).GetArray()
		if err != nil {
			return err
		}
		arr.Reset()
		for arr.HasNext() {
			el := arr.Next()
			v := ctx.Get(ctl.repeatVariable)
			v.RemoveLink()
			v.CreateLink(el)
			if err := w.walkChildrenOnce(src, dst, ctx); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("repeat must be one of (inner,outer), not '%s' in line '%d', tag '%s'", ctl.repeat, src.Line, src.Name)
	}
}

func (w *walker) walkChildrenOnce(src, dst *xml.Element, ctx *context.RenderContext) error {
	for _, child := range src.Nodes {
		switch c := child.(type) {
		case *xml.Element:
			childDst := xml.NewElement(xml.LocalName(c.Name))
			dst.Append(childDst)
			if err := w.processNode(c, childDst, ctx, false); err != nil {
				return err
			}
		case *xml.Comment:
			dst.Append(xml.NewComment(c.Value()))
		case *xml.Text:
			dst.Append(xml.NewText(c.Value()))
		case *xml.CharData:
			dst.Append(xml.NewCharacterData(c.Value()))
		}
	}
	return nil
}

func removeFromParent(dst *xml.Element) error {
	parent := dst.Parent()
	el, ok := parent.(*xml.Element)
	if parent == nil || !ok {
		return fmt.Errorf("response resulted in empty document")
	}
	return el.RemoveNode(dst.Position())
}

func isRoot(n *xml.Element) bool {
	switch n.Parent().(type) {
	case nil, *xml.Document:
		return true
	default:
		return false
	}
}

func idOf(src *xml.Element) string {
	return src.GetAttribute("id").Datum
}

func isWebppURI(uri string) bool {
	return strings.HasPrefix(uri, "webpp://")
}

// Package builtin implements the engine's loadable "webpp://basic"
// handler bundle: currently just the webpp://format namespace, a small
// #{variable} / #{variable|format} interpolation grammar applied to both
// attribute values and text content.
package builtin

import (
	"fmt"
	"strings"

	"github.com/midbel/webpp/context"
	"github.com/midbel/webpp/registry"
	"github.com/midbel/webpp/xml"
)

// Register installs every built-in namespace handler into reg.
func Register(reg *registry.Registry) {
	reg.RegisterNamespace(registry.NsFormat, formatHandler{})
}

type formatHandler struct{}

func (formatHandler) Tag(dst, src *xml.Element, ctx *context.RenderContext) error {
	if src.LocalName() == "text" {
		return spliceTransparent(dst, src, ctx)
	}

	dst.QName = xml.LocalName(src.LocalName())
	for _, a := range src.Attributes() {
		switch a.Uri {
		case registry.NsXML, registry.NsHTML5, "":
			dst.SetAttribute(a)
		case registry.NsFormat:
			text, err := interpolate(a.Datum, ctx)
			if err != nil {
				return err
			}
			rewritten := a
			rewritten.QName = xml.LocalName(a.Name)
			rewritten.Datum = text
			dst.SetAttribute(rewritten)
		case registry.NsControl:
			// scanned and consumed in the render walker's phase 1.
		default:
			return fmt.Errorf("unknown attribute namespace %s", a.Uri)
		}
	}

	nodes, err := interpolateChildren(src, ctx)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		dst.Append(n)
	}
	return nil
}

// Attribute interpolates attr's value for a pass-through element that
// carries a webpp://format-namespaced attribute.
func (formatHandler) Attribute(dst *xml.Element, attr xml.Attribute, ctx *context.RenderContext) error {
	text, err := interpolate(attr.Datum, ctx)
	if err != nil {
		return err
	}
	rewritten := attr
	rewritten.QName = xml.LocalName(attr.Name)
	rewritten.Datum = text
	dst.SetAttribute(rewritten)
	return nil
}

// spliceTransparent implements f:text: dst is discarded and its
// interpolated children take its place in dst's own parent.
func spliceTransparent(dst, src *xml.Element, ctx *context.RenderContext) error {
	parent, ok := dst.Parent().(*xml.Element)
	if !ok {
		return fmt.Errorf("webpp://format rendered f:text with no parent to splice into")
	}
	at := dst.Position()
	if err := parent.RemoveNode(at); err != nil {
		return err
	}
	nodes, err := interpolateChildren(src, ctx)
	if err != nil {
		return err
	}
	return insertOrAppend(parent, at, nodes)
}

func insertOrAppend(parent *xml.Element, at int, nodes []xml.Node) error {
	if len(nodes) == 0 {
		return nil
	}
	if at >= len(parent.Nodes) {
		for _, n := range nodes {
			parent.Append(n)
		}
		return nil
	}
	return parent.InsertNodes(at, nodes)
}

// interpolateChildren runs every text/comment/CDATA child of src through
// the interpolation grammar, preserving node kind. An Element child fails:
// webpp://format only ever produces leaf content.
func interpolateChildren(src *xml.Element, ctx *context.RenderContext) ([]xml.Node, error) {
	var nodes []xml.Node
	for _, n := range src.Nodes {
		switch c := n.(type) {
		case *xml.Text:
			text, err := interpolate(c.Content, ctx)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, xml.NewText(text))
		case *xml.CharData:
			text, err := interpolate(c.Content, ctx)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, xml.NewCharacterData(text))
		case *xml.Comment:
			text, err := interpolate(c.Content, ctx)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, xml.NewComment(text))
		default:
			return nil, fmt.Errorf("webpp://format rendered tag can contain only text, comment or cdata nodes")
		}
	}
	return nodes, nil
}

// interpolate expands every "#{variable}" or "#{variable|format}" token in
// src against ctx, leaving everything else untouched.
func interpolate(src string, ctx *context.RenderContext) (string, error) {
	var out strings.Builder
	rest := src
	for {
		ix := strings.Index(rest, "#{")
		if ix < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:ix])
		rest = rest[ix+2:]

		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return "", fmt.Errorf("#{ not terminated by }")
		}
		token := rest[:end]
		rest = rest[end+1:]

		text, err := expandToken(token, ctx)
		if err != nil {
			return "", err
		}
		out.WriteString(text)
	}
	return out.String(), nil
}

func expandToken(token string, ctx *context.RenderContext) (string, error) {
	name, format, hasFormat := strings.Cut(token, "|")
	name = strings.TrimSpace(name)
	if !hasFormat {
		t := ctx.Get(name)
		if t.Empty() {
			return "", fmt.Errorf("output: required variable '%s' not found in render context", name)
		}
		val, err := t.GetValue()
		if err != nil {
			return "", err
		}
		return val.Output()
	}

	format = strings.TrimSpace(format)
	if format == "" {
		return "", fmt.Errorf("empty format string")
	}
	t := ctx.Get(name)
	if t.Empty() {
		return "", fmt.Errorf("format: required variable '%s' not found in render context", name)
	}
	val, err := t.GetValue()
	if err != nil {
		return "", err
	}
	return val.Format(format)
}

// Package output implements the render engine's final serialisation step:
// plain XML pass-through, or XHTML5 shaping (doctype, declaration and
// comment stripping) applied to a rendered document before it is written.
package output

import (
	"io"

	"github.com/midbel/webpp/xml"
)

// xhtmlNamespace is declared on the root element in XHTML5 mode.
const xhtmlNamespace = "http://www.w3.org/1999/xhtml"

// Flags control xhtml5 post-processing.
type Flags uint8

const (
	// FlagDoctype sets the internal subset to html (no public/system id).
	FlagDoctype Flags = 1 << iota
	// FlagRemoveXMLDeclaration strips the <?xml ...?> prefix on serialisation.
	FlagRemoveXMLDeclaration
	// FlagRemoveComments recursively removes every comment node, including
	// ones that sit outside the root element.
	FlagRemoveComments
)

// Shaper serialises a rendered document for a particular output mode.
type Shaper interface {
	Write(w io.Writer, doc *xml.Document) error
}

type shaperFunc func(w io.Writer, doc *xml.Document) error

func (fn shaperFunc) Write(w io.Writer, doc *xml.Document) error {
	return fn(w, doc)
}

// XML is the no-op pass-through: UTF-8 XML with declaration.
func XML() Shaper {
	return shaperFunc(func(w io.Writer, doc *xml.Document) error {
		return xml.NewWriter(w).Write(doc)
	})
}

// XHTML5 returns a Shaper that applies flags before serialising doc.
func XHTML5(flags Flags) Shaper {
	return shaperFunc(func(w io.Writer, doc *xml.Document) error {
		if flags&FlagRemoveComments != 0 {
			removeComments(doc)
		}
		declareXHTMLNamespace(doc)

		writer := xml.NewWriter(w)
		if flags&FlagDoctype != 0 {
			writer.Doctype = "html"
		}
		if flags&FlagRemoveXMLDeclaration != 0 {
			writer.WriterOptions |= xml.OptionNoProlog
		}
		return writer.Write(doc)
	})
}

func declareXHTMLNamespace(doc *xml.Document) {
	root, ok := doc.Root().(*xml.Element)
	if !ok {
		return
	}
	for _, a := range root.Attrs {
		if a.Name == "xmlns" {
			return
		}
	}
	root.SetAttribute(xml.NewAttribute(xml.LocalName("xmlns"), xhtmlNamespace))
}

func removeComments(doc *xml.Document) {
	doc.Nodes = filterComments(doc.Nodes)
	for _, n := range doc.Nodes {
		if el, ok := n.(*xml.Element); ok {
			stripComments(el)
		}
	}
}

func stripComments(e *xml.Element) {
	e.Nodes = filterComments(e.Nodes)
	for _, n := range e.Nodes {
		if child, ok := n.(*xml.Element); ok {
			stripComments(child)
		}
	}
}

// filterComments drops every *xml.Comment from nodes, preserving order.
func filterComments(nodes []xml.Node) []xml.Node {
	kept := nodes[:0]
	for _, n := range nodes {
		if _, ok := n.(*xml.Comment); ok {
			continue
		}
		kept = append(kept, n)
	}
	return kept
}

// Package fragment implements the fragment store: named, immutable parsed
// XML documents, loaded lazily from a directory or registered from memory,
// with an optional ordered chain of XSLT pre-processing hooks applied
// after parse.
package fragment

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/midbel/webpp/stack"
	"github.com/midbel/webpp/xml"
)

// Fragment is a named, immutable parsed XML document: the post-transform
// document if any stylesheets were applied, the parse result otherwise.
type Fragment struct {
	Name string
	Doc  *xml.Document
}

// Stylesheet is the XSLT pre-processing hook the engine invokes; applying
// an actual transformation is an external collaborator's responsibility,
// not this package's.
type Stylesheet interface {
	Apply(doc *xml.Document) (*xml.Document, error)
}

// StylesheetFunc adapts a plain function to the Stylesheet interface.
type StylesheetFunc func(doc *xml.Document) (*xml.Document, error)

func (fn StylesheetFunc) Apply(doc *xml.Document) (*xml.Document, error) {
	return fn(doc)
}

// Store is a directory of ".xml" files loaded lazily by name, with an
// ordered registry of stylesheets applied to every fragment loaded
// afterwards.
type Store struct {
	root        string
	fragments   map[string]*Fragment
	stylesheets []Stylesheet
}

// NewStore returns a store rooted at dir. dir may be empty if the caller
// only ever registers fragments in memory via Put.
func NewStore(dir string) *Store {
	return &Store{
		root:      dir,
		fragments: make(map[string]*Fragment),
	}
}

// AttachXSLT queues sheet as a pre-processor applied, in registration
// order, to every fragment loaded or put from this point forward. It does
// not retroactively apply to fragments already cached.
func (s *Store) AttachXSLT(sheet Stylesheet) {
	s.stylesheets = append(s.stylesheets, sheet)
}

// Load reads "<root>/<name>.xml", parses it, and applies every registered
// stylesheet in order. The result is cached under name.
func (s *Store) Load(name string) (frag *Fragment, err error) {
	defer func() { err = stack.Wrap(err, stack.Frame{Function: "fragment.Store.Load", Note: name}) }()

	if cached, ok := s.fragments[name]; ok {
		return cached, nil
	}
	path := filepath.Join(s.root, name+".xml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.put(name, raw)
}

// Put registers a fragment parsed from data rather than a file, applying
// every registered stylesheet in order, same as Load.
func (s *Store) Put(name string, data string) (frag *Fragment, err error) {
	defer func() { err = stack.Wrap(err, stack.Frame{Function: "fragment.Store.Put", Note: name}) }()
	return s.put(name, []byte(data))
}

func (s *Store) put(name string, raw []byte) (*Fragment, error) {
	parser := xml.NewParser(bytes.NewReader(raw))
	parser.OmitProlog = true
	parser.TrimSpace = false
	doc, err := parser.Parse()
	if err != nil {
		return nil, fmt.Errorf("parsing fragment %q: %w", name, err)
	}
	for i, sheet := range s.stylesheets {
		out, err := sheet.Apply(doc)
		if err != nil {
			return nil, fmt.Errorf("applying stylesheet #%d for fragment %q: %w", i+1, name, err)
		}
		if out == nil {
			return nil, fmt.Errorf("applying stylesheet #%d for fragment %q: Could not apply XSL stylesheet", i+1, name)
		}
		doc = out
	}
	frag := &Fragment{Name: name, Doc: doc}
	s.fragments[name] = frag
	return frag, nil
}

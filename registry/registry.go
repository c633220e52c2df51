// Package registry implements the tag and namespace dispatch tables: the
// (namespace-uri, local-name) -> tag handler map and the uri -> namespace
// handler map the render walker consults for custom and pass-through
// elements.
package registry

import (
	"github.com/midbel/webpp/context"
	"github.com/midbel/webpp/xml"
)

// Reserved namespace URIs.
const (
	NsXML     = "webpp://xml"
	NsHTML5   = "webpp://html5"
	NsControl = "webpp://control"
	NsFormat  = "webpp://format"
)

// TagHandler rewrites dst in place from src. It is responsible for its own
// children: the render walker will not recurse into src's children once a
// tag handler has run.
type TagHandler interface {
	Tag(dst, src *xml.Element, ctx *context.RenderContext) error
}

// TagFunc adapts a plain function to TagHandler.
type TagFunc func(dst, src *xml.Element, ctx *context.RenderContext) error

func (fn TagFunc) Tag(dst, src *xml.Element, ctx *context.RenderContext) error {
	return fn(dst, src, ctx)
}

// NamespaceHandler rewrites destination elements and attributes for every
// name in its namespace.
type NamespaceHandler interface {
	Tag(dst, src *xml.Element, ctx *context.RenderContext) error
	Attribute(dst *xml.Element, attr xml.Attribute, ctx *context.RenderContext) error
}

type tagKey struct {
	uri   string
	local string
}

// Registry owns the two dispatch tables.
type Registry struct {
	tags       map[tagKey]TagHandler
	namespaces map[string]NamespaceHandler
}

func New() *Registry {
	return &Registry{
		tags:       make(map[tagKey]TagHandler),
		namespaces: make(map[string]NamespaceHandler),
	}
}

// RegisterTag binds handler to the (uri, local) pair.
func (r *Registry) RegisterTag(uri, local string, handler TagHandler) {
	r.tags[tagKey{uri: uri, local: local}] = handler
}

// RegisterNamespace binds handler to every name in uri.
func (r *Registry) RegisterNamespace(uri string, handler NamespaceHandler) {
	r.namespaces[uri] = handler
}

// Tag looks up a tag handler for (uri, local).
func (r *Registry) Tag(uri, local string) (TagHandler, bool) {
	h, ok := r.tags[tagKey{uri: uri, local: local}]
	return h, ok
}

// Namespace looks up the namespace handler for uri.
func (r *Registry) Namespace(uri string) (NamespaceHandler, bool) {
	h, ok := r.namespaces[uri]
	return h, ok
}

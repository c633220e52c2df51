package registry_test

import (
	"testing"

	"github.com/midbel/webpp/context"
	"github.com/midbel/webpp/registry"
	"github.com/midbel/webpp/xml"
)

func TestRegisterAndLookupTag(t *testing.T) {
	reg := registry.New()
	called := false
	reg.RegisterTag("webpp://custom", "widget", registry.TagFunc(func(dst, src *xml.Element, ctx *context.RenderContext) error {
		called = true
		return nil
	}))

	h, ok := reg.Tag("webpp://custom", "widget")
	if !ok {
		t.Fatalf("expected tag handler to be registered")
	}
	if err := h.Tag(nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !called {
		t.Errorf("expected handler to run")
	}

	if _, ok := reg.Tag("webpp://custom", "other"); ok {
		t.Errorf("did not expect a handler for an unregistered local name")
	}
}

func TestRegisterAndLookupNamespace(t *testing.T) {
	reg := registry.New()
	reg.RegisterNamespace("webpp://custom", fakeNamespace{})
	if _, ok := reg.Namespace("webpp://custom"); !ok {
		t.Errorf("expected namespace handler to be registered")
	}
	if _, ok := reg.Namespace("webpp://other"); ok {
		t.Errorf("did not expect a handler for an unregistered namespace")
	}
}

type fakeNamespace struct{}

func (fakeNamespace) Tag(dst, src *xml.Element, ctx *context.RenderContext) error { return nil }
func (fakeNamespace) Attribute(dst *xml.Element, attr xml.Attribute, ctx *context.RenderContext) error {
	return nil
}

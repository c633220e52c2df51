package context

import "strings"

// RenderContext is a root tree element plus an ordered prefix stack used to
// scope sub-view insertion. Mutating lookups (Get) prepend the joined,
// non-empty prefixes to the supplied key; read-only lookups (GetReadOnly)
// do not.
type RenderContext struct {
	root     *TreeElement
	prefixes []string
}

// NewRenderContext returns a context rooted at a fresh, empty tree.
func NewRenderContext() *RenderContext {
	return &RenderContext{root: New()}
}

// Root returns the context's root tree element.
func (c *RenderContext) Root() *TreeElement {
	return c.root
}

// PushPrefix appends p to the prefix stack.
func (c *RenderContext) PushPrefix(p string) {
	c.prefixes = append(c.prefixes, p)
}

// PopPrefix removes the most recently pushed prefix. It is a no-op on an
// empty stack.
func (c *RenderContext) PopPrefix() {
	if len(c.prefixes) == 0 {
		return
	}
	c.prefixes = c.prefixes[:len(c.prefixes)-1]
}

// Prefix returns the currently joined, non-empty prefix segments.
func (c *RenderContext) Prefix() string {
	var parts []string
	for _, p := range c.prefixes {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// Get resolves name against the root tree, prepending the current joined
// prefix (mutating overload: intermediate slots are created as needed).
func (c *RenderContext) Get(name string) *TreeElement {
	key := name
	if prefix := c.Prefix(); prefix != "" {
		if key == "" {
			key = prefix
		} else {
			key = prefix + "." + key
		}
	}
	return c.root.Find(key)
}

// GetReadOnly resolves name against the root tree without prepending any
// prefix.
func (c *RenderContext) GetReadOnly(name string) *TreeElement {
	return c.root.Find(name)
}

// ImportSubtree clears any existing link at key and installs a weak link to
// target.
func (c *RenderContext) ImportSubtree(key string, target *TreeElement) {
	slot := c.Get(key)
	slot.RemoveLink()
	slot.CreateLink(target)
}

// LinkDynamicSubtree installs a freshly built, owned subtree and links key
// to it with a permanent (strong) link, so the subtree outlives the link
// itself even once the caller's own reference to it goes away.
func (c *RenderContext) LinkDynamicSubtree(key string, build func() *TreeElement) *TreeElement {
	sub := build()
	slot := c.Get(key)
	slot.CreatePermanentLink(sub)
	return sub
}

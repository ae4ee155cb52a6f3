package seotoolkit

import (
	"fmt"
	"html"
	"io"
)

// Meta is one metadata entry: a scalar key/content pair, or a nested group
// (used for multi-image lists). Declaration order is preserved through
// merging, caching, and rendering.
type Meta struct {
	Key      string   `json:"key"`
	Content  string   `json:"content,omitempty"`
	Children Fragment `json:"children,omitempty"`
}

// Fragment is an ordered metadata set produced by one provider for one
// context+entity pair.
type Fragment []Meta

// Has reports whether a top-level key is present.
func (f Fragment) Has(key string) bool {
	for _, m := range f {
		if m.Key == key {
			return true
		}
	}
	return false
}

// Add appends a scalar entry unless the key is already present. Existing
// keys are never overwritten; within one merge step the first writer wins.
func (f Fragment) Add(key, content string) Fragment {
	if f.Has(key) {
		return f
	}
	return append(f, Meta{Key: key, Content: content})
}

// AddGroup appends a nested entry unless the key is already present.
func (f Fragment) AddGroup(key string, children Fragment) Fragment {
	if f.Has(key) {
		return f
	}
	return append(f, Meta{Key: key, Children: children})
}

// Merge appends every entry of other whose key is not already present.
func (f Fragment) Merge(other Fragment) Fragment {
	for _, m := range other {
		if f.Has(m.Key) {
			continue
		}
		f = append(f, m)
	}
	return f
}

// Compact drops entries with empty content and no children, recursively.
func (f Fragment) Compact() Fragment {
	var out Fragment
	for _, m := range f {
		if len(m.Children) > 0 {
			if children := m.Children.Compact(); len(children) > 0 {
				out = append(out, Meta{Key: m.Key, Children: children})
			}
			continue
		}
		if m.Content != "" {
			out = append(out, m)
		}
	}
	return out
}

// render writes one <meta> element per scalar leaf, recursing into nested
// groups in declaration order. attr is "name" or "property".
func (f Fragment) render(w io.Writer, attr string) error {
	for _, m := range f {
		if len(m.Children) > 0 {
			if err := m.Children.render(w, attr); err != nil {
				return err
			}
			continue
		}
		_, err := fmt.Fprintf(w, "<meta %s=\"%s\" content=\"%s\" />\n", attr, html.EscapeString(m.Key), html.EscapeString(m.Content))
		if err != nil {
			return err
		}
	}
	return nil
}

// HeadMetadata is the assembled output of every provider for one request.
type HeadMetadata struct {
	Context   Context
	Title     string
	Canonical string
	Name      Fragment // <meta name="..."> block
	Property  Fragment // <meta property="..."> block, Open Graph
	Twitter   Fragment // Twitter Card block, rendered with name attributes
	Schema    []SchemaNode
}

// Assemble resolves the context and runs every registered provider chain in
// priority order, merging fragments with keep-existing-key semantics and
// stripping empty values.
func (a *App) Assemble(req *PageRequest) *HeadMetadata {
	view := &PageView{Context: a.ResolveContext(req), Request: req}

	name := a.Hooks.Metadata.Apply(Fragment{}, view).Compact()
	property := a.Hooks.Property.Apply(Fragment{}, view).Compact()
	twitter := a.Hooks.Twitter.Apply(Fragment{}, view).Compact()
	schema := compactSchema(a.Hooks.Schema.Apply(nil, view))

	return &HeadMetadata{
		Context:   view.Context,
		Title:     a.Title(req),
		Canonical: a.Canonical(req),
		Name:      name,
		Property:  property,
		Twitter:   twitter,
		Schema:    schema,
	}
}

// RenderHead writes the full document head block: title, canonical link,
// the three meta tag blocks, and the JSON-LD script.
func (a *App) RenderHead(w io.Writer, req *PageRequest) error {
	head := a.Assemble(req)

	if head.Title != "" {
		if _, err := fmt.Fprintf(w, "<title>%s</title>\n", html.EscapeString(head.Title)); err != nil {
			return err
		}
	}
	if head.Canonical != "" {
		if _, err := fmt.Fprintf(w, "<link rel=\"canonical\" href=\"%s\" />\n", html.EscapeString(head.Canonical)); err != nil {
			return err
		}
	}
	if err := head.Name.render(w, "name"); err != nil {
		return err
	}
	if err := head.Property.render(w, "property"); err != nil {
		return err
	}
	if err := head.Twitter.render(w, "name"); err != nil {
		return err
	}
	return a.renderSchema(w, head.Schema)
}

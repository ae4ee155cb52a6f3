package seotoolkit

import "fmt"

// Context identifies the semantic kind of page being rendered. Exactly one
// context applies per request.
type Context string

// Built-in contexts. Post types and taxonomies contribute their own keys
// (e.g. "post", "category", "product_archive").
const (
	ContextFrontpage Context = "frontpage"
	ContextBlog      Context = "blog"
	ContextAuthor    Context = "author"
	ContextDate      Context = "date"
	ContextSearch    Context = "search"
	ContextError     Context = "error"
	ContextUnknown   Context = "unknown"
)

// PageRequest is the routing state of one inbound page view. It is built by
// the host's router and consumed, never mutated, by the metadata pipeline.
type PageRequest struct {
	FrontPage     bool
	Home          bool
	Singular      bool
	TypeArchive   bool
	AuthorArchive bool
	DateArchive   bool
	Search        bool
	NotFound      bool

	PostType string // set for singular views and type archives
	Taxonomy string // set for taxonomy archives

	PostID   int64
	TermID   int64
	AuthorID int64

	Query string // search query
	Date  string // preformatted date archive label, e.g. "August 2026"
	Page  int    // pagination, 1-based; 0 and 1 both mean unpaginated
}

// Paginated reports whether the view is page 2 or later of a paginated list.
func (r *PageRequest) Paginated() bool {
	return r.Page >= 2
}

// ResolveContext maps the routing state to a single context key. The
// tie-break order is fixed; the first matching branch wins. The result then
// passes through the Context extension chain so installations can remap
// requests the built-ins do not know about. Never fails: unmatched state is
// "unknown".
func (a *App) ResolveContext(req *PageRequest) Context {
	return a.Hooks.Context.Apply(a.resolveBuiltinContext(req), req)
}

func (a *App) resolveBuiltinContext(req *PageRequest) Context {
	switch {
	case req.FrontPage:
		return ContextFrontpage
	case req.Home:
		return ContextBlog
	case req.Singular:
		return Context(req.PostType)
	case req.Taxonomy != "":
		return Context(req.Taxonomy)
	case req.AuthorArchive:
		return ContextAuthor
	case req.DateArchive:
		return ContextDate
	case req.TypeArchive:
		return Context(req.PostType + "_archive")
	case req.Search:
		return ContextSearch
	case req.NotFound:
		return ContextError
	}
	return ContextUnknown
}

// Contexts enumerates every known context key with its display label. The
// set is derived from the content store (registered post types, taxonomies,
// archive-enabled types) plus the fixed built-ins, then passed through the
// Contexts extension chain. Cached for a day; the set only changes when the
// host registers new content types.
func (a *App) Contexts() (map[Context]string, error) {
	key := cacheKey("contexts", 0)
	return cached(a.Cache, key, DayTTL, func() (map[Context]string, error) {
		return a.doContexts()
	})
}

func (a *App) doContexts() (map[Context]string, error) {
	contexts := map[Context]string{
		ContextFrontpage: "Home",
		ContextBlog:      "Blog",
		ContextAuthor:    "Authors",
		ContextDate:      "Date",
		ContextSearch:    "Search",
		ContextError:     "Error 404",
	}

	types, err := a.Store.PostTypes()
	if err != nil {
		return nil, fmt.Errorf("seotoolkit: enumerate post types: %w", err)
	}
	for _, t := range types {
		contexts[Context(t.Name)] = t.Label
		if t.HasArchive {
			contexts[Context(t.Name+"_archive")] = fmt.Sprintf("%s archive", t.Label)
		}
	}

	taxonomies, err := a.Store.Taxonomies()
	if err != nil {
		return nil, fmt.Errorf("seotoolkit: enumerate taxonomies: %w", err)
	}
	for _, tax := range taxonomies {
		contexts[Context(tax.Name)] = tax.Label
	}

	return a.Hooks.Contexts.Apply(contexts, struct{}{}), nil
}

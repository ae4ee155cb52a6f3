package seotoolkit

import "sort"

// Filter is a pure transformation applied to an accumulator. The arg carries
// whatever request-scoped state the chain owner decided to expose (a PageView
// for the head pipeline, an entity id for sitemap entry filters).
type Filter[T, A any] func(acc T, arg A) T

type filterEntry[T, A any] struct {
	priority int
	seq      int
	fn       Filter[T, A]
}

// Chain is an ordered filter registry. Filters run in ascending priority;
// filters sharing a priority run in registration order. This ordering is
// load-bearing: merge semantics downstream are first-wins per merge call and
// last-registered-wins across the chain.
type Chain[T, A any] struct {
	entries []filterEntry[T, A]
	nextSeq int
}

// NewChain creates an empty filter chain.
func NewChain[T, A any]() *Chain[T, A] {
	return &Chain[T, A]{}
}

// Add registers fn at the given priority.
func (c *Chain[T, A]) Add(priority int, fn Filter[T, A]) {
	c.entries = append(c.entries, filterEntry[T, A]{priority: priority, seq: c.nextSeq, fn: fn})
	c.nextSeq++
	sort.SliceStable(c.entries, func(i, j int) bool {
		if c.entries[i].priority != c.entries[j].priority {
			return c.entries[i].priority < c.entries[j].priority
		}
		return c.entries[i].seq < c.entries[j].seq
	})
}

// Apply threads acc through every registered filter and returns the result.
func (c *Chain[T, A]) Apply(acc T, arg A) T {
	for _, e := range c.entries {
		acc = e.fn(acc, arg)
	}
	return acc
}

// Len reports the number of registered filters.
func (c *Chain[T, A]) Len() int {
	return len(c.entries)
}

// PageView is the argument handed to every head-pipeline filter: the resolved
// context plus the routing state it was resolved from.
type PageView struct {
	Context Context
	Request *PageRequest
}

// Hooks is the extension-point registry. Built-in providers register here at
// startup; host code may register additional filters before Start.
type Hooks struct {
	// Contexts adjusts the set of known context keys.
	Contexts *Chain[map[Context]string, struct{}]

	// Context remaps the resolved context of one request, applied after the
	// built-in tie-break. A commerce extension routes its shop views here.
	Context *Chain[Context, *PageRequest]

	// Title adjusts the resolved title parts before joining.
	Title *Chain[[]string, *PageView]

	// Description adjusts the resolved meta description.
	Description *Chain[string, *PageView]

	// Robots adjusts the ordered robots directive list.
	Robots *Chain[[]string, *PageView]

	// Canonical adjusts the canonical URL.
	Canonical *Chain[string, *PageView]

	// Metadata, Property and Twitter are the three output chains: name
	// attributes, Open Graph property attributes, and Twitter Card tags.
	Metadata *Chain[Fragment, *PageView]
	Property *Chain[Fragment, *PageView]
	Twitter  *Chain[Fragment, *PageView]

	// Schema adjusts the JSON-LD node list.
	Schema *Chain[[]SchemaNode, *PageView]

	// Sitemaps adjusts sitemap bucket membership for the index document.
	Sitemaps *Chain[[]string, struct{}]

	// SitemapEntry adjusts one sitemap entry; the arg is the post id. Used
	// by the image complement and available to host extensions.
	SitemapEntry *Chain[SitemapEntry, int64]

	// SitemapExclude adjusts the excluded entity ids per bucket.
	SitemapExclude *Chain[[]int64, string]
}

// NewHooks creates a registry with every chain empty.
func NewHooks() *Hooks {
	return &Hooks{
		Contexts:       NewChain[map[Context]string, struct{}](),
		Context:        NewChain[Context, *PageRequest](),
		Title:          NewChain[[]string, *PageView](),
		Description:    NewChain[string, *PageView](),
		Robots:         NewChain[[]string, *PageView](),
		Canonical:      NewChain[string, *PageView](),
		Metadata:       NewChain[Fragment, *PageView](),
		Property:       NewChain[Fragment, *PageView](),
		Twitter:        NewChain[Fragment, *PageView](),
		Schema:         NewChain[[]SchemaNode, *PageView](),
		Sitemaps:       NewChain[[]string, struct{}](),
		SitemapEntry:   NewChain[SitemapEntry, int64](),
		SitemapExclude: NewChain[[]int64, string](),
	}
}

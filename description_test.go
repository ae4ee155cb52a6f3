package seotoolkit

import (
	"strings"
	"testing"
)

func applyDescription(a *App, req *PageRequest) string {
	view := &PageView{Context: a.ResolveContext(req), Request: req}
	return a.Hooks.Description.Apply("", view)
}

func TestDescriptionSingularOverride(t *testing.T) {
	a := newTestApp(t)
	id := seedPost(t, a, Post{Slug: "p", Title: "P", Content: "content", Excerpt: "the excerpt"})
	if err := a.Store.SetPostMeta(id, MetaDescription, "Hand-written description"); err != nil {
		t.Fatalf("SetPostMeta: %v", err)
	}

	got := applyDescription(a, &PageRequest{Singular: true, PostType: "post", PostID: id})
	if got != "Hand-written description" {
		t.Errorf("description = %q, want override", got)
	}
}

func TestDescriptionSingularExcerptFallback(t *testing.T) {
	a := newTestApp(t)
	id := seedPost(t, a, Post{Slug: "p", Title: "P", Content: "content", Excerpt: "the excerpt"})

	got := applyDescription(a, &PageRequest{Singular: true, PostType: "post", PostID: id})
	if got != "the excerpt" {
		t.Errorf("description = %q, want excerpt", got)
	}
}

func TestDescriptionSingularContentTruncation(t *testing.T) {
	a := newTestApp(t)
	long := "<p>" + strings.Repeat("word ", 60) + "</p>"
	id := seedPost(t, a, Post{Slug: "p", Title: "P", Content: long})

	got := applyDescription(a, &PageRequest{Singular: true, PostType: "post", PostID: id})
	if len(got) > 150 {
		t.Errorf("description length = %d, want <= 150", len(got))
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("description contains markup: %q", got)
	}
	if got == "" {
		t.Error("description is empty, want truncated content")
	}
}

func TestDescriptionFrontpageTaglineFallback(t *testing.T) {
	a := newTestApp(t)

	got := applyDescription(a, &PageRequest{FrontPage: true})
	if got != "Fresh widgets daily" {
		t.Errorf("description = %q, want tagline", got)
	}
}

func TestDescriptionFrontpageDefaultOption(t *testing.T) {
	a := newTestApp(t)
	a.Settings().DescriptionOptions[ContextFrontpage] = "%default%"
	a.Settings().DescriptionDefault = "The default line"

	got := applyDescription(a, &PageRequest{FrontPage: true})
	if got != "The default line" {
		t.Errorf("description = %q, want default option", got)
	}
}

func TestDescriptionTaxonomyOption(t *testing.T) {
	a := newTestApp(t)
	id, err := a.Store.SaveTerm(Term{Taxonomy: "category", Slug: "news", Name: "News", Description: "All the news", Count: 1})
	if err != nil {
		t.Fatalf("SaveTerm: %v", err)
	}
	req := &PageRequest{Taxonomy: "category", TermID: id}

	// Without the %description% option the taxonomy contributes nothing.
	if got := applyDescription(a, req); got != "" {
		t.Errorf("description = %q, want empty without option", got)
	}

	a.Settings().DescriptionOptions[Context("category")] = "%description%"
	if got := applyDescription(a, req); got != "All the news" {
		t.Errorf("description = %q, want term description", got)
	}
}

func TestDescriptionAuthorBiography(t *testing.T) {
	a := newTestApp(t)
	id, err := a.Store.SaveAuthor(Author{Login: "jdoe", DisplayName: "J. Doe", Biography: "Writes about widgets."})
	if err != nil {
		t.Fatalf("SaveAuthor: %v", err)
	}
	a.Settings().DescriptionOptions[ContextAuthor] = "%biography%"

	got := applyDescription(a, &PageRequest{AuthorArchive: true, AuthorID: id})
	if got != "Writes about widgets." {
		t.Errorf("description = %q, want biography", got)
	}
}

func TestDescriptionPaginatedBlanks(t *testing.T) {
	a := newTestApp(t)
	id := seedPost(t, a, Post{Slug: "p", Title: "P", Excerpt: "the excerpt"})

	got := applyDescription(a, &PageRequest{Singular: true, PostType: "post", PostID: id, Page: 2})
	if got != "" {
		t.Errorf("description = %q, want empty on page 2", got)
	}
}

func TestDescriptionMetatag(t *testing.T) {
	a := newTestApp(t)
	id := seedPost(t, a, Post{Slug: "p", Title: "P", Excerpt: "  spaced\n excerpt  "})

	head := a.Assemble(&PageRequest{Singular: true, PostType: "post", PostID: id})
	found := false
	for _, m := range head.Name {
		if m.Key == "description" {
			found = true
			if m.Content != "spaced excerpt" {
				t.Errorf("description content = %q, want whitespace collapsed", m.Content)
			}
		}
	}
	if !found {
		t.Error("name block missing description meta")
	}
}

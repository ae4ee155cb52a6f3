package seotoolkit

import (
	"fmt"
	"strings"
)

// Title composes the document title for a request: the configured per-context
// format is split on whitespace with the separator token removed, each token
// resolves to a string, and the parts are joined with the configured
// separator. Page 2 and later get a localized "Page N" suffix.
func (a *App) Title(req *PageRequest) string {
	view := &PageView{Context: a.ResolveContext(req), Request: req}
	settings := a.Settings()

	format, ok := settings.TitleFormats[view.Context]
	if !ok || format == "" {
		format = titleFormatDefault
	}
	tokens := strings.Fields(strings.ReplaceAll(format, "%separator%", ""))

	var parts []string
	for _, token := range tokens {
		switch token {
		case "%site-title%":
			parts = append(parts, a.siteTitle(settings))
		case "%tagline%":
			parts = append(parts, a.Config.Tagline)
		default:
			parts = append(parts, a.documentTitle(view, settings))
		}
	}

	if req.Paginated() {
		parts = append(parts, fmt.Sprintf("Page %d", req.Page))
	}

	parts = FilterEmpty(a.Hooks.Title.Apply(parts, view))
	return strings.Join(parts, " "+settings.TitleSeparator+" ")
}

// siteTitle returns the static front page's title override when one exists,
// otherwise the configured site name.
func (a *App) siteTitle(settings *Settings) string {
	if settings.FrontPageID != 0 {
		if title, err := a.Store.PostMeta(settings.FrontPageID, MetaTitle); err == nil && title != "" {
			return title
		}
	}
	return a.Config.Name
}

// documentTitle resolves the entity-specific title part for the current page.
func (a *App) documentTitle(view *PageView, settings *Settings) string {
	req := view.Request

	switch {
	case req.FrontPage:
		return a.siteTitle(settings)

	case req.Home, req.Singular:
		postID := req.PostID
		if req.Home && postID == 0 {
			postID = settings.BlogPageID
		}
		return a.postTitle(postID)

	case req.Taxonomy != "":
		if title, err := a.Store.TermMeta(req.TermID, MetaTitle); err == nil && title != "" {
			return title
		}
		term, err := a.Store.GetTerm(req.TermID)
		if err != nil {
			a.logErr(err)
			return ""
		}
		return term.Name

	case req.AuthorArchive:
		author, err := a.Store.GetAuthor(req.AuthorID)
		if err != nil {
			a.logErr(err)
			return ""
		}
		return author.DisplayName

	case req.DateArchive:
		return req.Date

	case req.TypeArchive:
		return typeLabel(req.PostType)

	case req.Search:
		return fmt.Sprintf("Search results for “%s”", req.Query)

	case req.NotFound:
		return "Page not found"
	}
	return ""
}

// postTitle returns a post's title override, falling back to the raw post
// title with markup stripped.
func (a *App) postTitle(postID int64) string {
	if postID == 0 {
		return ""
	}
	if title, err := a.Store.PostMeta(postID, MetaTitle); err == nil && title != "" {
		return StripTags(title)
	}
	post, err := a.Store.GetPost(postID)
	if err != nil {
		a.logErr(err)
		return ""
	}
	return StripTags(post.Title)
}

package seotoolkit

import (
	"fmt"
	"math"
	"net/url"
)

// robotsIndexDefaults are the directives dropped post-hoc when the
// "do not emit index" switch is set: crawlers assume them anyway.
var robotsIndexDefaults = map[string]bool{
	"index":         true,
	"index, follow": true,
}

// setupRobots registers the robots directive chain. The paginated filter is
// registered at the maximum priority so it takes absolute precedence over
// every per-entity override.
func (a *App) setupRobots() {
	a.Hooks.Robots.Add(10, a.robotsSingular)
	a.Hooks.Robots.Add(10, a.robotsTaxonomies)
	a.Hooks.Robots.Add(10, a.robotsWebsite)
	a.Hooks.Robots.Add(math.MaxInt, a.robotsPaginated)

	a.Hooks.Metadata.Add(4, a.robotsMetatags)
}

// robotsMetatags merges the resolved directive list into the name chain,
// one meta tag per directive.
func (a *App) robotsMetatags(metatags Fragment, view *PageView) Fragment {
	robots := a.Hooks.Robots.Apply(nil, view)

	if a.Settings().OmitIndexDirective {
		var kept []string
		for _, directive := range robots {
			if !robotsIndexDefaults[directive] {
				kept = append(kept, directive)
			}
		}
		robots = kept
	}
	if len(robots) == 0 {
		return metatags
	}

	var children Fragment
	for _, directive := range robots {
		children = append(children, Meta{Key: "robots", Content: directive})
	}
	return metatags.AddGroup("robots", children)
}

func (a *App) robotsSingular(robots []string, view *PageView) []string {
	req := view.Request
	if !req.Singular {
		return robots
	}
	settings := a.Settings()

	key := cacheKey(fmt.Sprintf("robots-%s", view.Context), req.PostID)
	v, err := cached(a.Cache, key, DayTTL, func() ([]string, error) {
		option, err := a.Store.PostMeta(req.PostID, MetaRobots)
		if err != nil {
			return nil, err
		}

		var out []string
		// The literal sentinel "default"/"Default" defers to the
		// context-level directive.
		if option != "" && option != "default" && option != "Default" {
			out = append(out, option)
		} else {
			directive, ok := settings.RobotsDirectives[view.Context]
			if !ok {
				directive = "index"
			}
			out = append(out, directive)
		}

		for _, toggle := range []struct {
			meta      string
			directive string
		}{
			{MetaNoArchive, "noarchive"},
			{MetaNoSnippet, "nosnippet"},
			{MetaNoImageIndex, "noimageindex"},
		} {
			if v, err := a.Store.PostMeta(req.PostID, toggle.meta); err == nil && v != "" {
				out = append(out, toggle.directive)
			}
		}
		return out, nil
	})
	if err != nil {
		a.logErr(err)
		return robots
	}
	return v
}

func (a *App) robotsTaxonomies(robots []string, view *PageView) []string {
	req := view.Request
	if req.Taxonomy == "" {
		return robots
	}
	settings := a.Settings()

	key := cacheKey(fmt.Sprintf("robots-%s", view.Context), req.TermID)
	v, err := cached(a.Cache, key, DayTTL, func() ([]string, error) {
		value, err := a.Store.TermMeta(req.TermID, MetaRobots)
		if err != nil {
			return nil, err
		}
		if value == "" || value == "default" || value == "Default" {
			var ok bool
			value, ok = settings.RobotsDirectives[view.Context]
			if !ok {
				value = "index, follow"
			}
		}
		return []string{value}, nil
	})
	if err != nil {
		a.logErr(err)
		return robots
	}
	return v
}

// robotsWebsite resolves the context-level directive for pages with no
// per-entity override store (front page, archives, search, 404).
func (a *App) robotsWebsite(robots []string, view *PageView) []string {
	req := view.Request
	if req.Singular || req.Taxonomy != "" {
		return robots
	}
	settings := a.Settings()

	directive, ok := settings.RobotsDirectives[view.Context]
	if !ok {
		directive = "index"
	}
	return append(robots, directive)
}

// robotsPaginated replaces the whole directive list on page 2+ with the
// configured paginated-pages directive, irrespective of any override.
func (a *App) robotsPaginated(robots []string, view *PageView) []string {
	if !view.Request.Paginated() {
		return robots
	}
	return []string{a.Settings().RobotsPaginated}
}

// Canonical resolves the canonical URL for a request. Error pages have no
// canonical; paginated views get a page/N/ suffix.
func (a *App) Canonical(req *PageRequest) string {
	if req.NotFound {
		return ""
	}
	view := &PageView{Context: a.ResolveContext(req), Request: req}

	var canonical string
	switch {
	case req.FrontPage:
		canonical = BuildURL(a.Config.URL)

	case req.Singular:
		post, err := a.Store.GetPost(req.PostID)
		if err != nil {
			a.logErr(err)
			break
		}
		canonical = a.PermalinkPost(post.Type, post.Slug)

	case req.Taxonomy != "":
		term, err := a.Store.GetTerm(req.TermID)
		if err != nil {
			a.logErr(err)
			break
		}
		canonical = a.PermalinkTerm(term.Taxonomy, term.Slug)

	case req.AuthorArchive:
		author, err := a.Store.GetAuthor(req.AuthorID)
		if err != nil {
			a.logErr(err)
			break
		}
		canonical = a.PermalinkAuthor(author.Login)

	case req.TypeArchive:
		canonical = a.PermalinkArchive(req.PostType)

	case req.Search:
		canonical = BuildURL(a.Config.URL, "search") + "?s=" + url.QueryEscape(req.Query)
	}

	if canonical != "" && req.Paginated() {
		canonical += fmt.Sprintf("page/%d/", req.Page)
	}
	return a.Hooks.Canonical.Apply(canonical, view)
}

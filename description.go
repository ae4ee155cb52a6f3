package seotoolkit

import "fmt"

// setupDescription registers the description resolution chain. Each filter
// returns on the first non-empty result for its context; the paginated
// filter runs last and blanks the description on page 2+.
func (a *App) setupDescription() {
	a.Hooks.Description.Add(10, a.descriptionFrontpage)
	a.Hooks.Description.Add(10, a.descriptionBlog)
	a.Hooks.Description.Add(10, a.descriptionSingular)
	a.Hooks.Description.Add(10, a.descriptionTaxonomies)
	a.Hooks.Description.Add(10, a.descriptionAuthor)
	a.Hooks.Description.Add(10, a.descriptionPaginated)

	a.Hooks.Metadata.Add(2, a.descriptionMetatags)
}

// descriptionMetatags merges the resolved description into the name chain.
func (a *App) descriptionMetatags(metatags Fragment, view *PageView) Fragment {
	description := a.Hooks.Description.Apply("", view)
	if description == "" {
		return metatags
	}
	return metatags.Add("description", CollapseWhitespace(StripTags(description)))
}

func (a *App) descriptionFrontpage(description string, view *PageView) string {
	if view.Context != ContextFrontpage {
		return description
	}
	settings := a.Settings()

	key := cacheKey("description-frontpage", settings.FrontPageID)
	v, err := cached(a.Cache, key, DayTTL, func() (string, error) {
		if settings.FrontPageID != 0 {
			if override, err := a.Store.PostMeta(settings.FrontPageID, MetaDescription); err == nil && override != "" {
				return override, nil
			}
		}

		option, ok := settings.DescriptionOptions[ContextFrontpage]
		if !ok {
			option = "%default%"
		}
		var d string
		switch option {
		case "%default%":
			d = settings.DescriptionDefault
		case "%tagline%":
			d = a.Config.Tagline
		}
		if d == "" {
			d = a.Config.Tagline
		}
		return d, nil
	})
	if err != nil {
		a.logErr(err)
		return description
	}
	return v
}

func (a *App) descriptionBlog(description string, view *PageView) string {
	if view.Context != ContextBlog {
		return description
	}
	settings := a.Settings()

	key := cacheKey("description-blog", settings.BlogPageID)
	v, err := cached(a.Cache, key, DayTTL, func() (string, error) {
		if settings.BlogPageID != 0 {
			if override, err := a.Store.PostMeta(settings.BlogPageID, MetaDescription); err == nil && override != "" {
				return override, nil
			}
		}

		option, ok := settings.DescriptionOptions[ContextBlog]
		if !ok {
			option = "%default%"
		}
		switch option {
		case "%excerpt%":
			if settings.BlogPageID == 0 {
				return "", nil
			}
			post, err := a.Store.GetPost(settings.BlogPageID)
			if err != nil {
				return "", nil
			}
			return post.Excerpt, nil
		case "%tagline%":
			return a.Config.Tagline, nil
		}
		return "", nil
	})
	if err != nil {
		a.logErr(err)
		return description
	}
	return v
}

func (a *App) descriptionSingular(description string, view *PageView) string {
	req := view.Request
	if !req.Singular {
		return description
	}
	settings := a.Settings()

	key := cacheKey(fmt.Sprintf("description-%s", view.Context), req.PostID)
	v, err := cached(a.Cache, key, DayTTL, func() (string, error) {
		if override, err := a.Store.PostMeta(req.PostID, MetaDescription); err == nil && override != "" {
			return override, nil
		}

		post, err := a.Store.GetPost(req.PostID)
		if err != nil {
			return "", err
		}

		option, ok := settings.DescriptionOptions[view.Context]
		if !ok {
			option = "%excerpt%"
		}
		var d string
		if option == "%excerpt%" {
			d = post.Excerpt
		}
		if d == "" {
			// Hard-coded fallback: the first 150 characters of the content.
			d = Excerpt(post.Content, 150)
		}
		return d, nil
	})
	if err != nil {
		a.logErr(err)
		return description
	}
	return v
}

func (a *App) descriptionTaxonomies(description string, view *PageView) string {
	req := view.Request
	if req.Taxonomy == "" {
		return description
	}
	settings := a.Settings()

	key := cacheKey(fmt.Sprintf("description-%s", view.Context), req.TermID)
	v, err := cached(a.Cache, key, WeekTTL, func() (string, error) {
		option, ok := settings.DescriptionOptions[view.Context]
		if !ok {
			option = "%none%"
		}
		if option != "%description%" {
			return "", nil
		}
		if override, err := a.Store.TermMeta(req.TermID, MetaDescription); err == nil && override != "" {
			return override, nil
		}
		term, err := a.Store.GetTerm(req.TermID)
		if err != nil {
			return "", err
		}
		return term.Description, nil
	})
	if err != nil {
		a.logErr(err)
		return description
	}
	return v
}

func (a *App) descriptionAuthor(description string, view *PageView) string {
	req := view.Request
	if view.Context != ContextAuthor {
		return description
	}
	settings := a.Settings()

	key := cacheKey("description-author", req.AuthorID)
	v, err := cached(a.Cache, key, WeekTTL, func() (string, error) {
		option := settings.DescriptionOptions[ContextAuthor]
		if option != "%biography%" {
			return "", nil
		}
		author, err := a.Store.GetAuthor(req.AuthorID)
		if err != nil {
			return "", err
		}
		return author.Biography, nil
	})
	if err != nil {
		a.logErr(err)
		return description
	}
	return v
}

// descriptionPaginated blanks the description on paginated views.
func (a *App) descriptionPaginated(description string, view *PageView) string {
	if view.Request.Paginated() {
		return ""
	}
	return description
}

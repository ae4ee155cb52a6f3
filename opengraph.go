package seotoolkit

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingDimensions is returned when an attachment lacks the stored
// width/height required by the Open Graph and Twitter image contracts.
// Emitting an image tag without dimensions is known-invalid, so the fragment
// fails explicitly instead of silently omitting the fields.
var ErrMissingDimensions = errors.New("seotoolkit: attachment missing image dimensions")

// setupOpenGraph registers the Open Graph provider on the property chain.
func (a *App) setupOpenGraph() {
	a.Hooks.Property.Add(4, a.opengraphMetatags)
}

func (a *App) opengraphMetatags(metatags Fragment, view *PageView) Fragment {
	if !a.Settings().OpenGraphEnabled {
		return metatags
	}
	opengraph, err := a.OpenGraph(view)
	if err != nil {
		// One failed fragment never aborts the response.
		a.logErr(err)
		return metatags
	}
	return metatags.Merge(opengraph)
}

// OpenGraph computes the Open Graph fragment for a page view. Only the
// front page and singular content carry Open Graph markup.
func (a *App) OpenGraph(view *PageView) (Fragment, error) {
	switch {
	case view.Context == ContextFrontpage:
		opengraph, err := a.opengraphWebsite()
		if err != nil {
			return nil, err
		}
		// Site verification identifiers are attached on the front page only.
		return a.facebookIDs(opengraph), nil
	case view.Request.Singular:
		return a.opengraphArticle(view)
	}
	return nil, nil
}

func (a *App) opengraphWebsite() (Fragment, error) {
	settings := a.Settings()

	key := cacheKey("facebook-website", settings.FrontPageID)
	return cached(a.Cache, key, DayTTL, func() (Fragment, error) {
		title := settings.Facebook.Title
		if title == "" {
			title = a.Config.Name
		}
		description := CollapseWhitespace(settings.Facebook.Description)
		if description == "" {
			description = a.Config.Tagline
		}

		opengraph := Fragment{
			{Key: "og:type", Content: "website"},
			{Key: "og:site_name", Content: a.Config.Name},
			{Key: "og:url", Content: BuildURL(a.Config.URL)},
			{Key: "og:title", Content: title},
			{Key: "og:description", Content: description},
		}

		if settings.Facebook.ImageID != 0 {
			attachment, err := a.Store.GetAttachment(settings.Facebook.ImageID)
			if err != nil {
				return nil, err
			}
			image, err := opengraphImage(attachment)
			if err != nil {
				return nil, err
			}
			opengraph = opengraph.AddGroup("og:images", image)
		}
		return opengraph, nil
	})
}

func (a *App) opengraphArticle(view *PageView) (Fragment, error) {
	postID := view.Request.PostID

	key := cacheKey("facebook-article", postID)
	return cached(a.Cache, key, DayTTL, func() (Fragment, error) {
		post, err := a.Store.GetPost(postID)
		if err != nil {
			return nil, err
		}

		title, err := a.Store.PostMeta(postID, MetaFacebookTitle)
		if err != nil {
			return nil, err
		}
		if title == "" {
			title = a.postTitle(postID)
		}

		description, err := a.Store.PostMeta(postID, MetaFacebookDescription)
		if err != nil {
			return nil, err
		}
		description = CollapseWhitespace(description)
		if description == "" {
			description = Excerpt(post.Content, 150)
		}

		opengraph := Fragment{
			{Key: "og:type", Content: "article"},
			{Key: "og:site_name", Content: a.Config.Name},
			{Key: "og:url", Content: a.PermalinkPost(post.Type, post.Slug)},
			{Key: "og:title", Content: title},
			{Key: "og:description", Content: description},
		}

		images, err := a.opengraphImages(postID)
		if err != nil {
			return nil, err
		}
		if len(images) > 0 {
			opengraph = opengraph.AddGroup("og:images", images)
		}
		return opengraph, nil
	})
}

// opengraphImages resolves a post's image set: explicit override, then
// featured image, then every gallery image.
func (a *App) opengraphImages(postID int64) (Fragment, error) {
	if override, err := a.Store.PostMeta(postID, MetaFacebookImage); err != nil {
		return nil, err
	} else if override != "" {
		id, err := strconv.ParseInt(override, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("seotoolkit: bad image override for post %d: %w", postID, err)
		}
		attachment, err := a.Store.GetAttachment(id)
		if err != nil {
			return nil, err
		}
		return opengraphImage(attachment)
	}

	attachments, err := a.Store.PostImages(postID)
	if err != nil {
		return nil, err
	}
	var images Fragment
	for _, attachment := range attachments {
		image, err := opengraphImage(attachment)
		if err != nil {
			return nil, err
		}
		images = images.AddGroup(strconv.FormatInt(attachment.ID, 10), image)
	}
	return images, nil
}

// opengraphImage builds the per-image property set. Width and height are
// required; their absence is a hard failure of the fragment.
func opengraphImage(attachment Attachment) (Fragment, error) {
	if attachment.Width == 0 || attachment.Height == 0 {
		return nil, fmt.Errorf("%w: attachment %d", ErrMissingDimensions, attachment.ID)
	}
	return Fragment{
		{Key: "og:image", Content: attachment.URL},
		{Key: "og:image:type", Content: attachment.Mime},
		{Key: "og:image:width", Content: strconv.Itoa(attachment.Width)},
		{Key: "og:image:height", Content: strconv.Itoa(attachment.Height)},
	}, nil
}

// facebookIDs attaches the fb:admins and fb:app_id verification tags when
// configured.
func (a *App) facebookIDs(metatags Fragment) Fragment {
	settings := a.Settings()
	if settings.Facebook.Admins != "" {
		metatags = metatags.Add("fb:admins", settings.Facebook.Admins)
	}
	if settings.Facebook.AppID != "" {
		metatags = metatags.Add("fb:app_id", settings.Facebook.AppID)
	}
	return metatags
}

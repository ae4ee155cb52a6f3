package seotoolkit

import (
	"fmt"
	"regexp"
	"strconv"
)

// twitterProfileRe extracts the handle from a stored twitter.com profile URL.
var twitterProfileRe = regexp.MustCompile(`(?i)^https?://(?:www\.)?twitter\.com/([A-Za-z0-9_]+)/?`)

// setupTwitter registers the Twitter Cards provider on the twitter chain.
func (a *App) setupTwitter() {
	a.Hooks.Twitter.Add(6, a.twitterMetatags)
}

func (a *App) twitterMetatags(metatags Fragment, view *PageView) Fragment {
	if !a.Settings().TwitterEnabled {
		return metatags
	}
	twitter, err := a.TwitterCard(view)
	if err != nil {
		a.logErr(err)
		return metatags
	}
	return metatags.Merge(twitter)
}

// TwitterCard computes the Twitter Cards fragment for a page view. Only the
// front page and singular content carry card markup, and a card never holds
// more than one image.
func (a *App) TwitterCard(view *PageView) (Fragment, error) {
	switch {
	case view.Context == ContextFrontpage:
		return a.twitterWebsite()
	case view.Request.Singular:
		return a.twitterArticle(view)
	}
	return nil, nil
}

func (a *App) twitterWebsite() (Fragment, error) {
	settings := a.Settings()

	key := cacheKey("twitter-website", settings.FrontPageID)
	return cached(a.Cache, key, DayTTL, func() (Fragment, error) {
		title := settings.Twitter.Title
		if title == "" {
			title = a.Config.Name
		}
		description := CollapseWhitespace(settings.Twitter.Description)
		if description == "" {
			description = a.Config.Tagline
		}

		twitter := Fragment{
			{Key: "twitter:card", Content: twitterCardKind(settings.Twitter.Card, "")},
			{Key: "twitter:title", Content: title},
			{Key: "twitter:description", Content: description},
		}
		if settings.Twitter.Site != "" {
			twitter = twitter.Add("twitter:site", settings.Twitter.Site)
		}

		if settings.Twitter.ImageID != 0 {
			attachment, err := a.Store.GetAttachment(settings.Twitter.ImageID)
			if err != nil {
				return nil, err
			}
			image, err := twitterImage(attachment)
			if err != nil {
				return nil, err
			}
			twitter = twitter.Merge(image)
		}
		return twitter, nil
	})
}

func (a *App) twitterArticle(view *PageView) (Fragment, error) {
	postID := view.Request.PostID

	key := cacheKey("twitter-article", postID)
	return cached(a.Cache, key, DayTTL, func() (Fragment, error) {
		post, err := a.Store.GetPost(postID)
		if err != nil {
			return nil, err
		}
		settings := a.Settings()

		card, err := a.Store.PostMeta(postID, MetaTwitterCard)
		if err != nil {
			return nil, err
		}

		title, err := a.Store.PostMeta(postID, MetaTwitterTitle)
		if err != nil {
			return nil, err
		}
		if title == "" {
			title = a.postTitle(postID)
		}

		description, err := a.Store.PostMeta(postID, MetaTwitterDescription)
		if err != nil {
			return nil, err
		}
		description = CollapseWhitespace(description)
		if description == "" {
			description = Excerpt(post.Content, 150)
		}

		twitter := Fragment{
			{Key: "twitter:card", Content: twitterCardKind(card, settings.Twitter.Card)},
			{Key: "twitter:title", Content: title},
			{Key: "twitter:description", Content: description},
		}
		if settings.Twitter.Site != "" {
			twitter = twitter.Add("twitter:site", settings.Twitter.Site)
		}
		if creator := a.twitterCreator(post.AuthorID); creator != "" {
			twitter = twitter.Add("twitter:creator", creator)
		}

		image, err := a.twitterArticleImage(postID)
		if err != nil {
			return nil, err
		}
		return twitter.Merge(image), nil
	})
}

// twitterArticleImage picks the single card image: the explicit override,
// otherwise the featured image. Posts without either simply carry no image.
func (a *App) twitterArticleImage(postID int64) (Fragment, error) {
	override, err := a.Store.PostMeta(postID, MetaTwitterImage)
	if err != nil {
		return nil, err
	}
	var attachment Attachment
	if override != "" {
		id, err := strconv.ParseInt(override, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("seotoolkit: bad image override for post %d: %w", postID, err)
		}
		attachment, err = a.Store.GetAttachment(id)
		if err != nil {
			return nil, err
		}
	} else {
		attachment, err = a.Store.FeaturedImage(postID)
		if err == ErrNotFound {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return twitterImage(attachment)
}

func twitterImage(attachment Attachment) (Fragment, error) {
	if attachment.Width == 0 || attachment.Height == 0 {
		return nil, fmt.Errorf("%w: attachment %d", ErrMissingDimensions, attachment.ID)
	}
	image := Fragment{{Key: "twitter:image", Content: attachment.URL}}
	if attachment.Caption != "" {
		image = image.Add("twitter:image:alt", attachment.Caption)
	}
	return image, nil
}

// twitterCreator derives the @handle from the author's stored profile URL.
func (a *App) twitterCreator(authorID int64) string {
	author, err := a.Store.GetAuthor(authorID)
	if err != nil {
		if err != ErrNotFound {
			a.logErr(err)
		}
		return ""
	}
	m := twitterProfileRe.FindStringSubmatch(author.TwitterURL)
	if m == nil {
		return ""
	}
	return "@" + m[1]
}

// twitterCardKind resolves the card type: the per-post value unless empty or
// the "default" sentinel, then the site-wide setting, then "summary".
func twitterCardKind(card, fallback string) string {
	if card == "" || card == "default" || card == "Default" {
		card = fallback
	}
	if card == "" {
		card = "summary"
	}
	return card
}

package seotoolkit

import (
	"encoding/json"
	"fmt"
	"io"
)

// SchemaNode is one JSON-LD node in the @graph array.
type SchemaNode map[string]any

// setupSchema registers the structured data providers. The profile node runs
// at priority 5 so the searchbox and article nodes always follow it.
func (a *App) setupSchema() {
	a.Hooks.Schema.Add(5, a.schemaProfile)
	a.Hooks.Schema.Add(10, a.schemaSearchBox)
	a.Hooks.Schema.Add(10, a.schemaArticle)
}

// schemaID is the stable node identifier cross-referenced by the article
// publisher field.
func (a *App) schemaID() string {
	switch a.Settings().WebsiteProfile {
	case "organization":
		return BuildURL(a.Config.URL) + "#organization"
	default:
		return BuildURL(a.Config.URL) + "#person"
	}
}

// schemaProfile contributes the Organization or Person node selected by the
// website profile setting. An unrecognized profile falls back to Person.
func (a *App) schemaProfile(schema []SchemaNode, view *PageView) []SchemaNode {
	switch a.Settings().WebsiteProfile {
	case "organization":
		return append(schema, a.schemaOrganization())
	default:
		node, err := a.schemaPerson()
		if err != nil {
			a.logErr(err)
			return schema
		}
		return append(schema, node)
	}
}

func (a *App) schemaOrganization() SchemaNode {
	settings := a.Settings()

	name := settings.Organization.Name
	if name == "" {
		name = a.Config.Name
	}

	node := SchemaNode{
		"@type": "Organization",
		"@id":   a.schemaID(),
		"name":  name,
		"url":   BuildURL(a.Config.URL),
	}
	if settings.Organization.LogoURL != "" {
		node["logo"] = settings.Organization.LogoURL
	}
	return node
}

// schemaPerson resolves the configured username against the author store. An
// empty or unresolvable username yields no node.
func (a *App) schemaPerson() (SchemaNode, error) {
	settings := a.Settings()

	username := settings.Person.Username
	if username == "" {
		return nil, nil
	}
	author, err := a.Store.GetAuthorByLogin(username)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seotoolkit: resolve person profile %q: %w", username, err)
	}

	image := settings.Person.AvatarURL
	if image == "" {
		image = author.AvatarURL
	}

	imageID := BuildURL(a.Config.URL) + "#image"
	return SchemaNode{
		"@type": []string{"Person", "Organization"},
		"@id":   a.schemaID(),
		"name":  author.DisplayName,
		"url":   BuildURL(a.Config.URL),
		"image": SchemaNode{
			"@type": "ImageObject",
			"@id":   imageID,
			"url":   image,
		},
		"logo": SchemaNode{"@id": imageID},
	}, nil
}

// schemaSearchBox contributes the sitelinks searchbox node on every page.
func (a *App) schemaSearchBox(schema []SchemaNode, view *PageView) []SchemaNode {
	base := BuildURL(a.Config.URL)
	return append(schema, SchemaNode{
		"@type": "WebSite",
		"url":   base,
		"potentialAction": SchemaNode{
			"@type":       "SearchAction",
			"target":      base + "?s={search_term_string}",
			"query-input": "required name=search_term_string",
		},
	})
}

// schemaArticle contributes the article node for singular post and page
// views, and only when a website profile is configured to publish under.
func (a *App) schemaArticle(schema []SchemaNode, view *PageView) []SchemaNode {
	if view.Context != "post" && view.Context != "page" {
		return schema
	}
	profile := a.Settings().WebsiteProfile
	if profile != "person" && profile != "organization" {
		return schema
	}

	key := cacheKey("schema-article", view.Request.PostID)
	node, err := cached(a.Cache, key, DayTTL, func() (SchemaNode, error) {
		return a.articleNode(view.Request.PostID)
	})
	if err != nil {
		a.logErr(err)
		return schema
	}
	return append(schema, node)
}

func (a *App) articleNode(postID int64) (SchemaNode, error) {
	post, err := a.Store.GetPost(postID)
	if err != nil {
		return nil, err
	}
	author, err := a.Store.GetAuthor(post.AuthorID)
	if err != nil {
		return nil, err
	}

	images, err := a.articleImages(postID, author)
	if err != nil {
		return nil, err
	}

	return SchemaNode{
		"@type":            "Article",
		"headline":         a.postTitle(postID),
		"mainEntityOfPage": a.PermalinkPost(post.Type, post.Slug),
		"datePublished":    post.PublishedGMT,
		"dateModified":     post.ModifiedGMT,
		"author": SchemaNode{
			"@type": []string{"Person"},
			"name":  author.DisplayName,
			"url":   a.PermalinkAuthor(author.Login),
			"image": author.AvatarURL,
		},
		"image":     images,
		"publisher": SchemaNode{"@id": a.schemaID()},
	}, nil
}

// articleImages lists the post's image URLs, falling back to the author's
// avatar when the post has none.
func (a *App) articleImages(postID int64, author Author) ([]string, error) {
	attachments, err := a.Store.PostImages(postID)
	if err != nil {
		return nil, err
	}
	var urls []string
	for _, attachment := range attachments {
		urls = append(urls, attachment.URL)
	}
	if len(urls) == 0 && author.AvatarURL != "" {
		urls = append(urls, author.AvatarURL)
	}
	return urls, nil
}

// compactSchema drops empty nodes so an all-falsy graph renders nothing.
func compactSchema(schema []SchemaNode) []SchemaNode {
	var kept []SchemaNode
	for _, node := range schema {
		if len(node) > 0 {
			kept = append(kept, node)
		}
	}
	return kept
}

// renderSchema writes the JSON-LD script element, or nothing when the graph
// is empty.
func (a *App) renderSchema(w io.Writer, schema []SchemaNode) error {
	if len(schema) == 0 {
		return nil
	}
	graph := map[string]any{
		"@context": "https://schema.org",
		"@graph":   schema,
	}
	encoded, err := json.Marshal(graph)
	if err != nil {
		return fmt.Errorf("seotoolkit: encode schema graph: %w", err)
	}
	if _, err := fmt.Fprintf(w, "<script type=\"application/ld+json\">%s</script>\n", encoded); err != nil {
		return err
	}
	return nil
}

package seotoolkit

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	reTags       = regexp.MustCompile(`<[^>]*>`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// StripTags removes markup, leaving text content only.
func StripTags(s string) string {
	return reTags.ReplaceAllString(s, "")
}

// CollapseWhitespace folds runs of whitespace into single spaces and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}

// Excerpt strips markup from content, collapses whitespace, and truncates to
// max bytes. Used as the hard-coded description fallback (max 150).
func Excerpt(content string, max int) string {
	s := CollapseWhitespace(StripTags(content))
	if len(s) > max {
		s = s[:max]
	}
	return strings.TrimSpace(s)
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PermalinkPost returns the canonical URL of a post: <base>/<type>/<slug>/.
func (a *App) PermalinkPost(postType, slug string) string {
	return BuildURL(a.Config.URL, postType, slug)
}

// PermalinkTerm returns the canonical URL of a term archive.
func (a *App) PermalinkTerm(taxonomy, slug string) string {
	return BuildURL(a.Config.URL, taxonomy, slug)
}

// PermalinkAuthor returns the canonical URL of an author archive.
func (a *App) PermalinkAuthor(login string) string {
	return BuildURL(a.Config.URL, "author", login)
}

// PermalinkArchive returns the canonical URL of a post type archive.
func (a *App) PermalinkArchive(postType string) string {
	return BuildURL(a.Config.URL, postType)
}

// SitemapURL returns the public URL of a sitemap bucket document.
func (a *App) SitemapURL(bucket string) string {
	base := strings.TrimRight(a.Config.URL, "/")
	if bucket == "index" {
		return base + "/sitemap.xml"
	}
	return fmt.Sprintf("%s/sitemap-%s.xml", base, bucket)
}

// typeLabel derives a display label from a post type or taxonomy name when
// the registration carries none ("blog_post" -> "Blog post").
func typeLabel(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

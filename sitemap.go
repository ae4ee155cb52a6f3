package seotoolkit

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"time"
)

// ErrNoSitemap is returned for a bucket identifier that resolves to no
// document. The HTTP layer answers 404 with no body.
var ErrNoSitemap = errors.New("seotoolkit: no such sitemap")

const (
	sitemapNS      = "http://www.sitemaps.org/schemas/sitemap/0.9"
	sitemapImageNS = "http://www.google.com/schemas/sitemap-image/1.1"

	// A sitemap year. Entries modified longer ago than this are "yearly".
	yearSeconds = 31556952
)

// SitemapEntry is one row of a bucket document. Image URLs are attached by
// the entry extension chain.
type SitemapEntry struct {
	Loc        string   `json:"loc"`
	LastMod    string   `json:"lastmod,omitempty"`
	ChangeFreq string   `json:"changefreq,omitempty"`
	Images     []string `json:"images,omitempty"`
}

type sitemapIndex struct {
	XMLName  xml.Name          `xml:"sitemapindex"`
	XMLNS    string            `xml:"xmlns,attr"`
	Sitemaps []sitemapLocation `xml:"sitemap"`
}

type sitemapLocation struct {
	Loc string `xml:"loc"`
}

type sitemapURLSet struct {
	XMLName    xml.Name     `xml:"urlset"`
	XMLNS      string       `xml:"xmlns,attr"`
	XMLNSImage string       `xml:"xmlns:image,attr,omitempty"`
	URLs       []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string         `xml:"loc"`
	LastMod    string         `xml:"lastmod,omitempty"`
	ChangeFreq string         `xml:"changefreq,omitempty"`
	Images     []sitemapImage `xml:"image:image,omitempty"`
}

type sitemapImage struct {
	Loc string `xml:"image:loc"`
}

// setupSitemaps registers the sitemap extension filters: the static front
// page is dropped from the page bucket, and image lists are attached to post
// entries when enabled.
func (a *App) setupSitemaps() {
	a.Hooks.SitemapExclude.Add(99, a.sitemapExcludeFrontPage)
	a.Hooks.SitemapEntry.Add(10, a.sitemapEntryImages)
}

func (a *App) sitemapExcludeFrontPage(ids []int64, bucket string) []int64 {
	if bucket != "page" {
		return ids
	}
	if id := a.Settings().FrontPageID; id != 0 {
		ids = append(ids, id)
	}
	return ids
}

// sitemapEntryImages attaches the post's image URLs unless the image sitemap
// is disabled or the post carries the noimageindex toggle.
func (a *App) sitemapEntryImages(entry SitemapEntry, postID int64) SitemapEntry {
	if !a.Settings().SitemapImages {
		return entry
	}
	if v, err := a.Store.PostMeta(postID, MetaNoImageIndex); err != nil {
		a.logErr(err)
		return entry
	} else if v != "" {
		return entry
	}

	attachments, err := a.Store.PostImages(postID)
	if err != nil {
		a.logErr(err)
		return entry
	}
	for _, attachment := range attachments {
		entry.Images = append(entry.Images, attachment.URL)
	}
	return entry
}

// SitemapBuckets enumerates the non-empty bucket identifiers: home, every
// post type with published content (attachments excluded), every taxonomy
// with populated terms, plus index and author. The list passes through the
// Sitemaps extension chain so installations can drop buckets.
func (a *App) SitemapBuckets() ([]string, error) {
	buckets := []string{"home"}

	types, err := a.Store.PostTypes()
	if err != nil {
		return nil, fmt.Errorf("seotoolkit: enumerate sitemap buckets: %w", err)
	}
	for _, t := range types {
		if t.Name == "attachment" {
			continue
		}
		count, err := a.Store.CountPublished(t.Name)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			buckets = append(buckets, t.Name)
		}
	}

	taxonomies, err := a.Store.Taxonomies()
	if err != nil {
		return nil, fmt.Errorf("seotoolkit: enumerate sitemap buckets: %w", err)
	}
	for _, tax := range taxonomies {
		count, err := a.Store.CountTerms(tax.Name)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			buckets = append(buckets, tax.Name)
		}
	}

	buckets = append(buckets, "index", "author")
	return FilterEmpty(a.Hooks.Sitemaps.Apply(buckets, struct{}{})), nil
}

// Sitemap resolves a bucket identifier to its XML document. Unknown buckets
// and disabled sitemaps return ErrNoSitemap. Documents are cached for a day.
func (a *App) Sitemap(bucket string) ([]byte, error) {
	if !a.Settings().SitemapsEnabled {
		return nil, ErrNoSitemap
	}
	buckets, err := a.SitemapBuckets()
	if err != nil {
		return nil, err
	}
	known := false
	for _, b := range buckets {
		if b == bucket {
			known = true
			break
		}
	}
	if !known {
		return nil, ErrNoSitemap
	}

	key := cacheKey("sitemap-"+bucket, 0)
	document, err := cached(a.Cache, key, DayTTL, func() (string, error) {
		return a.buildSitemap(bucket, buckets)
	})
	if err != nil {
		return nil, err
	}
	return []byte(document), nil
}

func (a *App) buildSitemap(bucket string, buckets []string) (string, error) {
	switch bucket {
	case "index":
		return a.sitemapIndexDocument(buckets)
	case "home":
		return a.sitemapHomeDocument()
	case "author":
		return a.sitemapAuthorDocument()
	}

	types, err := a.Store.PostTypes()
	if err != nil {
		return "", err
	}
	for _, t := range types {
		if t.Name == bucket {
			return a.sitemapPostDocument(bucket)
		}
	}
	taxonomies, err := a.Store.Taxonomies()
	if err != nil {
		return "", err
	}
	for _, tax := range taxonomies {
		if tax.Name == bucket {
			return a.sitemapTermDocument(bucket)
		}
	}
	return "", ErrNoSitemap
}

func (a *App) sitemapIndexDocument(buckets []string) (string, error) {
	index := sitemapIndex{XMLNS: sitemapNS}
	for _, bucket := range buckets {
		if bucket == "index" {
			continue
		}
		index.Sitemaps = append(index.Sitemaps, sitemapLocation{Loc: a.SitemapURL(bucket)})
	}
	return a.encodeSitemap(index)
}

func (a *App) sitemapHomeDocument() (string, error) {
	lastmod, err := a.Store.RecentPostDate()
	if err == ErrNotFound || lastmod == "" {
		lastmod = time.Now().UTC().Format(time.RFC3339)
	} else if err != nil {
		return "", err
	}

	urlset := sitemapURLSet{
		XMLNS: sitemapNS,
		URLs: []sitemapURL{{
			Loc:        BuildURL(a.Config.URL),
			LastMod:    lastmod,
			ChangeFreq: "daily",
		}},
	}
	return a.encodeSitemap(urlset)
}

func (a *App) sitemapAuthorDocument() (string, error) {
	authors, err := a.Store.AuthorsWithPosts()
	if err != nil {
		return "", err
	}

	urlset := sitemapURLSet{XMLNS: sitemapNS}
	for _, author := range authors {
		urlset.URLs = append(urlset.URLs, sitemapURL{
			Loc:        a.PermalinkAuthor(author.Login),
			ChangeFreq: "monthly",
		})
	}
	return a.encodeSitemap(urlset)
}

func (a *App) sitemapPostDocument(postType string) (string, error) {
	posts, err := a.Store.SitemapPosts(postType, a.Settings().SitemapLimit)
	if err != nil {
		return "", err
	}

	excluded := map[int64]bool{}
	for _, id := range a.Hooks.SitemapExclude.Apply(nil, postType) {
		excluded[id] = true
	}

	urlset := sitemapURLSet{XMLNS: sitemapNS, XMLNSImage: sitemapImageNS}
	for _, post := range posts {
		if excluded[post.ID] {
			continue
		}
		entry := SitemapEntry{
			Loc:        a.PermalinkPost(postType, post.Slug),
			LastMod:    post.ModifiedGMT,
			ChangeFreq: changeFrequency(post.ModifiedGMT),
		}
		entry = a.Hooks.SitemapEntry.Apply(entry, post.ID)

		u := sitemapURL{Loc: entry.Loc, LastMod: entry.LastMod, ChangeFreq: entry.ChangeFreq}
		for _, image := range entry.Images {
			u.Images = append(u.Images, sitemapImage{Loc: image})
		}
		urlset.URLs = append(urlset.URLs, u)
	}
	return a.encodeSitemap(urlset)
}

func (a *App) sitemapTermDocument(taxonomy string) (string, error) {
	terms, err := a.Store.SitemapTerms(taxonomy)
	if err != nil {
		return "", err
	}

	excluded := map[int64]bool{}
	for _, id := range a.Hooks.SitemapExclude.Apply(nil, taxonomy) {
		excluded[id] = true
	}

	urlset := sitemapURLSet{XMLNS: sitemapNS}
	for _, term := range terms {
		if excluded[term.ID] {
			continue
		}
		urlset.URLs = append(urlset.URLs, sitemapURL{
			Loc:        a.PermalinkTerm(term.Taxonomy, term.Slug),
			ChangeFreq: "monthly",
		})
	}
	return a.encodeSitemap(urlset)
}

// changeFrequency classifies an entry by age: older than a year is yearly,
// anything newer (or unparseable) is daily.
func changeFrequency(lastmod string) string {
	t, err := time.Parse(time.RFC3339, lastmod)
	if err != nil {
		return "daily"
	}
	if time.Since(t) > yearSeconds*time.Second {
		return "yearly"
	}
	return "daily"
}

// encodeSitemap serializes a document with the XML declaration and the
// stylesheet processing instruction browsers use to render the sitemap.
func (a *App) encodeSitemap(doc any) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, "<?xml-stylesheet type=\"text/xsl\" href=\"%sstatic/sitemap.xsl\"?>\n", BuildURL(a.Config.URL))
	if err := xml.NewEncoder(&buf).Encode(doc); err != nil {
		return "", fmt.Errorf("seotoolkit: encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

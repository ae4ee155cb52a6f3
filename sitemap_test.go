package seotoolkit

import (
	"context"
	"strings"
	"testing"
	"time"
)

func seedSitemapWorld(t *testing.T, a *App) {
	t.Helper()
	if err := a.Store.SavePostType(PostType{Name: "post", Label: "Posts"}); err != nil {
		t.Fatalf("SavePostType: %v", err)
	}
	if err := a.Store.SavePostType(PostType{Name: "page", Label: "Pages"}); err != nil {
		t.Fatalf("SavePostType: %v", err)
	}
	if err := a.Store.SaveTaxonomy(Taxonomy{Name: "category", Label: "Categories"}); err != nil {
		t.Fatalf("SaveTaxonomy: %v", err)
	}
	seedPost(t, a, Post{Slug: "hello", Title: "Hello",
		PublishedGMT: "2026-08-01T00:00:00Z", ModifiedGMT: "2026-08-02T00:00:00Z"})
	if _, err := a.Store.SaveTerm(Term{Taxonomy: "category", Slug: "news", Name: "News", Count: 1}); err != nil {
		t.Fatalf("SaveTerm: %v", err)
	}
}

func TestSitemapBuckets(t *testing.T) {
	a := newTestApp(t)
	seedSitemapWorld(t, a)

	buckets, err := a.SitemapBuckets()
	if err != nil {
		t.Fatalf("SitemapBuckets: %v", err)
	}

	want := map[string]bool{"home": true, "post": true, "category": true, "index": true, "author": true}
	got := map[string]bool{}
	for _, b := range buckets {
		got[b] = true
	}
	for b := range want {
		if !got[b] {
			t.Errorf("buckets missing %q: %v", b, buckets)
		}
	}
	// The page type has no published content and contributes no bucket.
	if got["page"] {
		t.Errorf("empty page bucket listed: %v", buckets)
	}
}

func TestSitemapBucketsExclusionFilter(t *testing.T) {
	a := newTestApp(t)
	seedSitemapWorld(t, a)

	a.Hooks.Sitemaps.Add(10, func(buckets []string, _ struct{}) []string {
		var kept []string
		for _, b := range buckets {
			if b != "author" {
				kept = append(kept, b)
			}
		}
		return kept
	})

	buckets, err := a.SitemapBuckets()
	if err != nil {
		t.Fatalf("SitemapBuckets: %v", err)
	}
	for _, b := range buckets {
		if b == "author" {
			t.Errorf("excluded bucket still listed: %v", buckets)
		}
	}
}

func TestSitemapIndexDocument(t *testing.T) {
	a := newTestApp(t)
	seedSitemapWorld(t, a)

	doc, err := a.Sitemap("index")
	if err != nil {
		t.Fatalf("Sitemap(index): %v", err)
	}
	out := string(doc)

	if !strings.Contains(out, "<sitemapindex") {
		t.Errorf("document missing sitemapindex root:\n%s", out)
	}
	if !strings.Contains(out, `<?xml-stylesheet type="text/xsl" href="https://acme.test/static/sitemap.xsl"?>`) {
		t.Errorf("document missing stylesheet instruction:\n%s", out)
	}
	for _, loc := range []string{
		"https://acme.test/sitemap-home.xml",
		"https://acme.test/sitemap-post.xml",
		"https://acme.test/sitemap-category.xml",
		"https://acme.test/sitemap-author.xml",
	} {
		if !strings.Contains(out, "<loc>"+loc+"</loc>") {
			t.Errorf("index missing %s:\n%s", loc, out)
		}
	}
	if strings.Contains(out, "sitemap-index.xml") {
		t.Errorf("index links itself:\n%s", out)
	}
}

func TestSitemapUnknownBucket(t *testing.T) {
	a := newTestApp(t)
	seedSitemapWorld(t, a)

	if _, err := a.Sitemap("nonsense"); err != ErrNoSitemap {
		t.Errorf("Sitemap(nonsense) error = %v, want ErrNoSitemap", err)
	}
}

func TestSitemapDisabledToggle(t *testing.T) {
	a := newTestApp(t)
	seedSitemapWorld(t, a)
	a.Settings().SitemapsEnabled = false

	if _, err := a.Sitemap("index"); err != ErrNoSitemap {
		t.Errorf("Sitemap with sitemaps disabled error = %v, want ErrNoSitemap", err)
	}
}

func TestSitemapPostBucketChangeFrequency(t *testing.T) {
	a := newTestApp(t)
	if err := a.Store.SavePostType(PostType{Name: "post", Label: "Posts"}); err != nil {
		t.Fatalf("SavePostType: %v", err)
	}
	recent := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
	ancient := time.Now().UTC().Add(-2 * 365 * 24 * time.Hour).Format(time.RFC3339)
	seedPost(t, a, Post{Slug: "fresh", Title: "Fresh", ModifiedGMT: recent, PublishedGMT: recent})
	seedPost(t, a, Post{Slug: "stale", Title: "Stale", ModifiedGMT: ancient, PublishedGMT: ancient})

	doc, err := a.Sitemap("post")
	if err != nil {
		t.Fatalf("Sitemap(post): %v", err)
	}
	out := string(doc)

	if !strings.Contains(out, "<loc>https://acme.test/post/fresh/</loc>") {
		t.Errorf("missing fresh entry:\n%s", out)
	}
	if !strings.Contains(out, "<changefreq>daily</changefreq>") {
		t.Errorf("missing daily changefreq:\n%s", out)
	}
	if !strings.Contains(out, "<changefreq>yearly</changefreq>") {
		t.Errorf("missing yearly changefreq:\n%s", out)
	}
}

func TestSitemapImageComplement(t *testing.T) {
	a := newTestApp(t)
	if err := a.Store.SavePostType(PostType{Name: "post", Label: "Posts"}); err != nil {
		t.Fatalf("SavePostType: %v", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	pictured := seedPost(t, a, Post{Slug: "pictured", Title: "Pictured", ModifiedGMT: now, PublishedGMT: now})
	bare := seedPost(t, a, Post{Slug: "bare", Title: "Bare", ModifiedGMT: now, PublishedGMT: now})
	for _, id := range []int64{pictured, bare} {
		if _, err := a.Store.SaveAttachment(Attachment{PostID: id, URL: "https://acme.test/img.jpg", Mime: "image/jpeg", Width: 10, Height: 10}); err != nil {
			t.Fatalf("SaveAttachment: %v", err)
		}
	}
	// The noimageindex toggle drops the image list for that entry.
	if err := a.Store.SetPostMeta(bare, MetaNoImageIndex, "1"); err != nil {
		t.Fatalf("SetPostMeta: %v", err)
	}

	doc, err := a.Sitemap("post")
	if err != nil {
		t.Fatalf("Sitemap(post): %v", err)
	}
	out := string(doc)

	if strings.Count(out, "<image:loc>https://acme.test/img.jpg</image:loc>") != 1 {
		t.Errorf("want exactly one image entry:\n%s", out)
	}
	if !strings.Contains(out, `xmlns:image="http://www.google.com/schemas/sitemap-image/1.1"`) {
		t.Errorf("missing image namespace:\n%s", out)
	}
}

func TestSitemapImagesDisabled(t *testing.T) {
	a := newTestApp(t)
	if err := a.Store.SavePostType(PostType{Name: "post", Label: "Posts"}); err != nil {
		t.Fatalf("SavePostType: %v", err)
	}
	a.Settings().SitemapImages = false
	now := time.Now().UTC().Format(time.RFC3339)
	id := seedPost(t, a, Post{Slug: "p", Title: "P", ModifiedGMT: now, PublishedGMT: now})
	if _, err := a.Store.SaveAttachment(Attachment{PostID: id, URL: "https://acme.test/img.jpg", Mime: "image/jpeg", Width: 10, Height: 10}); err != nil {
		t.Fatalf("SaveAttachment: %v", err)
	}

	doc, err := a.Sitemap("post")
	if err != nil {
		t.Fatalf("Sitemap(post): %v", err)
	}
	if strings.Contains(string(doc), "<image:loc>") {
		t.Errorf("image entries emitted while disabled:\n%s", doc)
	}
}

func TestSitemapHomeDocument(t *testing.T) {
	a := newTestApp(t)
	if err := a.Store.SavePostType(PostType{Name: "post", Label: "Posts"}); err != nil {
		t.Fatalf("SavePostType: %v", err)
	}
	seedPost(t, a, Post{Slug: "p", Title: "P", PublishedGMT: "2026-08-01T00:00:00Z", ModifiedGMT: "2026-08-01T00:00:00Z"})

	doc, err := a.Sitemap("home")
	if err != nil {
		t.Fatalf("Sitemap(home): %v", err)
	}
	out := string(doc)
	if !strings.Contains(out, "<loc>https://acme.test/</loc>") {
		t.Errorf("home entry missing site root:\n%s", out)
	}
	if !strings.Contains(out, "<lastmod>2026-08-01T00:00:00Z</lastmod>") {
		t.Errorf("home lastmod not the latest published date:\n%s", out)
	}
}

func TestSitemapAuthorBucket(t *testing.T) {
	a := newTestApp(t)
	seedSitemapWorld(t, a)
	author, err := a.Store.SaveAuthor(Author{Login: "jdoe", DisplayName: "J. Doe"})
	if err != nil {
		t.Fatalf("SaveAuthor: %v", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	seedPost(t, a, Post{Slug: "authored", Title: "A", AuthorID: author, PublishedGMT: now, ModifiedGMT: now})

	doc, err := a.Sitemap("author")
	if err != nil {
		t.Fatalf("Sitemap(author): %v", err)
	}
	out := string(doc)
	if !strings.Contains(out, "<loc>https://acme.test/author/jdoe/</loc>") {
		t.Errorf("author entry missing:\n%s", out)
	}
	if !strings.Contains(out, "<changefreq>monthly</changefreq>") {
		t.Errorf("author changefreq not monthly:\n%s", out)
	}
}

func TestSitemapFrontPageExcludedFromPageBucket(t *testing.T) {
	a := newTestApp(t)
	if err := a.Store.SavePostType(PostType{Name: "page", Label: "Pages"}); err != nil {
		t.Fatalf("SavePostType: %v", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	front := seedPost(t, a, Post{Type: "page", Slug: "front", Title: "Front", PublishedGMT: now, ModifiedGMT: now})
	seedPost(t, a, Post{Type: "page", Slug: "about", Title: "About", PublishedGMT: now, ModifiedGMT: now})
	a.Settings().FrontPageID = front

	doc, err := a.Sitemap("page")
	if err != nil {
		t.Fatalf("Sitemap(page): %v", err)
	}
	out := string(doc)
	if strings.Contains(out, "/page/front/") {
		t.Errorf("front page listed in page bucket:\n%s", out)
	}
	if !strings.Contains(out, "/page/about/") {
		t.Errorf("regular page missing:\n%s", out)
	}
}

func TestSitemapCachedDocumentStable(t *testing.T) {
	a := newTestApp(t)
	seedSitemapWorld(t, a)

	first, err := a.Sitemap("post")
	if err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	// A new post appears only after the cached document expires or the cache
	// is flushed.
	seedPost(t, a, Post{Slug: "later", Title: "Later",
		PublishedGMT: "2026-08-03T00:00:00Z", ModifiedGMT: "2026-08-03T00:00:00Z"})

	second, err := a.Sitemap("post")
	if err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("cached document changed without invalidation")
	}

	if err := a.Cache.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	third, err := a.Sitemap("post")
	if err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	if !strings.Contains(string(third), "/post/later/") {
		t.Errorf("flushed recomputation missing new post:\n%s", third)
	}
}

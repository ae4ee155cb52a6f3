package seotoolkit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSitemapBucketFromPath(t *testing.T) {
	tests := []struct {
		path   string
		bucket string
		ok     bool
	}{
		{"/sitemap.xml", "index", true},
		{"/sitemap-post.xml", "post", true},
		{"/sitemap-category.xml", "category", true},
		{"/sitemap-.xml", "", false},
		{"/sitemap-post.html", "", false},
		{"/sitemapfoo.xml", "", false},
		{"/other.xml", "", false},
	}
	for _, tt := range tests {
		bucket, ok := sitemapBucketFromPath(tt.path)
		if bucket != tt.bucket || ok != tt.ok {
			t.Errorf("sitemapBucketFromPath(%q) = %q, %v; want %q, %v", tt.path, bucket, ok, tt.bucket, tt.ok)
		}
	}
}

func TestHandleSitemapServesXML(t *testing.T) {
	a := newTestApp(t)
	seedSitemapWorld(t, a)

	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)

	if err := a.handleSitemap(c); err != nil {
		t.Fatalf("handleSitemap: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<sitemapindex") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestHandleSitemapUnknownBucket(t *testing.T) {
	a := newTestApp(t)
	seedSitemapWorld(t, a)

	req := httptest.NewRequest(http.MethodGet, "/sitemap-nonsense.xml", nil)
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)

	if err := a.handleSitemap(c); err != nil {
		t.Fatalf("handleSitemap: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}

func TestHandleRobotsTxt(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/robots.txt", nil)
	rec := httptest.NewRecorder()
	if err := a.handleRobotsTxt(a.Echo.NewContext(req, rec)); err != nil {
		t.Fatalf("handleRobotsTxt: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Disallow: /admin/") {
		t.Errorf("body = %q", body)
	}
	if !strings.Contains(body, "Sitemap: https://acme.test/sitemap.xml") {
		t.Errorf("body missing sitemap line: %q", body)
	}

	a.Settings().SitemapsEnabled = false
	rec = httptest.NewRecorder()
	if err := a.handleRobotsTxt(a.Echo.NewContext(req, rec)); err != nil {
		t.Fatalf("handleRobotsTxt: %v", err)
	}
	if strings.Contains(rec.Body.String(), "Sitemap:") {
		t.Errorf("sitemap advertised while disabled: %q", rec.Body.String())
	}
}

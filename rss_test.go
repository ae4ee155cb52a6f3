package seotoolkit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleFeed(t *testing.T) {
	a := newTestApp(t)
	seedPost(t, a, Post{Slug: "hello", Title: "Hello <em>World</em>", Content: "<p>Body text.</p>",
		PublishedGMT: "2026-08-01T12:00:00Z"})

	req := httptest.NewRequest(http.MethodGet, "/feed.xml", nil)
	rec := httptest.NewRecorder()
	if err := a.handleFeed(a.Echo.NewContext(req, rec)); err != nil {
		t.Fatalf("handleFeed: %v", err)
	}

	body := rec.Body.String()
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(body, "<title>Hello World</title>") {
		t.Errorf("item title not stripped of markup:\n%s", body)
	}
	if !strings.Contains(body, "<link>https://acme.test/post/hello/</link>") {
		t.Errorf("item link missing:\n%s", body)
	}
	if !strings.Contains(body, "<description>Body text.</description>") {
		t.Errorf("excerpt fallback missing:\n%s", body)
	}
	if !strings.Contains(body, "<pubDate>Sat, 01 Aug 2026 12:00:00 +0000</pubDate>") {
		t.Errorf("pubDate not RFC1123Z:\n%s", body)
	}
}

func TestHandleFeedNoindexHeader(t *testing.T) {
	a := newTestApp(t)
	a.Settings().FeedNoindex = true

	req := httptest.NewRequest(http.MethodGet, "/feed.xml", nil)
	rec := httptest.NewRecorder()
	if err := a.handleFeed(a.Echo.NewContext(req, rec)); err != nil {
		t.Fatalf("handleFeed: %v", err)
	}
	if got := rec.Header().Get("X-Robots-Tag"); got != "noindex, follow" {
		t.Errorf("X-Robots-Tag = %q", got)
	}
}

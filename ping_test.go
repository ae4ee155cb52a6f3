package seotoolkit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPingSitemap(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("sitemap")
		w.Write([]byte("Thanks for submitting your Sitemap"))
	}))
	defer server.Close()

	a := newTestApp(t)
	a.pingServices = map[string]string{"bing": server.URL + "/ping?sitemap="}

	results := a.PingSitemap(context.Background(), "https://acme.test/sitemap.xml")
	if got := results["bing"]; got != "Thanks for submitting your Sitemap" {
		t.Errorf("bing response = %q", got)
	}
	if gotQuery != "https://acme.test/sitemap.xml" {
		t.Errorf("sitemap query = %q, want the submitted URL decoded", gotQuery)
	}
}

func TestPingSitemapRecordsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	// A server that is already gone.
	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	a := newTestApp(t)
	a.pingServices = map[string]string{
		"bing":   server.URL + "/ping?sitemap=",
		"google": deadURL + "/ping?sitemap=",
	}

	results := a.PingSitemap(context.Background(), "https://acme.test/sitemap.xml")
	if len(results) != 2 {
		t.Fatalf("results = %v, want one entry per service", results)
	}
	if results["bing"] != "ok" {
		t.Errorf("bing = %q, want the healthy response", results["bing"])
	}
	if results["google"] == "" {
		t.Error("google failure left no record")
	}
}

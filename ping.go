package seotoolkit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// defaultPingServices are the search engine notification endpoints. The
// sitemap URL is appended as the query value.
var defaultPingServices = map[string]string{
	"bing":   "https://www.bing.com/ping?sitemap=",
	"google": "https://www.google.com/ping?sitemap=",
}

// PingSitemap notifies every configured service that a sitemap changed and
// returns each service's raw response body keyed by service name. A failed
// call records the failure text under its key; it never aborts the rest.
func (a *App) PingSitemap(ctx context.Context, sitemap string) map[string]string {
	client := &http.Client{Timeout: a.Config.PingTimeout}

	results := make(map[string]string, len(a.pingServices))
	for service, endpoint := range a.pingServices {
		body, err := pingService(ctx, client, endpoint, sitemap)
		if err != nil {
			a.logErr(fmt.Errorf("seotoolkit: ping %s: %w", service, err))
			results[service] = err.Error()
			continue
		}
		results[service] = body
	}
	return results
}

func pingService(ctx context.Context, client *http.Client, endpoint, sitemap string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+url.QueryEscape(sitemap), nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

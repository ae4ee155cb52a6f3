package seotoolkit

import "sort"

// webmasterKeys are the recognized site verification meta names, in emission
// order.
var webmasterKeys = []string{
	"google-site-verification",
	"msvalidate.01",
	"yandex-verification",
	"p:domain_verify",
	"baidu-site-verification",
}

// setupWebmasters registers the site verification provider on the name chain.
// Codes are emitted on every page.
func (a *App) setupWebmasters() {
	a.Hooks.Metadata.Add(10, a.webmastersMetatags)
}

func (a *App) webmastersMetatags(metatags Fragment, view *PageView) Fragment {
	codes := a.Settings().Webmasters
	if len(codes) == 0 {
		return metatags
	}

	for _, key := range webmasterKeys {
		if code := codes[key]; code != "" {
			metatags = metatags.Add(key, code)
		}
	}

	// Unrecognized keys still pass through, in stable order.
	var extra []string
	for key, code := range codes {
		if code == "" || metatags.Has(key) {
			continue
		}
		extra = append(extra, key)
	}
	sort.Strings(extra)
	for _, key := range extra {
		metatags = metatags.Add(key, codes[key])
	}
	return metatags
}

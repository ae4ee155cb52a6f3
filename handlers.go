package seotoolkit

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// handleSitemap serves /sitemap.xml and /sitemap-<bucket>.xml. Unknown
// buckets answer 404 with no body.
func (a *App) handleSitemap(c echo.Context) error {
	bucket, ok := sitemapBucketFromPath(c.Request().URL.Path)
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}

	document, err := a.Sitemap(bucket)
	if err == ErrNoSitemap {
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/xml; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentLength, fmt.Sprintf("%d", len(document)))
	c.Response().WriteHeader(http.StatusOK)
	_, err = c.Response().Write(document)
	return err
}

// sitemapBucketFromPath maps a request path to a bucket identifier:
// /sitemap.xml is the index, /sitemap-<bucket>.xml names a bucket.
func sitemapBucketFromPath(path string) (string, bool) {
	if path == "/sitemap.xml" {
		return "index", true
	}
	if !strings.HasPrefix(path, "/sitemap-") || !strings.HasSuffix(path, ".xml") {
		return "", false
	}
	bucket := strings.TrimSuffix(strings.TrimPrefix(path, "/sitemap-"), ".xml")
	if bucket == "" {
		return "", false
	}
	return bucket, true
}

// handleRobotsTxt serves a generated robots.txt advertising the sitemap index
// when sitemaps are enabled.
func (a *App) handleRobotsTxt(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\nDisallow: /admin/\n")
	if a.Settings().SitemapsEnabled {
		fmt.Fprintf(&b, "\nSitemap: %s\n", a.SitemapURL("index"))
	}
	return c.String(http.StatusOK, b.String())
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound && a.Views.NotFound != nil {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if a.Views.ServerError != nil {
			_ = RenderStatus(c, code, a.Views.ServerError())
			return
		}
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

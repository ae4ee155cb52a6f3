package seotoolkit

import (
	"embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

// EmbeddedAssets contains static assets shipped with the engine:
// the sitemap XSLT stylesheet referenced by every sitemap document.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

func handleSitemapStylesheet(c echo.Context) error {
	stylesheet, err := EmbeddedAssets.ReadFile("embedded/sitemap.xsl")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/xsl; charset=utf-8", stylesheet)
}

package seotoolkit

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminSettings(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(c.RealIP())
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminSettings persists the settings form. Cached fragments derive
// from settings, so the whole cache is flushed on save.
func (a *App) handleAdminSettings(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}

	settings := settingsFromForm(c.Request().Form)
	if err := saveSettings(a.Store, settings); err != nil {
		return err
	}
	a.setSettings(settings)

	if err := a.Cache.Flush(c.Request().Context()); err != nil {
		a.logErr(err)
	}
	return a.renderAdminSettings(c, "saved")
}

// settingsFromForm builds a complete Settings value from the posted form.
// Unchecked checkboxes are simply absent, so booleans are presence-tested.
// Per-context values arrive as dotted keys, e.g. "title_format.post".
func settingsFromForm(form url.Values) *Settings {
	s := &Settings{
		TitleSeparator:     form.Get("title_separator"),
		DescriptionDefault: form.Get("description_default"),
		RobotsPaginated:    form.Get("robots_paginated"),
		OmitIndexDirective: form.Get("omit_index_directive") != "",
		FeedNoindex:        form.Get("feed_noindex") != "",
		FrontPageID:        formInt64(form, "front_page_id"),
		BlogPageID:         formInt64(form, "blog_page_id"),
		OpenGraphEnabled:   form.Get("opengraph_enabled") != "",
		TwitterEnabled:     form.Get("twitter_enabled") != "",
		Facebook: FacebookSettings{
			Title:       form.Get("facebook_title"),
			Description: form.Get("facebook_description"),
			ImageID:     formInt64(form, "facebook_image_id"),
			Admins:      form.Get("facebook_admins"),
			AppID:       form.Get("facebook_app_id"),
		},
		Twitter: TwitterSettings{
			Card:        form.Get("twitter_card"),
			Site:        form.Get("twitter_site"),
			Title:       form.Get("twitter_title"),
			Description: form.Get("twitter_description"),
			ImageID:     formInt64(form, "twitter_image_id"),
		},
		WebsiteProfile: form.Get("website_profile"),
		Organization: OrganizationSettings{
			Name:    form.Get("organization_name"),
			LogoURL: form.Get("organization_logo"),
		},
		Person: PersonSettings{
			Username:  form.Get("person_username"),
			AvatarURL: form.Get("person_avatar"),
		},
		SitemapsEnabled: form.Get("sitemaps_enabled") != "",
		SitemapImages:   form.Get("sitemap_images") != "",
		SitemapLimit:    int(formInt64(form, "sitemap_limit")),

		TitleFormats:       map[Context]string{},
		DescriptionOptions: map[Context]string{},
		RobotsDirectives:   map[Context]string{},
		Webmasters:         map[string]string{},
	}

	for key, values := range form {
		if len(values) == 0 || values[0] == "" {
			continue
		}
		switch {
		case strings.HasPrefix(key, "title_format."):
			s.TitleFormats[Context(strings.TrimPrefix(key, "title_format."))] = values[0]
		case strings.HasPrefix(key, "description_option."):
			s.DescriptionOptions[Context(strings.TrimPrefix(key, "description_option."))] = values[0]
		case strings.HasPrefix(key, "robots_directive."):
			s.RobotsDirectives[Context(strings.TrimPrefix(key, "robots_directive."))] = values[0]
		case strings.HasPrefix(key, "webmasters."):
			s.Webmasters[strings.TrimPrefix(key, "webmasters.")] = values[0]
		}
	}

	s.normalize()
	return s
}

func formInt64(form url.Values, key string) int64 {
	n, _ := strconv.ParseInt(form.Get(key), 10, 64)
	return n
}

// handleAdminPing triggers sitemap notification to the configured search
// engines and reports each service's raw response.
func (a *App) handleAdminPing(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	sitemap := c.FormValue("sitemap")
	if sitemap == "" {
		sitemap = a.SitemapURL("index")
	}
	if u, err := url.ParseRequestURI(sitemap); err != nil || u.Host == "" {
		return c.String(http.StatusBadRequest, "Invalid sitemap URL")
	}

	services := a.PingSitemap(c.Request().Context(), sitemap)
	return c.JSON(http.StatusOK, map[string]any{
		"sitemap":  sitemap,
		"services": services,
	})
}

// adminMetaKeys are the per-entity override keys editable from the admin.
var adminMetaKeys = map[string]bool{
	MetaTitle:               true,
	MetaDescription:         true,
	MetaRobots:              true,
	MetaNoArchive:           true,
	MetaNoSnippet:           true,
	MetaNoImageIndex:        true,
	MetaFacebookTitle:       true,
	MetaFacebookDescription: true,
	MetaFacebookImage:       true,
	MetaTwitterCard:         true,
	MetaTwitterTitle:        true,
	MetaTwitterDescription:  true,
	MetaTwitterImage:        true,
}

// handleAdminPostMeta saves per-post overrides. An empty value clears the
// override. Cached fragments expire on their own TTL.
func (a *App) handleAdminPostMeta(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid post id")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	for key, values := range c.Request().Form {
		if !adminMetaKeys[key] || len(values) == 0 {
			continue
		}
		if err := a.Store.SetPostMeta(id, key, values[0]); err != nil {
			return err
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// handleAdminTermMeta saves per-term overrides.
func (a *App) handleAdminTermMeta(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid term id")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	for key, values := range c.Request().Form {
		if !adminMetaKeys[key] || len(values) == 0 {
			continue
		}
		if err := a.Store.SetTermMeta(id, key, values[0]); err != nil {
			return err
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) renderAdminSettings(c echo.Context, msg string) error {
	contexts, err := a.Contexts()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminSettings(a.Settings(), contexts, msg, CsrfToken(c)))
}

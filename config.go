package seotoolkit

import (
	"encoding/json"
	"time"
)

// Meta keys for per-entity SEO overrides. Absence means "use the
// context-level default".
const (
	MetaTitle        = "_seotoolkit_title"
	MetaDescription  = "_seotoolkit_description"
	MetaRobots       = "_seotoolkit_robots"
	MetaNoArchive    = "_seotoolkit_robots_noarchive"
	MetaNoSnippet    = "_seotoolkit_robots_nosnippet"
	MetaNoImageIndex = "_seotoolkit_robots_noimageindex"

	MetaFacebookTitle       = "_seotoolkit_facebook_title"
	MetaFacebookDescription = "_seotoolkit_facebook_description"
	MetaFacebookImage       = "_seotoolkit_facebook_image"

	MetaTwitterCard        = "_seotoolkit_twitter_card"
	MetaTwitterTitle       = "_seotoolkit_twitter_title"
	MetaTwitterDescription = "_seotoolkit_twitter_description"
	MetaTwitterImage       = "_seotoolkit_twitter_image"
)

const settingsOption = "seotoolkit_settings"

// Config holds site identity and process configuration. Unlike Settings it
// is not persisted; the host supplies it at construction.
type Config struct {
	Name    string // Site name (default "Site")
	URL     string // Canonical site root (default "http://localhost:3000")
	Tagline string // Site tagline used as description fallback

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/content.db")

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	UploadsDir string // Directory for processed attachment uploads

	PingTimeout time.Duration // Outbound ping request timeout (default 10s)
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Site"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/content.db"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "public/uploads"
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 10 * time.Second
	}
}

// FacebookSettings configures the Open Graph provider.
type FacebookSettings struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageID     int64  `json:"image_id"`
	Admins      string `json:"admins"`
	AppID       string `json:"app_id"`
}

// TwitterSettings configures the Twitter Cards provider.
type TwitterSettings struct {
	Card        string `json:"card"` // summary or summary_large_image
	Site        string `json:"site"` // @profile of the site
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageID     int64  `json:"image_id"`
}

// OrganizationSettings configures the Organization structured-data node.
type OrganizationSettings struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}

// PersonSettings configures the Person structured-data node.
type PersonSettings struct {
	Username  string `json:"username"` // author login
	AvatarURL string `json:"avatar_url"`
}

// Settings is the persisted, admin-editable configuration. Every context has
// a resolvable format even if unset: lookups fall back to hard-coded
// defaults, never error.
type Settings struct {
	TitleFormats   map[Context]string `json:"title_formats"`
	TitleSeparator string             `json:"title_separator"`

	DescriptionOptions map[Context]string `json:"description_options"`
	DescriptionDefault string             `json:"description_default"`

	RobotsDirectives map[Context]string `json:"robots_directives"`
	RobotsPaginated  string             `json:"robots_paginated"`
	// OmitIndexDirective drops directives equal to exactly "index" or
	// "index, follow" from the output, since they are the crawler default.
	OmitIndexDirective bool `json:"omit_index_directive"`
	FeedNoindex        bool `json:"feed_noindex"`

	FrontPageID int64 `json:"front_page_id"` // static front page, 0 if none
	BlogPageID  int64 `json:"blog_page_id"`  // posts page, 0 if none

	OpenGraphEnabled bool             `json:"opengraph_enabled"`
	TwitterEnabled   bool             `json:"twitter_enabled"`
	Facebook         FacebookSettings `json:"facebook"`
	Twitter          TwitterSettings  `json:"twitter"`

	Webmasters map[string]string `json:"webmasters"` // meta name -> verification code

	WebsiteProfile string               `json:"website_profile"` // "person" or "organization"
	Organization   OrganizationSettings `json:"organization"`
	Person         PersonSettings       `json:"person"`

	SitemapsEnabled bool `json:"sitemaps_enabled"`
	SitemapImages   bool `json:"sitemap_images"`
	SitemapLimit    int  `json:"sitemap_limit"`
}

// DefaultSettings returns the settings applied at install.
func DefaultSettings() *Settings {
	return &Settings{
		TitleFormats: map[Context]string{
			ContextFrontpage: "%site-title% %separator% %tagline%",
			ContextAuthor:    "%author% %separator% %site-title%",
		},
		TitleSeparator:     "-",
		DescriptionOptions: map[Context]string{},
		RobotsDirectives:   map[Context]string{},
		RobotsPaginated:    "noindex, follow",
		OpenGraphEnabled:   true,
		TwitterEnabled:     true,
		Webmasters:         map[string]string{},
		WebsiteProfile:     "person",
		SitemapsEnabled:    true,
		SitemapImages:      true,
		SitemapLimit:       1000,
	}
}

const (
	titleFormatDefault = "%title% %separator% %site-title%"
	sitemapLimitMax    = 5000
)

// normalize clamps tunables and fills zero maps so lookups never panic.
func (s *Settings) normalize() {
	if s.TitleFormats == nil {
		s.TitleFormats = map[Context]string{}
	}
	if s.DescriptionOptions == nil {
		s.DescriptionOptions = map[Context]string{}
	}
	if s.RobotsDirectives == nil {
		s.RobotsDirectives = map[Context]string{}
	}
	if s.Webmasters == nil {
		s.Webmasters = map[string]string{}
	}
	if s.TitleSeparator == "" {
		s.TitleSeparator = "-"
	}
	if s.RobotsPaginated == "" {
		s.RobotsPaginated = "noindex, follow"
	}
	if s.WebsiteProfile != "organization" {
		s.WebsiteProfile = "person"
	}
	if s.SitemapLimit <= 0 {
		s.SitemapLimit = 1000
	}
	if s.SitemapLimit > sitemapLimitMax {
		s.SitemapLimit = sitemapLimitMax
	}
}

// loadSettings reads settings from the options table, falling back to
// defaults on first run.
func loadSettings(store *Store) (*Settings, error) {
	raw, err := store.Option(settingsOption)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		s := DefaultSettings()
		s.normalize()
		return s, nil
	}
	var s Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	s.normalize()
	return &s, nil
}

// saveSettings persists settings to the options table.
func saveSettings(store *Store, s *Settings) error {
	s.normalize()
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return store.SetOption(settingsOption, string(raw))
}

// Option configures additional App behavior.
type Option func(*App)

// WithCache sets the cache layer (default: in-memory).
func WithCache(c Cache) Option {
	return func(a *App) {
		a.Cache = c
	}
}

// WithPingServices overrides the search-engine ping endpoints.
func WithPingServices(services map[string]string) Option {
	return func(a *App) {
		a.pingServices = services
	}
}

// WithCustomRoutes registers additional routes on the Echo instance before
// the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for host-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

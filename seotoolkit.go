// Package seotoolkit is a search engine optimization engine built with Go,
// Echo, and templ. It resolves page context, composes titles, descriptions,
// robots directives, canonical URLs, Open Graph / Twitter Cards metadata and
// JSON-LD structured data, and serves XML sitemaps with search engine pings.
//
// Hosts provide their own templ components via the ViewFuncs struct and call
// RenderHead from their page templates; seotoolkit handles the metadata
// pipeline, admin surface, storage, and caching.
package seotoolkit

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// ViewFuncs holds host-provided templ components that the engine calls when
// rendering pages. This is the inversion-of-control mechanism that lets hosts
// own and customize all templates.
type ViewFuncs struct {
	AdminLogin    func(showError bool, csrfToken string) templ.Component
	AdminSettings func(settings *Settings, contexts map[Context]string, message, csrfToken string) templ.Component
	NotFound      func() templ.Component
	ServerError   func() templ.Component
}

// App is the central seotoolkit application. It wires together the store,
// cache, filter chains, handlers, middleware, and host-provided templates.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store
	Cache  Cache
	Hooks  *Hooks
	Views  ViewFuncs

	settings   *Settings
	settingsMu sync.RWMutex

	loginLimiter *LoginLimiter
	pingServices map[string]string
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new seotoolkit App with the given configuration and view
// functions.
func New(cfg Config, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:       cfg,
		Echo:         echo.New(),
		Hooks:        NewHooks(),
		Views:        views,
		pingServices: defaultPingServices,
		staticDir:    "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Settings returns the current persisted settings. The pointer is replaced
// wholesale on save; callers must not mutate it.
func (a *App) Settings() *Settings {
	a.settingsMu.RLock()
	defer a.settingsMu.RUnlock()
	return a.settings
}

func (a *App) setSettings(s *Settings) {
	a.settingsMu.Lock()
	a.settings = s
	a.settingsMu.Unlock()
}

// initialize opens the store, loads settings, and registers the built-in
// providers. Split from Start so the engine can run headless under a host
// that owns its own HTTP server.
func (a *App) initialize() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("seotoolkit: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("seotoolkit: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("seotoolkit: init store: %w", err)
	}
	a.Store = store

	if a.Cache == nil {
		a.Cache = NewMemoryCache()
	}

	settings, err := loadSettings(a.Store)
	if err != nil {
		return fmt.Errorf("seotoolkit: load settings: %w", err)
	}
	a.setSettings(settings)

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.registerProviders()
	return nil
}

// registerProviders wires the built-in filters into the chains. Hosts add
// their own via a.Hooks before Start.
func (a *App) registerProviders() {
	a.setupDescription()
	a.setupRobots()
	a.setupOpenGraph()
	a.setupTwitter()
	a.setupWebmasters()
	a.setupSchema()
	a.setupSitemaps()
}

// Start initializes the engine, middleware, and routes, and starts the server.
func (a *App) Start() error {
	if err := a.initialize(); err != nil {
		return err
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Host static assets, plus the embedded sitemap stylesheet.
	e.Static("/public", a.staticDir)
	e.GET("/static/sitemap.xsl", handleSitemapStylesheet)
	e.GET("/robots.txt", a.handleRobotsTxt)

	// Public routes. The wildcard covers /sitemap.xml and /sitemap-<bucket>.xml.
	e.GET("/sitemap*", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/settings/", a.handleAdminSettings)
	e.POST("/admin/ping/", a.handleAdminPing)
	e.POST("/admin/meta/post/:id/", a.handleAdminPostMeta)
	e.POST("/admin/meta/term/:id/", a.handleAdminTermMeta)
	e.POST("/admin/images/upload/", a.handleImageUpload)
}

// logErr records a provider failure. Providers fall back to defaults rather
// than failing the page, so this is the only trace of the underlying error.
func (a *App) logErr(err error) {
	if err == nil {
		return
	}
	a.Echo.Logger.Errorf("%v", err)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("seotoolkit: required environment variable %s is not set", key)
	}
	return v
}

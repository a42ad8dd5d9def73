// Package restblog is a small server-rendered blog built with Go, Echo, and templ.
// It stores posts in a single SQLite table and exposes list, show, create, edit
// and delete pages, plus an RSS feed and a sitemap.
//
// Templates are supplied by the caller through ViewFuncs; the views package
// ships a default set.
package restblog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ViewFuncs holds the templ components the App renders. Each field maps to one
// page of the site.
type ViewFuncs struct {
	Home        func(posts []BlogPost, flashes []string) templ.Component
	Post        func(post BlogPost) templ.Component
	About       func() templ.Component
	Contact     func() templ.Component
	PostForm    func(form PostFormView) templ.Component
	NotFound    func() templ.Component
	Forbidden   func() templ.Component
	ServerError func() templ.Component
}

// App wires together the store, cache, handlers, middleware, and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  PostStore
	Cache  *PostCache
	Views  ViewFuncs
	Logger zerolog.Logger

	submitLimiter *SubmitLimiter
	customRoutes  []func(*App)
	assets        fs.FS
	staticDir     string
	loggerSet     bool
	initialized   bool
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	if !a.loggerSet {
		a.Logger = cfg.NewLogger()
	}
	return a
}

// Init opens the store (unless one was supplied), builds the cache and
// registers middleware and routes. Start calls it; tests call it directly and
// drive a.Echo with httptest.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return errors.New("restblog: SessionSecret is required")
	}

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("restblog: init store: %w", err)
		}
		a.Store = store
	}

	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)

	if a.Config.SubmitLimit > 0 {
		a.submitLimiter = NewSubmitLimiter(a.Config.SubmitLimit, a.Config.SubmitWindow)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the App and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Logger.Info().Str("addr", a.Config.Addr).Str("db", a.Config.DatabasePath).Msg("starting server")
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	if a.assets != nil {
		e.StaticFS("/static", a.assets)
	}
	if a.staticDir != "" {
		e.Static("/public", a.staticDir)
	}
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/post/:id", a.handlePost)
	e.GET("/about", a.handleAbout)
	e.GET("/contact", a.handleContact)

	e.GET("/new-post", a.handleNewPostForm)
	e.POST("/new-post", a.handleNewPost, a.limitSubmissions)
	e.GET("/edit", a.handleEditForm)
	e.POST("/edit", a.handleEdit, a.limitSubmissions)
	// Delete is reachable from a plain link, so it stays on GET.
	e.GET("/delete", a.handleDelete, a.limitSubmissions)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.submitLimiter != nil {
		a.submitLimiter.Stop()
	}
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

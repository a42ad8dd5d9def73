package restblog

import (
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SiteConfig holds all configuration for a restblog site. It is built once at
// startup and passed into the components that need it.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/posts.db")

	SessionSecret string // Required: signs the session and flash cookie
	CookieSecure  bool   // Set true for HTTPS

	PostCacheTTL time.Duration // Post cache TTL (default 5min)

	SubmitLimit  int           // Mutating requests per IP per SubmitWindow (default 30, negative disables)
	SubmitWindow time.Duration // default 1min

	LogLevel  string // zerolog level name (default "info")
	LogFormat string // "json" (default) or "console"
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/posts.db"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.SubmitLimit == 0 {
		c.SubmitLimit = 30
	}
	if c.SubmitWindow == 0 {
		c.SubmitWindow = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// WithDefaults returns a copy of c with every unset field given its default.
func (c SiteConfig) WithDefaults() SiteConfig {
	c.setDefaults()
	return c
}

// ConfigFromEnv builds a SiteConfig from environment variables. Unset values
// are left empty so New can apply defaults.
func ConfigFromEnv() SiteConfig {
	return SiteConfig{
		Name:          os.Getenv("SITE_NAME"),
		URL:           os.Getenv("SITE_URL"),
		Description:   os.Getenv("SITE_DESCRIPTION"),
		Addr:          os.Getenv("ADDR"),
		DatabasePath:  os.Getenv("DATABASE_PATH"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		CookieSecure:  strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true"),
		PostCacheTTL:  envDuration("POST_CACHE_TTL"),
		SubmitLimit:   envInt("SUBMIT_LIMIT"),
		SubmitWindow:  envDuration("SUBMIT_WINDOW"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogFormat:     os.Getenv("LOG_FORMAT"),
	}
}

func envInt(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return n
}

func envDuration(key string) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return 0
	}
	return d
}

// NewLogger builds the zerolog logger described by the config.
func (c SiteConfig) NewLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if c.LogFormat == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// Option configures additional App behavior.
type Option func(*App)

// WithStore makes the App use s instead of opening the SQLite database at
// Config.DatabasePath. The App takes ownership and closes it in Close.
func WithStore(s PostStore) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithLogger replaces the logger derived from the config.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.Logger = l
		a.loggerSet = true
	}
}

// WithAssets serves files from fsys under /static/.
func WithAssets(fsys fs.FS) Option {
	return func(a *App) {
		a.assets = fsys
	}
}

// WithStaticDir serves a directory of user-owned files under /public/.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/eringen/restblog"
	"github.com/eringen/restblog/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("restblog %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func runServe() error {
	envFile := restblog.EnvOr("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := restblog.ConfigFromEnv().WithDefaults()
	renderer, err := views.New(cfg)
	if err != nil {
		return err
	}

	app := restblog.New(cfg, renderer.Funcs(), restblog.WithAssets(views.StaticFS()))
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	app.Logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func printUsage() {
	fmt.Println(`restblog - a small blog built with Go, Echo, and templ

Usage:
  restblog [command]

Commands:
  serve         Start the web server (default)
  version       Print the restblog version
  help          Show this help message

Environment:
  SESSION_SECRET    required, signs the session cookie
  DATABASE_PATH     SQLite file (default data/posts.db)
  ADDR              listen address (default :3000)
  SITE_NAME, SITE_URL, SITE_DESCRIPTION, COOKIE_SECURE,
  POST_CACHE_TTL, SUBMIT_LIMIT, LOG_LEVEL, LOG_FORMAT
  ENV_FILE          optional dotenv file (default .env)`)
}

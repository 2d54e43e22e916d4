// Command tracker serves the AI tool activity API and runs the offline
// acquisition job that refreshes its snapshot and archive.
//
//	tracker serve            # HTTP API (default)
//	tracker fetch --json     # one acquisition run, report on stdout
//
// @title       AI Tracker API
// @version     1.0
// @description Recent X/Twitter activity of tracked AI tools, with a rolling 90-day archive.
// @BasePath    /api
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	_ "github.com/tbourn/ai-tracker/docs"
	"github.com/tbourn/ai-tracker/internal/config"
	httpapi "github.com/tbourn/ai-tracker/internal/http"
	"github.com/tbourn/ai-tracker/internal/observability"
	"github.com/tbourn/ai-tracker/internal/scheduler"
	"github.com/tbourn/ai-tracker/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

type serveCmd struct{}

type fetchCmd struct {
	MaxPerTool int  `help:"Posts kept per tool (0 uses MAX_POSTS_PER_TOOL)." default:"0"`
	JSON       bool `help:"Print the run report as JSON."`
}

var cli struct {
	EnvFile string           `help:"Optional dotenv file loaded before the environment is read." default:".env" type:"path"`
	Version kong.VersionFlag `help:"Print the version and exit."`

	Serve serveCmd `cmd:"" default:"1" help:"Run the HTTP API."`
	Fetch fetchCmd `cmd:"" help:"Acquire posts once, then write the snapshot and the archive."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("tracker"),
		kong.Description("AI tool social activity tracker."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
	)

	// A missing dotenv file is normal in containers.
	if err := godotenv.Load(cli.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "tracker: %s: %v\n", cli.EnvFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tracker: config: %v\n", err)
		os.Exit(1)
	}
	sysutil.ConfigureLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch kctx.Command() {
	case "serve":
		err = runServe(ctx, cfg)
	case "fetch":
		err = runFetch(ctx, cfg, cli.Fetch)
	default:
		err = fmt.Errorf("unknown command %q", kctx.Command())
	}
	if err != nil {
		log.Error().Err(err).Str("command", kctx.Command()).Msg("tracker exited with error")
		stop()
		os.Exit(1)
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	a, err := build(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	shutdownOTel, err := observability.Setup(ctx, cfg.OTEL, observability.BuildInfo{
		Version: version,
		Mode:    a.mode,
		Hosted:  cfg.Acquire.Hosted,
	})
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}

	sched, err := scheduler.New("", scheduler.DefaultJobTimeout)
	if err != nil {
		return err
	}
	if err := sched.AddJob("cache-sweep", cfg.Acquire.SweepSchedule, func(context.Context) error {
		a.feed.ClearCache()
		return nil
	}); err != nil {
		return err
	}
	if cfg.Acquire.FetchSchedule != "" && !cfg.Acquire.Hosted {
		if err := sched.AddJob("fetch", cfg.Acquire.FetchSchedule, func(ctx context.Context) error {
			if rep := a.fetch.Run(ctx); !rep.OK {
				return errors.New("acquisition produced no data")
			}
			return nil
		}); err != nil {
			return err
		}
	}
	sched.Start()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, a.handlers, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("mode", a.mode).
			Bool("hosted", cfg.Acquire.Hosted).
			Str("store", cfg.Storage.Driver).
			Int("tools", len(a.catalog.All())).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("scheduler shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("otel shutdown")
	}
	return nil
}

// runFetch fails only on setup errors; an acquisition that finds nothing is
// reported, not fatal.
func runFetch(ctx context.Context, cfg config.Config, cmd fetchCmd) error {
	if cmd.MaxPerTool > 0 {
		cfg.Acquire.MaxPostsPerTool = cmd.MaxPerTool
	}
	a, err := build(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.Acquire.Timeout)
	defer cancel()
	rep := a.fetch.Run(ctx)

	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	fmt.Printf("source=%s tools=%d posts=%d translated=%v snapshot=%v duration=%s\n",
		rep.Source, rep.Tools, rep.Posts, rep.Translated, rep.SnapshotWritten, rep.Duration.Round(time.Millisecond))
	if rep.Archive != nil {
		fmt.Printf("archive: +%d posts, %d pruned, %d total\n", rep.Archive.Added, rep.Archive.Pruned, rep.Archive.TotalPosts)
	}
	return nil
}

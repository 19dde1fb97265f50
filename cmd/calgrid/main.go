package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"calgrid/internal/capture"
	"calgrid/internal/config"
	"calgrid/internal/ics"
	appLog "calgrid/internal/log"
	"calgrid/internal/model"
	"calgrid/internal/store"
	"calgrid/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	noCapture  bool
	debug      bool
}

func main() {
	appLog.Info("calgrid starting", "version", "0.1.0")

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"refresh", conf.RefreshCron,
		"horizon_days", conf.HorizonDays,
		"backfill_days", conf.BackfillDays,
		"source_count", len(conf.Sources),
		"once", flags.once,
		"debug", flags.debug,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	snapshots := store.New()

	// First refresh before anything is served, so the grid never starts
	// from an empty snapshot when sources are reachable.
	refresh(ctx, conf, snapshots, flags.debug)

	if flags.once {
		if !flags.noCapture {
			// One-shot capture needs the server up briefly.
			srv := startHTTP(conf, snapshots, flags.debug)
			runCapture(ctx, conf, flags.debug)
			shutdownHTTP(srv)
		}
		appLog.Info("calgrid one-shot complete")
		return
	}

	srv := startHTTP(conf, snapshots, flags.debug)

	// Cron drives the periodic refresh + capture pipeline.
	c := cron.New()
	_, err = c.AddFunc(conf.RefreshCron, func() {
		refresh(ctx, conf, snapshots, flags.debug)
		if !flags.noCapture {
			runCapture(ctx, conf, flags.debug)
		}
	})
	if err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()

	<-ctx.Done()

	cronCtx := c.Stop()
	<-cronCtx.Done()
	shutdownHTTP(srv)
	appLog.Info("calgrid exiting")
}

// refresh runs the full snapshot pipeline: fetch every ICS source, parse,
// expand recurrences into the configured window and atomically replace
// the working set. Partial source failures degrade to whatever fetched.
func refresh(ctx context.Context, conf *config.Config, snapshots *store.Store, debug bool) {
	loc := resolveLocation(conf.Timezone)
	now := time.Now().In(loc)
	rangeStart := now.AddDate(0, 0, -conf.BackfillDays)
	rangeEnd := now.AddDate(0, 0, conf.HorizonDays)

	sources := make([]ics.Source, 0, len(conf.Sources))
	for _, sc := range conf.Sources {
		if sc.URL == "" {
			continue
		}
		id := sc.ID
		if id == "" {
			if sc.Name != "" {
				id = sc.Name
			} else {
				id = sc.URL
			}
		}
		sources = append(sources, ics.Source{
			ID:    id,
			URL:   sc.URL,
			Color: model.Color{Name: model.ColorName(sc.Color)},
		})
	}
	if len(sources) == 0 {
		appLog.Info("refresh: no sources configured; snapshot left empty")
		snapshots.Replace(nil)
		return
	}

	cacheDir := "/var/lib/calgrid/ics-cache"
	if debug {
		cacheDir = "./cache/ics-cache"
	}
	fetcher := ics.NewFetcher(cacheDir)

	results, fetchErrs := fetcher.FetchAll(ctx, sources)
	if len(fetchErrs) > 0 {
		appLog.Error("refresh: one or more ICS fetches failed", errorsAggregate(fetchErrs), "error_count", len(fetchErrs))
	}

	parsed := make([]ics.ParsedEvent, 0)
	for _, res := range results {
		events, err := ics.ParseFeed(res.Source, res.Body)
		if err != nil {
			appLog.Error("refresh: parse failed for source", err, "id", res.Source.ID)
			continue
		}
		parsed = append(parsed, events...)
	}

	result, err := ics.Expand(parsed, ics.ExpandConfig{
		DisplayLocation: loc,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
	})
	if err != nil {
		appLog.Error("refresh: expand failed; keeping previous snapshot", err)
		return
	}

	snapshots.Replace(result.Events)
	appLog.Info("refresh complete",
		"event_count", len(result.Events),
		"truncated_uids", len(result.TruncatedUIDs),
		"range_start", rangeStart.Format(time.RFC3339),
		"range_end", rangeEnd.Format(time.RFC3339),
	)
}

// runCapture screenshots the /grid page into the preview location served
// by /preview.png.
func runCapture(ctx context.Context, conf *config.Config, debug bool) {
	previewPath := "/var/lib/calgrid/preview.png"
	if debug {
		previewPath = "./cache/preview.png"
	}

	err := capture.GridPNG(ctx, capture.Options{
		URL:        "http://" + conf.Listen + "/grid",
		OutputPath: previewPath,
	})
	if err != nil {
		appLog.Error("preview capture failed", err, "path", previewPath)
		return
	}
	appLog.Info("preview captured", "path", previewPath)
}

func startHTTP(conf *config.Config, snapshots *store.Store, debug bool) *http.Server {
	s := web.NewServer(conf, snapshots, nil, debug)
	srv := &http.Server{
		Addr:    conf.Listen,
		Handler: s.Handler(),
	}
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
		}
	}()
	return srv
}

func shutdownHTTP(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}
}

func resolveLocation(name string) *time.Location {
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func errorsAggregate(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	var b strings.Builder
	for i, e := range errs {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Error())
	}
	return errors.New(b.String())
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/calgrid/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one fetch+capture cycle and exit")
	flag.BoolVar(&cfg.noCapture, "no-capture", false, "Skip the headless preview capture")
	flag.BoolVar(&cfg.debug, "debug", false, "Debug logging and relative cache paths")

	flag.Parse()

	return cfg
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yarko-w/jw-daily-text/internal/app"
	"github.com/yarko-w/jw-daily-text/internal/note"
	"github.com/yarko-w/jw-daily-text/internal/schedule"
)

type options struct {
	cfg        app.Config
	date       string
	configPath string
	envFiles   string
	daemon     bool
}

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}
	if opts.cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

// exitCode maps run errors to the process status: 2 when the feed had no
// recognizable daily text, 1 for any other failure.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrEmptyDailyText):
		return 2
	default:
		return 1
	}
}

// parseFlags builds the configuration from flags, an optional config file and
// the environment. Precedence: flags, then env, then file, then defaults.
func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	c := &o.cfg

	fs.StringVar(&c.VaultDir, "vault.dir", "", "Obsidian vault root directory")
	fs.StringVar(&c.PathTemplate, "path.template", app.DefaultPathTemplate, "Note path inside the vault; tokens {YYYY} {MM} {DD}")
	fs.StringVar(&c.PDFPathTemplate, "pdf", "", "Optional PDF path inside the vault; same tokens as path.template")
	fs.StringVar(&c.Heading, "heading", note.DefaultHeading, "Heading written before the date")
	fs.StringVar(&c.FeedBaseURL, "feed.base", "", "Feed base URL (default https://wol.jw.org)")
	fs.StringVar(&c.FeedLanguage, "feed.lang", "", "Feed library and language segment (default r1/lp-e)")
	fs.StringVar(&c.LinkBase, "link.base", "", "Origin for resolving commentary links (default https://wol.jw.org)")
	fs.StringVar(&c.CacheDir, "cache.dir", app.DefaultCacheDir, "HTTP cache directory path")
	fs.DurationVar(&c.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 72h); 0 disables")
	fs.BoolVar(&c.CacheClear, "cache.clear", false, "Clear cache directory before run")
	fs.BoolVar(&c.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&c.HTTPCacheOnly, "cache.only", false, "Serve feed responses from cache only")
	fs.BoolVar(&c.HTTPCacheRefresh, "cache.refresh", false, "Refetch the feed without revalidating the cached copy")
	fs.StringVar(&c.Schedule, "schedule", "", "Run as a daemon on this cron spec (e.g. \"5 6 * * *\")")
	fs.BoolVar(&c.RunOnStart, "run-on-start", false, "In schedule mode, run immediately when today's text is missing")
	fs.StringVar(&c.StateFile, "state.file", app.DefaultStateFile, "Marker file recording the last successful day")
	fs.BoolVar(&c.DryRun, "dry-run", false, "Print the formatted block instead of writing the note")
	fs.BoolVar(&c.Verbose, "v", false, "Verbose logging")
	fs.StringVar(&o.date, "date", "", "Day to fetch as YYYY-MM-DD (default today)")
	fs.StringVar(&o.configPath, "config", os.Getenv("DAILYTEXT_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&o.envFiles, "env", ".env", "Comma-separated dotenv files to load")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if err := app.LoadEnvFiles(strings.Split(o.envFiles, ",")...); err != nil {
		return o, fmt.Errorf("load env: %w", err)
	}
	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	flagged := *c

	// Env fills what flags left at their defaults. A config file fills what
	// is still unset, then env is applied again so it beats the file.
	// Explicitly passed flags beat both.
	app.ApplyEnvToConfig(c)
	if strings.TrimSpace(o.configPath) != "" {
		fc, err := app.LoadConfigFile(o.configPath)
		if err != nil {
			return o, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(c, fc)
		app.ApplyEnvOverrides(c)
	}
	restoreExplicit(c, flagged, explicit)

	o.daemon = strings.TrimSpace(c.Schedule) != ""
	if err := app.ValidateConfig(*c); err != nil {
		return o, err
	}
	if o.date != "" {
		if _, err := time.ParseInLocation(schedule.DateLayout, o.date, time.Local); err != nil {
			return o, fmt.Errorf("-date: %w", err)
		}
	}
	return o, nil
}

// restoreExplicit puts back values the user passed on the command line.
func restoreExplicit(c *app.Config, flagged app.Config, explicit map[string]bool) {
	pairs := []struct {
		name  string
		apply func()
	}{
		{"vault.dir", func() { c.VaultDir = flagged.VaultDir }},
		{"path.template", func() { c.PathTemplate = flagged.PathTemplate }},
		{"heading", func() { c.Heading = flagged.Heading }},
		{"feed.base", func() { c.FeedBaseURL = flagged.FeedBaseURL }},
		{"feed.lang", func() { c.FeedLanguage = flagged.FeedLanguage }},
		{"link.base", func() { c.LinkBase = flagged.LinkBase }},
		{"cache.dir", func() { c.CacheDir = flagged.CacheDir }},
		{"cache.maxAge", func() { c.CacheMaxAge = flagged.CacheMaxAge }},
		{"cache.clear", func() { c.CacheClear = flagged.CacheClear }},
		{"schedule", func() { c.Schedule = flagged.Schedule }},
		{"state.file", func() { c.StateFile = flagged.StateFile }},
		{"dry-run", func() { c.DryRun = flagged.DryRun }},
		{"v", func() { c.Verbose = flagged.Verbose }},
	}
	for _, p := range pairs {
		if explicit[p.name] {
			p.apply()
		}
	}
}

func run(ctx context.Context, o options, stdout io.Writer) error {
	a, err := app.New(o.cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	a.SetOutput(stdout)

	if o.daemon {
		return a.Scheduler().Start(ctx)
	}

	date := time.Now()
	if o.date != "" {
		date, err = time.ParseInLocation(schedule.DateLayout, o.date, time.Local)
		if err != nil {
			return fmt.Errorf("-date: %w", err)
		}
	}
	path, err := a.RunForDate(ctx, date)
	if err != nil {
		return err
	}
	if path != "" {
		log.Info().Str("path", path).Msg("done")
	}
	return nil
}

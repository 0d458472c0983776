package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/yarko-w/jw-daily-text/internal/cache"
	"github.com/yarko-w/jw-daily-text/internal/extract"
	"github.com/yarko-w/jw-daily-text/internal/feed"
	"github.com/yarko-w/jw-daily-text/internal/fetch"
	"github.com/yarko-w/jw-daily-text/internal/note"
	"github.com/yarko-w/jw-daily-text/internal/schedule"
)

// ErrEmptyDailyText is returned when the feed answered but none of scripture,
// citation or commentary could be located. Per the exit code policy this maps
// to exit status 2.
var ErrEmptyDailyText = errors.New("daily text extraction produced no fields")

type App struct {
	cfg       Config
	feed      *feed.Client
	extractor extract.Extractor
	store     *note.Store
	httpCache *cache.HTTPCache
	client    *http.Client
	out       io.Writer

	group singleflight.Group
}

func New(cfg Config) (*App, error) {
	linkBase := strings.TrimSpace(cfg.LinkBase)
	if linkBase == "" {
		linkBase = extract.DefaultLinkBase
	}
	base, err := url.Parse(linkBase)
	if err != nil {
		return nil, fmt.Errorf("link base: %w", err)
	}

	a := &App{
		cfg:       cfg,
		extractor: extract.HeuristicExtractor{LinkBase: base},
		store:     &note.Store{Root: cfg.VaultDir},
		out:       os.Stdout,
	}
	if cfg.CacheDir != "" {
		// Apply cache invalidation controls; errors here never fail startup
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("path", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.PurgeHTTPCacheByAge(cfg.CacheDir, cfg.CacheMaxAge, time.Now())
			if err != nil {
				log.Warn().Err(err).Str("path", cfg.CacheDir).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("purged stale cache entries")
			}
		}
		a.httpCache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	a.client = newFeedHTTPClient()
	fetcher := &fetch.Client{
		HTTPClient:        a.client,
		UserAgent:         UserAgent(),
		MaxAttempts:       3,
		PerRequestTimeout: 30 * time.Second,
		Backoff:           time.Second,
		Cache:             a.httpCache,
		CacheOnly:         cfg.HTTPCacheOnly,
		BypassCache:       cfg.HTTPCacheRefresh,
		MaxConcurrent:     2,
	}
	a.feed = &feed.Client{HTTP: fetcher, BaseURL: cfg.FeedBaseURL, Language: cfg.FeedLanguage}
	return a, nil
}

// SetOutput redirects dry-run output, which defaults to stdout.
func (a *App) SetOutput(w io.Writer) { a.out = w }

// Close releases idle feed connections. The scheduler job calls it after
// every run as well.
func (a *App) Close() {
	if a.client != nil {
		a.client.CloseIdleConnections()
	}
}

// RunForDate fetches, extracts and files the daily text for date. It returns
// the note path, or an empty path in dry-run mode. Concurrent calls for the
// same day share one run.
func (a *App) RunForDate(ctx context.Context, date time.Time) (string, error) {
	key := date.Format(schedule.DateLayout)
	v, err, shared := a.group.Do(key, func() (interface{}, error) {
		return a.runForDate(ctx, date)
	})
	if shared {
		log.Debug().Str("date", key).Msg("joined in-flight run")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (a *App) runForDate(ctx context.Context, date time.Time) (string, error) {
	day := date.Format(schedule.DateLayout)

	item, err := a.feed.DailyText(ctx, date)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", day, err)
	}
	rec, err := a.extractor.Extract(item.Content)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", day, err)
	}
	rec.Date = day
	logMissing(day, rec)
	if rec.Empty() {
		log.Warn().Str("date", day).Msg("no scripture, citation or commentary found")
		return "", ErrEmptyDailyText
	}

	block := note.Format(rec, note.Options{Heading: a.cfg.Heading})
	if a.cfg.DryRun {
		if _, err := io.WriteString(a.out, block); err != nil {
			return "", fmt.Errorf("write dry-run output: %w", err)
		}
		log.Info().Str("date", day).Msg("dry run; note not written")
		return "", nil
	}

	rel, err := note.ExpandPath(a.cfg.PathTemplate, date)
	if err != nil {
		return "", err
	}
	path, err := a.store.Save(rel, block)
	switch {
	case errors.Is(err, note.ErrAlreadyPresent):
		log.Info().Str("date", day).Str("path", path).Msg("daily text already in note")
	case err != nil:
		return "", err
	default:
		log.Info().Str("date", day).Str("path", path).Msg("wrote daily text")
	}

	if strings.TrimSpace(a.cfg.PDFPathTemplate) != "" {
		pdfPath, err := derivePDFPath(a.cfg, date)
		if err != nil {
			return path, fmt.Errorf("pdf path: %w", err)
		}
		if err := note.WritePDF(block, pdfPath); err != nil {
			return path, fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("path", pdfPath).Msg("wrote pdf")
	}
	return path, nil
}

// Scheduler returns a daily scheduler that runs RunForDate for the current day.
func (a *App) Scheduler() *schedule.Scheduler {
	return &schedule.Scheduler{
		Spec:       a.cfg.Schedule,
		StateFile:  a.cfg.StateFile,
		RunOnStart: a.cfg.RunOnStart,
		Job: func(ctx context.Context, date time.Time) error {
			defer a.Close()
			_, err := a.RunForDate(ctx, date)
			return err
		},
	}
}

func logMissing(day string, rec extract.Record) {
	if rec.Scripture == "" {
		log.Debug().Str("date", day).Msg("scripture not found")
	}
	if rec.Citation == "" {
		log.Debug().Str("date", day).Msg("citation not found")
	}
	if rec.Commentary == "" {
		log.Debug().Str("date", day).Msg("commentary not found")
	}
}

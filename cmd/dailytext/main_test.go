package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yarko-w/jw-daily-text/internal/app"
)

func feedServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]string{{"content": content}}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func parse(t *testing.T, args ...string) options {
	t.Helper()
	fs := flag.NewFlagSet("dailytext", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	o, err := parseFlags(fs, append([]string{"-env", ""}, args...))
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	return o
}

// Smoke test: ensure run prints the block in dry-run mode with minimal config.
func TestRun_DryRun_PrintsBlock(t *testing.T) {
	srv := feedServer(t, `<p>x</p><p><em>Keep on the watch, because you do not know the day.</em></p>`)
	dir := t.TempDir()
	o := parse(t, "-dry-run", "-feed.base", srv.URL, "-cache.dir", filepath.Join(dir, "cache"), "-date", "2026-01-05")
	var out bytes.Buffer
	if err := run(context.Background(), o, &out); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !strings.Contains(out.String(), "## Daily Text 2026-01-05") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

// Ensures the empty-extraction condition surfaces as an error with exit code 2.
func TestRun_EmptyDailyText_ExitCode(t *testing.T) {
	srv := feedServer(t, `<div>nothing</div>`)
	dir := t.TempDir()
	o := parse(t, "-vault.dir", dir, "-feed.base", srv.URL, "-cache.dir", filepath.Join(dir, "cache"))
	err := run(context.Background(), o, new(bytes.Buffer))
	if !errors.Is(err, app.ErrEmptyDailyText) {
		t.Fatalf("expected ErrEmptyDailyText, got %v", err)
	}
	if exitCode(err) != 2 {
		t.Fatalf("exit code %d, want 2", exitCode(err))
	}
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != 0 {
		t.Fatalf("nil error should exit 0")
	}
	if exitCode(fmt.Errorf("wrapped: %w", app.ErrEmptyDailyText)) != 2 {
		t.Fatalf("wrapped ErrEmptyDailyText should exit 2")
	}
	if exitCode(errors.New("boom")) != 1 {
		t.Fatalf("other errors should exit 1")
	}
}

func TestParseFlags_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "dailytext.yaml")
	content := "vault:\n  dir: /from-file\n  heading: File heading\nfeed:\n  lang: r4/lp-s\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DAILYTEXT_VAULT_DIR", "/from-env")
	t.Setenv("DAILYTEXT_FEED_LANG", "")
	t.Setenv("DAILYTEXT_HEADING", "Env heading")

	o := parse(t, "-config", cfgPath, "-heading", "Flag heading")
	if o.cfg.VaultDir != "/from-env" {
		t.Fatalf("env should beat file, VaultDir=%q", o.cfg.VaultDir)
	}
	if o.cfg.FeedLanguage != "r4/lp-s" {
		t.Fatalf("file should fill unset fields, FeedLanguage=%q", o.cfg.FeedLanguage)
	}
	if o.cfg.Heading != "Flag heading" {
		t.Fatalf("explicit flag should win, Heading=%q", o.cfg.Heading)
	}
	if o.daemon {
		t.Fatalf("no schedule configured, daemon should be false")
	}
}

func TestParseFlags_EnvFillsDefaultsWithoutConfigFile(t *testing.T) {
	t.Setenv("DAILYTEXT_VAULT_DIR", "/from-env")
	t.Setenv("DAILYTEXT_PATH_TEMPLATE", "Journal/{YYYY}-{MM}-{DD}")
	t.Setenv("CACHE_DIR", "/tmp/env-cache")

	o := parse(t, "-cache.dir", "/flag-cache")
	if o.cfg.VaultDir != "/from-env" {
		t.Fatalf("VaultDir=%q, want env value", o.cfg.VaultDir)
	}
	if o.cfg.PathTemplate != "Journal/{YYYY}-{MM}-{DD}" {
		t.Fatalf("env should replace the flag default, PathTemplate=%q", o.cfg.PathTemplate)
	}
	if o.cfg.CacheDir != "/flag-cache" {
		t.Fatalf("explicit flag should win, CacheDir=%q", o.cfg.CacheDir)
	}
}

func TestParseFlags_Invalid(t *testing.T) {
	t.Setenv("DAILYTEXT_VAULT_DIR", "")
	for _, args := range [][]string{
		{"-vault.dir", "/v", "-date", "05/01/2026"},
		{"-vault.dir", "/v", "-schedule", "daily please"},
		{"-path.template", "x"},
		{"-vault.dir", "/v", "-cache.only", "-cache.refresh"},
	} {
		fs := flag.NewFlagSet("dailytext", flag.ContinueOnError)
		fs.SetOutput(new(bytes.Buffer))
		if _, err := parseFlags(fs, append([]string{"-env", ""}, args...)); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestRun_ScheduleStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	o := parse(t, "-vault.dir", dir, "-schedule", "0 0 1 1 *", "-state.file", filepath.Join(dir, "state.json"))
	if !o.daemon {
		t.Fatalf("schedule flag should select daemon mode")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := run(ctx, o, new(bytes.Buffer)); err != nil {
		t.Fatalf("run: %v", err)
	}
}

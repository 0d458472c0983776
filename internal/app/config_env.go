package app

import (
    "os"
    "strings"
    "time"

    "github.com/yarko-w/jw-daily-text/internal/note"
)

// ApplyEnvToConfig populates fields of cfg that are unset or still at their
// flag default from environment variables. Other cfg values take precedence
// over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil { return }

    // def is the flag default that still counts as unset.
    setString := func(dst *string, def string, envKey string) {
        if *dst != "" && *dst != def { return }
        if v := strings.TrimSpace(os.Getenv(envKey)); v != "" { *dst = v }
    }
    setString(&cfg.VaultDir, "", "DAILYTEXT_VAULT_DIR")
    setString(&cfg.PathTemplate, DefaultPathTemplate, "DAILYTEXT_PATH_TEMPLATE")
    setString(&cfg.FeedBaseURL, "", "DAILYTEXT_FEED_BASE")
    setString(&cfg.FeedLanguage, "", "DAILYTEXT_FEED_LANG")
    setString(&cfg.LinkBase, "", "DAILYTEXT_LINK_BASE")
    setString(&cfg.Heading, note.DefaultHeading, "DAILYTEXT_HEADING")
    setString(&cfg.CacheDir, DefaultCacheDir, "CACHE_DIR")
    setString(&cfg.Schedule, "", "DAILYTEXT_SCHEDULE")
    setString(&cfg.StateFile, DefaultStateFile, "DAILYTEXT_STATE_FILE")

    // Optional durations
    if cfg.CacheMaxAge == 0 {
        if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
            if d, err := time.ParseDuration(s); err == nil {
                cfg.CacheMaxAge = d
            }
        }
    }

    // Booleans
    setBool := func(dst *bool, envKey string) {
        if *dst { return }
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            if s == "1" || s == "true" || s == "yes" || s == "on" {
                *dst = true
            }
        }
    }
    setBool(&cfg.DryRun, "DRY_RUN")
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.CacheClear, "CACHE_CLEAR")
}

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This is used to let env take
// precedence over values coming from a config file while still allowing flags
// to remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    setString := func(dst *string, envKey string) {
        if v := strings.TrimSpace(os.Getenv(envKey)); v != "" { *dst = v }
    }
    setString(&cfg.VaultDir, "DAILYTEXT_VAULT_DIR")
    setString(&cfg.PathTemplate, "DAILYTEXT_PATH_TEMPLATE")
    setString(&cfg.FeedBaseURL, "DAILYTEXT_FEED_BASE")
    setString(&cfg.FeedLanguage, "DAILYTEXT_FEED_LANG")
    setString(&cfg.LinkBase, "DAILYTEXT_LINK_BASE")
    setString(&cfg.Heading, "DAILYTEXT_HEADING")
    setString(&cfg.CacheDir, "CACHE_DIR")
    setString(&cfg.Schedule, "DAILYTEXT_SCHEDULE")
    setString(&cfg.StateFile, "DAILYTEXT_STATE_FILE")

    if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
        if d, err := time.ParseDuration(s); err == nil {
            cfg.CacheMaxAge = d
        }
    }

    // Booleans override when env present and truthy/falsey
    setBool := func(dst *bool, envKey string) {
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            switch s {
            case "1", "true", "yes", "on":
                *dst = true
            case "0", "false", "no", "off":
                *dst = false
            }
        }
    }
    setBool(&cfg.DryRun, "DRY_RUN")
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.CacheClear, "CACHE_CLEAR")
}

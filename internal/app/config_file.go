package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "net/url"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/rs/zerolog/log"
    yaml "gopkg.in/yaml.v3"

    "github.com/yarko-w/jw-daily-text/internal/note"
    "github.com/yarko-w/jw-daily-text/internal/schedule"
)

// Defaults shared by flag registration and the file overlay, which only
// replaces a field still holding its default.
const (
    DefaultPathTemplate = note.DefaultPathTemplate
    DefaultCacheDir     = ".dailytext-cache"
    DefaultStateFile    = ".dailytext-state.json"
)

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to the dotted flag names.
type FileConfig struct {
    Vault struct {
        Dir          string `yaml:"dir" json:"dir"`
        PathTemplate string `yaml:"pathTemplate" json:"pathTemplate"`
        PDFTemplate  string `yaml:"pdfTemplate" json:"pdfTemplate"`
        Heading      string `yaml:"heading" json:"heading"`
    } `yaml:"vault" json:"vault"`

    Feed struct {
        Base     string `yaml:"base" json:"base"`
        Lang     string `yaml:"lang" json:"lang"`
        LinkBase string `yaml:"linkBase" json:"linkBase"`
    } `yaml:"feed" json:"feed"`

    Cache struct {
        Dir         string        `yaml:"dir" json:"dir"`
        MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
        Clear       bool          `yaml:"clear" json:"clear"`
        StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
        Only        bool          `yaml:"only" json:"only"`
        Refresh     bool          `yaml:"refresh" json:"refresh"`
    } `yaml:"cache" json:"cache"`

    Schedule struct {
        Spec       string `yaml:"spec" json:"spec"`
        RunOnStart bool   `yaml:"runOnStart" json:"runOnStart"`
        StateFile  string `yaml:"stateFile" json:"stateFile"`
    } `yaml:"schedule" json:"schedule"`

    DryRun  bool `yaml:"dryRun" json:"dryRun"`
    Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still at their flag default. Flags should already
// have been parsed; explicit flags are preserved.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if cfg.VaultDir == "" && fc.Vault.Dir != "" { cfg.VaultDir = fc.Vault.Dir }
    if (cfg.PathTemplate == "" || cfg.PathTemplate == DefaultPathTemplate) && fc.Vault.PathTemplate != "" { cfg.PathTemplate = fc.Vault.PathTemplate }
    if cfg.PDFPathTemplate == "" && fc.Vault.PDFTemplate != "" { cfg.PDFPathTemplate = fc.Vault.PDFTemplate }
    if (cfg.Heading == "" || cfg.Heading == note.DefaultHeading) && fc.Vault.Heading != "" { cfg.Heading = fc.Vault.Heading }

    if cfg.FeedBaseURL == "" && fc.Feed.Base != "" { cfg.FeedBaseURL = fc.Feed.Base }
    if cfg.FeedLanguage == "" && fc.Feed.Lang != "" { cfg.FeedLanguage = fc.Feed.Lang }
    if cfg.LinkBase == "" && fc.Feed.LinkBase != "" { cfg.LinkBase = fc.Feed.LinkBase }

    if (cfg.CacheDir == "" || cfg.CacheDir == DefaultCacheDir) && fc.Cache.Dir != "" { cfg.CacheDir = fc.Cache.Dir }
    if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 { cfg.CacheMaxAge = fc.Cache.MaxAge }
    if !cfg.CacheClear && fc.Cache.Clear { cfg.CacheClear = true }
    if !cfg.CacheStrictPerms && fc.Cache.StrictPerms { cfg.CacheStrictPerms = true }
    if !cfg.HTTPCacheOnly && fc.Cache.Only { cfg.HTTPCacheOnly = true }
    if !cfg.HTTPCacheRefresh && fc.Cache.Refresh { cfg.HTTPCacheRefresh = true }

    if (cfg.Schedule == "" || cfg.Schedule == schedule.DefaultSpec) && fc.Schedule.Spec != "" { cfg.Schedule = fc.Schedule.Spec }
    if !cfg.RunOnStart && fc.Schedule.RunOnStart { cfg.RunOnStart = true }
    if (cfg.StateFile == "" || cfg.StateFile == DefaultStateFile) && fc.Schedule.StateFile != "" { cfg.StateFile = fc.Schedule.StateFile }

    if !cfg.DryRun && fc.DryRun { cfg.DryRun = true }
    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }
}

// ValidateConfig performs minimal schema validation for required settings.
// In dry-run mode nothing is written, so the vault may be omitted.
func ValidateConfig(cfg Config) error {
    if !cfg.DryRun && strings.TrimSpace(cfg.VaultDir) == "" {
        return errors.New("config: vault.dir is required (or set DAILYTEXT_VAULT_DIR)")
    }
    sample := time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC)
    if _, err := note.ExpandPath(cfg.PathTemplate, sample); err != nil {
        return fmt.Errorf("config: path.template: %w", err)
    }
    if strings.TrimSpace(cfg.PathTemplate) != "" && !note.HasDateToken(cfg.PathTemplate) {
        log.Warn().Str("template", cfg.PathTemplate).Msg("path template has no date token; every day is appended to the same note")
    }
    if strings.TrimSpace(cfg.PDFPathTemplate) != "" {
        if _, err := note.ExpandPath(cfg.PDFPathTemplate, sample); err != nil {
            return fmt.Errorf("config: pdf: %w", err)
        }
    }
    for name, raw := range map[string]string{"feed.base": cfg.FeedBaseURL, "link base": cfg.LinkBase} {
        if strings.TrimSpace(raw) == "" {
            continue
        }
        u, err := url.Parse(raw)
        if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
            return fmt.Errorf("config: %s must be an absolute http(s) URL, got %q", name, raw)
        }
    }
    if strings.TrimSpace(cfg.Schedule) != "" {
        if err := schedule.ParseSpec(cfg.Schedule); err != nil {
            return fmt.Errorf("config: %w", err)
        }
    }
    if cfg.HTTPCacheOnly && cfg.HTTPCacheRefresh {
        return errors.New("config: cache.only and cache.refresh are mutually exclusive")
    }
    if cfg.CacheMaxAge < 0 {
        return errors.New("config: negative cache max age is not allowed")
    }
    return nil
}

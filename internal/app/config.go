package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// Vault
	VaultDir        string
	PathTemplate    string
	PDFPathTemplate string
	Heading         string

	// Feed
	FeedBaseURL  string
	FeedLanguage string
	LinkBase     string

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	HTTPCacheOnly    bool
	// HTTPCacheRefresh skips revalidation and always refetches, still
	// storing the fresh response.
	HTTPCacheRefresh bool

	// Schedule
	Schedule   string
	RunOnStart bool
	StateFile  string

	// Behavior
	DryRun  bool
	Verbose bool
}

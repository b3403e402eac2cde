// Package config loads the process-wide environment overrides once at
// startup and hands out an immutable Config thereafter.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config is constructed once and never mutated after New returns.
type Config struct {
	SearxBaseURL       string
	SearxDefaultCat    string
	SearxDefaultResults int
	SearxMaxResults    int
	CrawlMaxChars      int
	MaxResponseChars   int
	UsageLogPath       string
	PixabayAPIKey      string
	GitHubToken        string
	UserAgent          string
}

// Option overrides a field of the default Config; used by tests.
type Option func(*Config)

func WithSearxBaseURL(u string) Option       { return func(c *Config) { c.SearxBaseURL = u } }
func WithMaxResponseChars(n int) Option      { return func(c *Config) { c.MaxResponseChars = n } }
func WithUsageLogPath(p string) Option       { return func(c *Config) { c.UsageLogPath = p } }

// New builds a Config from environment variables, then applies opts.
func New(opts ...Option) *Config {
	c := &Config{
		SearxBaseURL:        env("SEARXNG_BASE_URL", "http://localhost:2288/search"),
		SearxDefaultCat:     env("SEARXNG_DEFAULT_CATEGORY", "general"),
		SearxDefaultResults: envInt("SEARXNG_DEFAULT_RESULTS", 5),
		SearxMaxResults:     envInt("SEARXNG_MAX_RESULTS", 10),
		CrawlMaxChars:       envInt("SEARXNG_CRAWL_MAX_CHARS", 8000),
		MaxResponseChars:    envInt("MCP_MAX_RESPONSE_CHARS", 8000),
		UsageLogPath:        env("MCP_USAGE_LOG", defaultUsagePath()),
		PixabayAPIKey:       os.Getenv("PIXABAY_API_KEY"),
		GitHubToken:         os.Getenv("GITHUB_TOKEN"),
		UserAgent:           env("SEARXNG_MCP_USER_AGENT", "web-research-assistant/1.0"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func defaultUsagePath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "web-research-assistant", "usage.json")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Package config assembles run settings from defaults, the user's config
// file, and the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pevans/roadside/fetch"
	"github.com/pevans/roadside/scraper"
)

// Environment variables read by ApplyEnv.
const (
	EnvTimeout     = "ROADSIDE_TIMEOUT"
	EnvUserAgent   = "ROADSIDE_USER_AGENT"
	EnvCooldown    = "ROADSIDE_COOLDOWN"
	EnvEndpoint    = "ROADSIDE_ENDPOINT"
	EnvHomepage    = "ROADSIDE_HOMEPAGE"
	EnvCacheDSN    = "ROADSIDE_CACHE_DSN"
	EnvCacheMaxAge = "ROADSIDE_CACHE_MAX_AGE"
	EnvMetricsFile = "ROADSIDE_METRICS_FILE"
)

// Config holds the settings for one run.
type Config struct {
	Site      *scraper.Site
	Timeout   time.Duration
	UserAgent string

	// Cooldown is the pause between successive region requests.
	Cooldown time.Duration

	// CacheDSN is the marker cache database path. Empty disables caching.
	CacheDSN    string
	CacheMaxAge time.Duration

	// MetricsFile receives a Prometheus textfile after the run when set.
	MetricsFile string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Site:        scraper.NewSite(),
		Timeout:     fetch.DefaultTimeout,
		UserAgent:   fetch.DefaultUserAgent,
		Cooldown:    1 * time.Second,
		CacheMaxAge: 24 * time.Hour,
	}
}

// Load builds the configuration from defaults, ~/.roadside/config.yaml,
// a .env file in the working directory, and the process environment, in
// increasing order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	fileCfg, err := LoadConfigFile()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyFile(fileCfg); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Ignoring .env file: %v", err)
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyFile overrides settings present in fc. A nil fc changes nothing.
func (c *Config) ApplyFile(fc *FileConfig) error {
	if fc == nil {
		return nil
	}

	var err error
	if c.Timeout, err = durationOr(fc.HTTP.Timeout, c.Timeout, "http.timeout"); err != nil {
		return err
	}
	if c.Cooldown, err = durationOr(fc.HTTP.Cooldown, c.Cooldown, "http.cooldown"); err != nil {
		return err
	}
	if c.CacheMaxAge, err = durationOr(fc.Cache.MaxAge, c.CacheMaxAge, "cache.max_age"); err != nil {
		return err
	}

	c.UserAgent = stringOr(fc.HTTP.UserAgent, c.UserAgent)
	c.Site.Endpoint = stringOr(fc.Site.Endpoint, c.Site.Endpoint)
	c.Site.Homepage = stringOr(fc.Site.Homepage, c.Site.Homepage)
	c.Site.MarkerFunc = stringOr(fc.Site.MarkerFunc, c.Site.MarkerFunc)
	c.CacheDSN = stringOr(fc.Cache.DSN, c.CacheDSN)
	c.MetricsFile = stringOr(fc.Metrics.Textfile, c.MetricsFile)

	return nil
}

// ApplyEnv overrides settings from environment variables read with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	var err error
	if c.Timeout, err = durationOr(getenv(EnvTimeout), c.Timeout, EnvTimeout); err != nil {
		return err
	}
	if c.Cooldown, err = durationOr(getenv(EnvCooldown), c.Cooldown, EnvCooldown); err != nil {
		return err
	}
	if c.CacheMaxAge, err = durationOr(getenv(EnvCacheMaxAge), c.CacheMaxAge, EnvCacheMaxAge); err != nil {
		return err
	}

	c.UserAgent = stringOr(getenv(EnvUserAgent), c.UserAgent)
	c.Site.Endpoint = stringOr(getenv(EnvEndpoint), c.Site.Endpoint)
	c.Site.Homepage = stringOr(getenv(EnvHomepage), c.Site.Homepage)
	c.CacheDSN = stringOr(getenv(EnvCacheDSN), c.CacheDSN)
	c.MetricsFile = stringOr(getenv(EnvMetricsFile), c.MetricsFile)

	return nil
}

func stringOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func durationOr(value string, fallback time.Duration, key string) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// ParseDuration extends time.ParseDuration to support 'd' (days) and 'w'
// (weeks)
func ParseDuration(s string) (time.Duration, error) {
	// Try standard parsing first
	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	// Handle days (d) and weeks (w)
	for suffix, unit := range map[string]time.Duration{
		"d": 24 * time.Hour,
		"w": 7 * 24 * time.Hour,
	} {
		if !strings.HasSuffix(s, suffix) {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &n); err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(n) * unit, nil
	}

	return 0, fmt.Errorf("invalid duration: %s", s)
}

// Package roadside extracts roadside attraction markers from per-region map
// pages and collects them for GPX export.
package roadside

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/pevans/roadside/cache"
	"github.com/pevans/roadside/markers"
	"github.com/pevans/roadside/metrics"
	"github.com/pevans/roadside/scraper"
	"golang.org/x/time/rate"
)

// Fetcher retrieves a page as text.
type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

// ExtractorConfig holds configuration for an extraction run.
type ExtractorConfig struct {
	Site *scraper.Site

	// Pause between successive network requests. Not applied before the
	// first request or after the last.
	Cooldown time.Duration

	// Cached regions older than this are fetched again. Zero never expires.
	CacheMaxAge time.Duration

	// Refresh skips cache reads; fresh results are still written.
	Refresh bool

	// Progress is called after each region finishes.
	Progress func(done, total int, region string)

	// Logger receives operational messages. Nil discards them.
	Logger *log.Logger
}

// DefaultExtractorConfig returns the default configuration.
func DefaultExtractorConfig() *ExtractorConfig {
	return &ExtractorConfig{
		Site:        scraper.NewSite(),
		Cooldown:    1 * time.Second,
		CacheMaxAge: 24 * time.Hour,
	}
}

// RegionResult summarizes one region of a run.
type RegionResult struct {
	Region         string
	Markers        int
	Malformed      int
	ScriptsSkipped int
	Cached         bool
}

// Result is the outcome of a run. Markers are in region order, then script
// order within each region.
type Result struct {
	Markers        []markers.Marker
	Regions        []RegionResult
	Malformed      int
	ScriptsSkipped int
}

// Extractor runs the extraction pipeline over regions one at a time.
type Extractor struct {
	fetcher   Fetcher
	store     *cache.Store
	collector *metrics.Collector
	config    *ExtractorConfig
	limiter   *rate.Limiter
	logger    *log.Logger
	now       func() time.Time
}

// NewExtractor creates an extractor. store and collector may be nil.
func NewExtractor(
	fetcher Fetcher,
	store *cache.Store,
	collector *metrics.Collector,
	config *ExtractorConfig,
) *Extractor {
	if config == nil {
		config = DefaultExtractorConfig()
	}
	if config.Site == nil {
		config.Site = scraper.NewSite()
	}

	limit := rate.Inf
	if config.Cooldown > 0 {
		limit = rate.Every(config.Cooldown)
	}

	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Extractor{
		fetcher:   fetcher,
		store:     store,
		collector: collector,
		config:    config,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
		now:       time.Now,
	}
}

// Run extracts markers for each region in order and concatenates them. It
// stops at the first region whose page cannot be fetched or yields no
// markers; no partial result is returned in that case.
func (e *Extractor) Run(ctx context.Context, regionCodes []string) (*Result, error) {
	result := &Result{}

	for i, region := range regionCodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		found, rr, err := e.extractRegion(ctx, region)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", region, err)
		}

		result.Markers = append(result.Markers, found...)
		result.Regions = append(result.Regions, rr)
		result.Malformed += rr.Malformed
		result.ScriptsSkipped += rr.ScriptsSkipped

		if e.config.Progress != nil {
			e.config.Progress(i+1, len(regionCodes), region)
		}
	}

	return result, nil
}

func (e *Extractor) extractRegion(ctx context.Context, region string) ([]markers.Marker, RegionResult, error) {
	rr := RegionResult{Region: region}

	if found, ok := e.loadCached(region); ok {
		rr.Markers = len(found)
		rr.Cached = true
		e.collector.ObserveCacheHit(region, len(found))
		e.logger.Printf("INFO: %s: %d markers from cache", region, len(found))
		return found, rr, nil
	}

	pageURL, err := e.config.Site.RegionURL(region)
	if err != nil {
		return nil, rr, err
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, rr, err
	}

	e.logger.Printf("INFO: Fetching %s", pageURL)
	start := time.Now()
	page, err := e.fetcher.Get(ctx, pageURL)
	e.collector.ObserveFetch(region, err, time.Since(start))
	if err != nil {
		return nil, rr, err
	}

	located, err := markers.LocateHTML(page, e.config.Site.MarkerFunc)
	if err != nil {
		var nf *markers.NoMarkersFoundError
		if errors.As(err, &nf) {
			e.collector.ObservePage(region, 0, nf.Malformed, len(nf.ParseErrors))
		}
		return nil, rr, err
	}

	rr.Markers = len(located.Markers)
	rr.Malformed = len(located.Malformed)
	rr.ScriptsSkipped = located.Skipped
	e.collector.ObservePage(region, rr.Markers, rr.Malformed, rr.ScriptsSkipped)

	for _, me := range located.Malformed {
		e.logger.Printf("WARN: %s: skipped %v", region, me)
	}
	e.logger.Printf("INFO: %s: %d markers from script block %d", region, rr.Markers, located.Block)

	if e.store != nil {
		if _, err := e.store.SaveRegion(region, located.Markers, e.now()); err != nil {
			e.logger.Printf("WARN: %s: failed to cache markers: %v", region, err)
		}
	}

	return located.Markers, rr, nil
}

// loadCached returns the cached markers for a region when the cache is
// enabled, readable, and fresh.
func (e *Extractor) loadCached(region string) ([]markers.Marker, bool) {
	if e.store == nil || e.config.Refresh {
		return nil, false
	}

	found, _, err := e.store.LoadRegion(region, e.config.CacheMaxAge, e.now())
	switch {
	case err == nil:
		return found, true
	case errors.Is(err, cache.ErrNotCached):
	case errors.Is(err, cache.ErrStale):
		e.logger.Printf("INFO: %s: cached markers are stale", region)
	default:
		e.logger.Printf("WARN: %s: failed to read cache: %v", region, err)
	}
	return nil, false
}

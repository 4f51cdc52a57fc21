// Package metrics records extraction runs as Prometheus metrics. A run is a
// short-lived process, so metrics are written to a node-exporter textfile
// rather than served.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes used for the outcome label.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector bundles the run's Prometheus metrics. A nil *Collector is valid
// and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Fetches          *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	MarkersExtracted *prometheus.CounterVec
	MarkersMalformed prometheus.Counter
	ScriptsSkipped   prometheus.Counter
	CacheHits        prometheus.Counter
}

// NewCollector registers the metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	fetches, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roadside_fetches_total",
		Help: "Region page requests, labeled by region and outcome.",
	}, []string{"region", "outcome"}), "roadside_fetches_total")
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roadside_fetch_duration_seconds",
		Help:    "Region page request latency in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}), "roadside_fetch_duration_seconds")
	if err != nil {
		return nil, err
	}

	extracted, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roadside_markers_extracted_total",
		Help: "Markers extracted, labeled by region.",
	}, []string{"region"}), "roadside_markers_extracted_total")
	if err != nil {
		return nil, err
	}

	malformed, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roadside_markers_malformed_total",
		Help: "Marker calls skipped because their arguments could not be read.",
	}), "roadside_markers_malformed_total")
	if err != nil {
		return nil, err
	}

	skipped, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roadside_scripts_skipped_total",
		Help: "Script blocks skipped because they failed to parse.",
	}), "roadside_scripts_skipped_total")
	if err != nil {
		return nil, err
	}

	hits, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roadside_cache_hits_total",
		Help: "Regions served from the marker cache.",
	}), "roadside_cache_hits_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		Fetches:          fetches,
		FetchDuration:    duration,
		MarkersExtracted: extracted,
		MarkersMalformed: malformed,
		ScriptsSkipped:   skipped,
		CacheHits:        hits,
	}, nil
}

// ObserveFetch records one region request.
func (c *Collector) ObserveFetch(region string, err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	c.Fetches.WithLabelValues(region, outcome).Inc()
	c.FetchDuration.Observe(elapsed.Seconds())
}

// ObservePage records the outcome of locating markers on a region's page.
func (c *Collector) ObservePage(region string, extracted, malformed, skipped int) {
	if c == nil {
		return
	}
	c.MarkersExtracted.WithLabelValues(region).Add(float64(extracted))
	c.MarkersMalformed.Add(float64(malformed))
	c.ScriptsSkipped.Add(float64(skipped))
}

// ObserveCacheHit records a region served from the cache.
func (c *Collector) ObserveCacheHit(region string, extracted int) {
	if c == nil {
		return
	}
	c.CacheHits.Inc()
	c.MarkersExtracted.WithLabelValues(region).Add(float64(extracted))
}

// WriteTextfile writes every gathered metric to path in the text exposition
// format, replacing the file atomically.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// register adds col to reg, reusing an identical collector that is already
// registered.
func register[T prometheus.Collector](reg prometheus.Registerer, col T, name string) (T, error) {
	if err := reg.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return col, nil
}

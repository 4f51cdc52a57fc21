package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a collector on a private registry
func createTestCollector(t *testing.T) *Collector {
	t.Helper()
	c, err := NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)
	return c
}

// TestObserveFetch verifies fetch counts by outcome
func TestObserveFetch(t *testing.T) {
	c := createTestCollector(t)

	c.ObserveFetch("CA", nil, 200*time.Millisecond)
	c.ObserveFetch("CA", nil, 300*time.Millisecond)
	c.ObserveFetch("NY", errors.New("boom"), time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Fetches.WithLabelValues("CA", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Fetches.WithLabelValues("NY", OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.FetchDuration))
}

// TestObservePage verifies marker and script tallies
func TestObservePage(t *testing.T) {
	c := createTestCollector(t)

	c.ObservePage("CA", 10, 2, 1)
	c.ObservePage("NY", 5, 1, 0)

	assert.Equal(t, 10.0, testutil.ToFloat64(c.MarkersExtracted.WithLabelValues("CA")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.MarkersExtracted.WithLabelValues("NY")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.MarkersMalformed))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ScriptsSkipped))
}

// TestObserveCacheHit verifies cached regions still count markers
func TestObserveCacheHit(t *testing.T) {
	c := createTestCollector(t)

	c.ObserveCacheHit("TX", 7)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheHits))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.MarkersExtracted.WithLabelValues("TX")))
}

// TestNilCollector verifies a nil collector is a no-op
func TestNilCollector(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveFetch("CA", nil, time.Second)
		c.ObservePage("CA", 1, 1, 1)
		c.ObserveCacheHit("CA", 1)
	})
	assert.NoError(t, c.WriteTextfile(filepath.Join(t.TempDir(), "unused.prom")))
}

// TestNewCollector_ReusesRegistered verifies registering twice is allowed
func TestNewCollector_ReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewCollector(reg)
	require.NoError(t, err)
	second, err := NewCollector(reg)
	require.NoError(t, err)

	first.ObservePage("CA", 4, 0, 0)
	assert.Equal(t, 4.0, testutil.ToFloat64(second.MarkersExtracted.WithLabelValues("CA")))
}

// TestWriteTextfile verifies the exposition file contents
func TestWriteTextfile(t *testing.T) {
	c := createTestCollector(t)
	c.ObserveFetch("CA", nil, time.Second)
	c.ObservePage("CA", 3, 0, 0)

	path := filepath.Join(t.TempDir(), "roadside.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `roadside_fetches_total{outcome="ok",region="CA"} 1`)
	assert.Contains(t, string(data), `roadside_markers_extracted_total{region="CA"} 3`)
}

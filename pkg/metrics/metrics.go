// Package metrics instruments the browser's internal pipelines (timeline
// production, diff assembly, blame annotation, cache hit rate) with
// Prometheus client instruments held on a private registry. There is no
// scrape endpoint — the browser does no networking — so Render formats the
// gathered families as text for an in-app diagnostics overlay or log line.
package metrics

import (
	"bytes"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const (
	namespace = "fnc"
)

// Metrics holds the instruments for one browser session.
type Metrics struct {
	registry *prometheus.Registry

	commitsProduced   prometheus.Counter
	diffsBuilt        prometheus.Counter
	diffBuildDuration prometheus.Histogram
	blameDuration     prometheus.Histogram
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
}

// New creates and registers a fresh set of instruments on a private
// registry, isolated from any process-global default registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		commitsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_produced_total",
			Help:      "Number of commit artifacts emitted by the timeline producer.",
		}),
		diffsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diffs_built_total",
			Help:      "Number of diffs assembled by the diff engine.",
		}),
		diffBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "diff_build_duration_seconds",
			Help:      "Time spent assembling a single diff.",
			Buckets:   prometheus.DefBuckets,
		}),
		blameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "blame_duration_seconds",
			Help:      "Time spent running a blame annotation.",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diff_cache_hits_total",
			Help:      "Diff cache lookups that found a cached buffer.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diff_cache_misses_total",
			Help:      "Diff cache lookups that required a rebuild.",
		}),
	}

	registry.MustRegister(
		m.commitsProduced,
		m.diffsBuilt,
		m.diffBuildDuration,
		m.blameDuration,
		m.cacheHits,
		m.cacheMisses,
	)

	return m
}

// RecordCommitProduced increments the commits-produced counter.
func (m *Metrics) RecordCommitProduced() {
	m.commitsProduced.Inc()
}

// RecordDiffBuild records one diff assembly taking d.
func (m *Metrics) RecordDiffBuild(d time.Duration) {
	m.diffsBuilt.Inc()
	m.diffBuildDuration.Observe(d.Seconds())
}

// RecordBlame records one blame annotation run taking d.
func (m *Metrics) RecordBlame(d time.Duration) {
	m.blameDuration.Observe(d.Seconds())
}

// RecordCacheHit increments the diff cache hit counter.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Inc()
}

// RecordCacheMiss increments the diff cache miss counter.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Inc()
}

// Render formats every gathered metric family in Prometheus text exposition
// format, for display in an in-app diagnostics panel.
func (m *Metrics) Render() (string, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("metrics: gather: %w", err)
	}

	var buf bytes.Buffer

	encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)

	for _, family := range families {
		if encErr := encoder.Encode(family); encErr != nil {
			return "", fmt.Errorf("metrics: encode: %w", encErr)
		}
	}

	return buf.String(), nil
}

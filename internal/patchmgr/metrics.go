package patchmgr

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes manager-level Prometheus instrumentation. Nothing here
// ever sees a patch's internal maps: only complexity counts, branch counts,
// and operation durations cross this boundary.
type Metrics struct {
	complexity   prometheus.Histogram
	branchCount  prometheus.Gauge
	mergeSeconds prometheus.Histogram
	purgeSeconds prometheus.Histogram
}

// NewMetrics builds and registers the manager's Prometheus collectors under
// the given namespace against reg. Pass prometheus.NewRegistry() for an
// isolated registry, or prometheus.DefaultRegisterer for the global one.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		complexity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "patch_complexity",
			Help:      "Complexity (spent-output count) of tracked patches.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		branchCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "branches_in_flight",
			Help:      "Number of speculative patch branches currently tracked.",
		}),
		mergeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "merge_duration_seconds",
			Help:      "Time spent merging two patch branches.",
			Buckets:   prometheus.DefBuckets,
		}),
		purgeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "purge_duration_seconds",
			Help:      "Time spent purging in-flight branches after a stabilize.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.complexity, m.branchCount, m.mergeSeconds, m.purgeSeconds)
	return m
}

// ObserveComplexity records a patch's complexity at the moment it was
// tracked or produced by a merge.
func (m *Metrics) ObserveComplexity(c int) {
	m.complexity.Observe(float64(c))
}

// SetBranchCount records how many branches the manager currently tracks.
func (m *Metrics) SetBranchCount(n int) {
	m.branchCount.Set(float64(n))
}

// mergeTimer starts a timer that records into mergeSeconds on ObserveDuration.
func (m *Metrics) mergeTimer() *prometheus.Timer {
	return prometheus.NewTimer(m.mergeSeconds)
}

// purgeTimer starts a timer that records into purgeSeconds on ObserveDuration.
func (m *Metrics) purgeTimer() *prometheus.Timer {
	return prometheus.NewTimer(m.purgeSeconds)
}

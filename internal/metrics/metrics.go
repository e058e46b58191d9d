// Package metrics exposes Prometheus instruments for listing assembly,
// subgraph traffic, snapshot refreshes and submitted transactions.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lpmarket"

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	listingsAssembled *prometheus.CounterVec
	assembleDuration  *prometheus.HistogramVec
	subgraphRequests  *prometheus.CounterVec
	subgraphDuration  *prometheus.HistogramVec
	refreshes         *prometheus.CounterVec
	snapshotListings  *prometheus.GaugeVec
	transactions      *prometheus.CounterVec
}

// New registers all instruments with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, fmt.Errorf("metrics: registerer cannot be nil")
	}

	m := &Metrics{
		listingsAssembled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_assembled_total",
			Help:      "Listing records assembled, by variant and outcome.",
		}, []string{"variant", "outcome"}),
		assembleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "listing_assemble_seconds",
			Help:      "Time to assemble one listing record.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"variant"}),
		subgraphRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subgraph_requests_total",
			Help:      "Subgraph queries, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		subgraphDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "subgraph_request_seconds",
			Help:      "Subgraph query latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_refreshes_total",
			Help:      "Snapshot refreshes, by outcome (published, stale, sink_error).",
		}, []string{"outcome"}),
		snapshotListings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_listings",
			Help:      "Records in the published snapshot, by variant.",
		}, []string{"variant"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Marketplace transactions submitted, by variant, operation and outcome.",
		}, []string{"variant", "operation", "outcome"}),
	}

	collectors := []prometheus.Collector{
		m.listingsAssembled,
		m.assembleDuration,
		m.subgraphRequests,
		m.subgraphDuration,
		m.refreshes,
		m.snapshotListings,
		m.transactions,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return m, nil
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// ObserveAssemble records one listing assembly. Failed assemblies become placeholders.
func (m *Metrics) ObserveAssemble(variant string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "placeholder"
	}
	m.listingsAssembled.WithLabelValues(variant, result).Inc()
	m.assembleDuration.WithLabelValues(variant).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveSubgraph(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.subgraphRequests.WithLabelValues(operation, outcome(err == nil)).Inc()
	m.subgraphDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRefresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) SetSnapshotSize(variant string, n int) {
	if m == nil {
		return
	}
	m.snapshotListings.WithLabelValues(variant).Set(float64(n))
}

func (m *Metrics) ObserveTransaction(variant, operation string, ok bool) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(variant, operation, outcome(ok)).Inc()
}

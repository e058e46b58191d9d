package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveAssemble("RENTAL", true, time.Millisecond)
	m.ObserveAssemble("RENTAL", false, time.Millisecond)
	m.ObserveAssemble("RENTAL", false, time.Millisecond)
	m.ObserveSubgraph("position", errors.New("boom"), time.Millisecond)
	m.ObserveRefresh("published")
	m.SetSnapshotSize("SALE", 7)
	m.ObserveTransaction("SALE", "create", true)

	require.Equal(t, 1.0, testutil.ToFloat64(m.listingsAssembled.WithLabelValues("RENTAL", "ok")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.listingsAssembled.WithLabelValues("RENTAL", "placeholder")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.subgraphRequests.WithLabelValues("position", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.refreshes.WithLabelValues("published")))
	require.Equal(t, 7.0, testutil.ToFloat64(m.snapshotListings.WithLabelValues("SALE")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.transactions.WithLabelValues("SALE", "create", "ok")))
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	require.Error(t, err)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAssemble("RENTAL", true, time.Second)
	m.ObserveSubgraph("position", nil, time.Second)
	m.ObserveRefresh("stale")
	m.SetSnapshotSize("SALE", 1)
	m.ObserveTransaction("SALE", "create", false)
}

func TestNilRegisterer(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

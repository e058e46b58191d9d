package subgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lpmarket/internal/model"
)

func TestPriceSeries(t *testing.T) {
	points := PriceSeries([]model.Swap{
		{Amount0: "-3000", Amount1: "1.5", Timestamp: "1700000000"},
		{Amount0: "10", Amount1: "0", Timestamp: "1700000001"},
		{Amount0: "bad", Amount1: "1", Timestamp: "1700000002"},
	})
	require.Len(t, points, 1)
	require.Equal(t, 2000.0, points[0].Value)
	require.Equal(t, int64(1700000000), points[0].Time.Unix())
}

func TestVolumeSeries(t *testing.T) {
	points := VolumeSeries([]PoolDayData{{Date: 1700006400, VolumeUSD: "12345.5"}})
	require.Len(t, points, 1)
	require.Equal(t, 12345.5, points[0].Value)
}

package tickprice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZeroTickEqualDecimals(t *testing.T) {
	low, high := PriceRangesFromTicks(0, 0, 18, 18)
	require.Equal(t, 1.0, low)
	require.Equal(t, 1.0, high)
}

func TestDecimalsScaleByTen(t *testing.T) {
	for _, tc := range []struct {
		lower, upper int32
		d0, d1       uint8
	}{
		{-1000, 1000, 6, 18},
		{200000, 210000, 18, 6},
		{-50, 50, 8, 8},
	} {
		low, high := PriceRangesFromTicks(tc.lower, tc.upper, tc.d0, tc.d1)
		lowUp, highUp := PriceRangesFromTicks(tc.lower, tc.upper, tc.d0+1, tc.d1)
		require.InEpsilon(t, low*10, lowUp, 1e-12)
		require.InEpsilon(t, high*10, highUp, 1e-12)
	}
}

func TestPriceRangesAreReciprocal(t *testing.T) {
	low, high := PriceRangesFromTicks(-887220, 887220, 6, 18)
	ranges := PriceRanges(low, high)

	require.InEpsilon(t, 1.0, ranges[0].Lower*ranges[1].Upper, 1e-9)
	require.InEpsilon(t, 1.0, ranges[0].Upper*ranges[1].Lower, 1e-9)
}

func TestFullRangeIsFinite(t *testing.T) {
	low, high := PriceRangesFromTicks(-887220, 887220, 6, 18)
	for _, v := range []float64{low, high, 1 / low, 1 / high} {
		require.False(t, math.IsNaN(v))
		require.False(t, math.IsInf(v, 0))
		require.Greater(t, v, 0.0)
	}
}

func TestRangeToShowFlipsWithTokenOrder(t *testing.T) {
	low, high := PriceRangesFromTicks(100, 200, 18, 18)
	require.Equal(t, 1, RangeToShow(low, high))

	// Swapping token0 and token1 negates and reorders the ticks.
	swappedLow, swappedHigh := PriceRangesFromTicks(-200, -100, 18, 18)
	require.Equal(t, 0, RangeToShow(swappedLow, swappedHigh))
}

func TestDescribe(t *testing.T) {
	ranges, show := Describe(-100, 300, 18, 18)
	require.Equal(t, 1, show)
	require.InDelta(t, 0.99005, ranges[1].Lower, 1e-5)
	require.InDelta(t, 1.03045, ranges[1].Upper, 1e-5)
	require.InDelta(t, 1/1.03045, ranges[0].Lower, 1e-5)
}

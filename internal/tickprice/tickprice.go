// Package tickprice converts Uniswap V3 tick bounds into human prices.
package tickprice

import (
	"math"

	"lpmarket/internal/model"
)

// Base is the price ratio between adjacent ticks.
const Base = 1.0001

// Bounds of the tick domain accepted by the position manager.
const (
	MinTick = -887272
	MaxTick = 887272
)

// AdjustedPrice returns the token1-per-token0 price at tick, scaled by the
// decimals difference of the pair.
func AdjustedPrice(tick int32, decimals0, decimals1 uint8) float64 {
	return math.Pow(Base, float64(tick)) * math.Pow10(int(decimals0)-int(decimals1))
}

// PriceRangesFromTicks returns the raw lower and upper prices of a position.
func PriceRangesFromTicks(tickLower, tickUpper int32, decimals0, decimals1 uint8) (float64, float64) {
	return AdjustedPrice(tickLower, decimals0, decimals1), AdjustedPrice(tickUpper, decimals0, decimals1)
}

// RangeToShow picks the orientation whose numbers read larger: 1 when the raw
// range lies above its reciprocal, 0 otherwise.
func RangeToShow(low, high float64) int {
	if low > 1/high {
		return 1
	}
	return 0
}

// PriceRanges returns both orientations; index 0 is the reciprocal of index 1.
func PriceRanges(low, high float64) [2]model.PriceRange {
	return [2]model.PriceRange{
		{Lower: 1 / high, Upper: 1 / low},
		{Lower: low, Upper: high},
	}
}

// Describe builds the price fields of a position in one call.
func Describe(tickLower, tickUpper int32, decimals0, decimals1 uint8) ([2]model.PriceRange, int) {
	low, high := PriceRangesFromTicks(tickLower, tickUpper, decimals0, decimals1)
	return PriceRanges(low, high), RangeToShow(low, high)
}

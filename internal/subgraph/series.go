package subgraph

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"lpmarket/internal/model"
)

// Point is one sample of a chart series.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// PriceSeries converts swaps into token0-per-token1 prices, -amount0/amount1.
// Swaps with a zero or unparsable amount are skipped.
func PriceSeries(swaps []model.Swap) []Point {
	points := make([]Point, 0, len(swaps))
	for _, swap := range swaps {
		amount0, err := decimal.NewFromString(swap.Amount0)
		if err != nil {
			continue
		}
		amount1, err := decimal.NewFromString(swap.Amount1)
		if err != nil || amount1.IsZero() {
			continue
		}
		ts, err := strconv.ParseInt(swap.Timestamp, 10, 64)
		if err != nil {
			continue
		}
		price, _ := amount0.Neg().DivRound(amount1, 18).Float64()
		points = append(points, Point{Time: time.Unix(ts, 0).UTC(), Value: price})
	}
	return points
}

// VolumeSeries converts pool day data into daily USD volume.
func VolumeSeries(days []PoolDayData) []Point {
	points := make([]Point, 0, len(days))
	for _, day := range days {
		volume, err := decimal.NewFromString(day.VolumeUSD)
		if err != nil {
			continue
		}
		value, _ := volume.Float64()
		points = append(points, Point{Time: time.Unix(day.Date, 0).UTC(), Value: value})
	}
	return points
}

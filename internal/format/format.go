// Package format renders durations and prices for listing views.
package format

import (
	"math"
	"math/big"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"lpmarket/internal/model"
)

// Seconds per duration unit.
const (
	Minute = 60
	Hour   = 3600
	Day    = 86400
	Week   = 604800
)

// Expired is returned for negative durations.
const Expired = "Expired"

// FormatDuration renders seconds in the largest unit reached by a cascade of
// week, day, hour and minute conversions. Each step divides the running value
// when it is strictly greater than the next unit size.
func FormatDuration(seconds float64, places int) string {
	if seconds < 0 {
		return Expired
	}

	value := seconds
	unit := "seconds"
	if value > Week {
		value /= Week
		unit = "weeks"
	}
	if value > Day {
		value /= Day
		unit = "days"
	}
	if value > Hour {
		value /= Hour
		unit = "hours"
	}
	if value > Minute {
		value /= Minute
		unit = "minutes"
	}
	return toFixed(value, places) + " " + unit
}

// TimeUntil formats the time left before expiry.
func TimeUntil(expiry, now time.Time, places int) string {
	delta := expiry.Sub(now).Seconds()
	return FormatDuration(delta, places)
}

// FormatPrice applies the listing display rule for a price bound.
func FormatPrice(p float64) string {
	switch {
	case p > 1e9:
		return toFixed(p/1e9, 0) + "B"
	case p > 1e6:
		return toFixed(p/1e6, 2) + "M"
	case p > 1e3:
		return toFixed(p/1e3, 2) + "k"
	case p > 100:
		return toFixed(p, 2)
	case p < 0.0001:
		return "<0.0001"
	default:
		return toFixed(p, 4)
	}
}

// PositionPrice formats one bound of a position's price range. preferred
// selects the orientation named by RangeToShow, otherwise the other one.
func PositionPrice(pos *model.Position, preferred, lower bool) string {
	if pos == nil {
		return "-"
	}
	idx := pos.RangeToShow
	if !preferred {
		idx = 1 - idx
	}
	r := pos.PriceRange[idx]
	if lower {
		return FormatPrice(r.Lower)
	}
	return FormatPrice(r.Upper)
}

// StrikePrice formats an option's strike, the upper bound in the payment token's orientation.
func StrikePrice(option *model.OptionInfo) string {
	if option == nil || option.Position == nil || option.PairingIndex < 0 || option.PairingIndex > 1 {
		return "-"
	}
	return FormatPrice(option.Position.PriceRange[option.PairingIndex].Upper)
}

// FormatUSD renders a fiat amount with thousands separators.
func FormatUSD(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return "$" + humanize.CommafWithDigits(f, 2)
}

// toFixed rounds the exact binary value of v half away from zero, so
// 1.005 (stored as 1.00499...) renders as "1.00" at two places.
func toFixed(value float64, places int) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	}
	exact := new(big.Float).SetFloat64(value).Text('f', exactDigits)
	return decimal.RequireFromString(exact).StringFixed(int32(places))
}

// exactDigits covers the longest fraction a float64 can carry (2^-1074).
const exactDigits = 1074

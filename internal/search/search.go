// Package search filters listing collections by user-entered criteria.
package search

import (
	"math"
	"strconv"
	"strings"

	"lpmarket/internal/model"
)

var nan = math.NaN()

// Filter returns the listings matching every active criterion, in input
// order. Criteria with no terms return the input unchanged.
//
// Price and duration are skipped when blank. Symbol and fee terms are
// always compared, so a blank fee only matches zero-fee positions.
func Filter(listings []model.Listing, c Criteria) []model.Listing {
	c = c.trimmed()
	if c.Empty() {
		return listings
	}
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if Match(l, c) {
			out = append(out, l)
		}
	}
	return out
}

// Match reports whether one listing satisfies c.
func Match(l model.Listing, c Criteria) bool {
	if model.IsPlaceholder(l) {
		return false
	}
	c = c.trimmed()

	if c.Price != "" {
		price, ok := priceOf(l)
		if !ok || !compare(c.PriceOp, price, parseNumber(c.Price)) {
			return false
		}
	}
	if c.MatchDuration && c.Duration != "" {
		duration, ok := model.DurationOf(l)
		unit, known := units[c.DurationUnit]
		if !ok || !known || !compare(c.DurationOp, float64(duration), parseNumber(c.Duration)*unit) {
			return false
		}
	}

	pairing := model.PairingOf(l)
	if len(pairing) < 2 {
		return false
	}
	if !symbolMatches(pairing[0].Symbol, c.Token0) || !symbolMatches(pairing[1].Symbol, c.Token1) {
		return false
	}
	pos := model.PositionOf(l)
	if pos == nil || pos.Fee != parseNumber(c.Fee) {
		return false
	}
	return strings.Contains(strconv.FormatUint(l.ID(), 10), c.TokenID)
}

func symbolMatches(symbol, term string) bool {
	return strings.Contains(strings.ToUpper(symbol), strings.ToUpper(term))
}

// priceOf returns the ether price a listing is searched by.
func priceOf(l model.Listing) (float64, bool) {
	if o, ok := l.(*model.OptionInfo); ok {
		return o.Premium, true
	}
	if info := model.InfoOf(l); info != nil {
		return info.PriceInEther, true
	}
	return 0, false
}

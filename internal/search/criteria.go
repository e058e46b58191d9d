package search

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator compares a listing value against a bound.
type Operator string

const (
	Less    Operator = "<"
	Equal   Operator = "="
	Greater Operator = ">"
)

// Duration unit multipliers in seconds.
var units = map[string]float64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
	"w": 604800,
}

// Criteria holds raw search fields as a user typed them.
type Criteria struct {
	Token0       string
	Token1       string
	Fee          string
	PriceOp      Operator
	Price        string
	DurationOp   Operator
	Duration     string
	DurationUnit string
	TokenID      string
	// MatchDuration applies the duration bound; rental views set it.
	MatchDuration bool
}

// DefaultCriteria matches the initial state of a search form.
func DefaultCriteria() Criteria {
	return Criteria{
		Fee:          "0.3",
		PriceOp:      Less,
		DurationOp:   Less,
		DurationUnit: "d",
	}
}

func (c Criteria) trimmed() Criteria {
	c.Token0 = strings.TrimSpace(c.Token0)
	c.Token1 = strings.TrimSpace(c.Token1)
	c.Fee = strings.TrimSpace(c.Fee)
	c.Price = strings.TrimSpace(c.Price)
	c.Duration = strings.TrimSpace(c.Duration)
	c.DurationUnit = strings.TrimSpace(c.DurationUnit)
	c.TokenID = strings.TrimSpace(c.TokenID)
	return c
}

// Empty reports whether no field carries a term.
func (c Criteria) Empty() bool {
	c = c.trimmed()
	return c.Token0 == "" && c.Token1 == "" && c.Fee == "" && c.Price == "" &&
		(c.Duration == "" || !c.MatchDuration) && c.TokenID == ""
}

// Validate rejects operators and units outside the supported sets.
func (c Criteria) Validate() error {
	for _, op := range []Operator{c.PriceOp, c.DurationOp} {
		if op != "" && !validOperator(op) {
			return fmt.Errorf("unknown operator %q", op)
		}
	}
	if unit := strings.TrimSpace(c.DurationUnit); unit != "" {
		if _, ok := units[unit]; !ok {
			return fmt.Errorf("unknown duration unit %q", unit)
		}
	}
	return nil
}

func validOperator(op Operator) bool {
	return op == Less || op == Equal || op == Greater
}

// compare applies op; an unknown operator never matches.
func compare(op Operator, x, y float64) bool {
	switch op {
	case Equal:
		return x == y
	case Less:
		return x < y
	case Greater:
		return x > y
	default:
		return false
	}
}

// parseNumber reads a numeric field. Blank reads as zero and anything
// unparsable reads as NaN, which no comparison matches.
func parseNumber(field string) float64 {
	if field == "" {
		return 0
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return nan
	}
	return v
}

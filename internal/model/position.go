package model

// PriceRange is a closed price interval.
type PriceRange struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Position is the display model of a concentrated-liquidity position.
//
// PriceRange[1] is expressed as token1 per token0 and PriceRange[0] is its
// reciprocal orientation. RangeToShow selects the one a viewer reads first.
type Position struct {
	TickLower       int32         `json:"tick_lower"`
	TickUpper       int32         `json:"tick_upper"`
	Liquidity       string        `json:"liquidity"`
	Fee             float64       `json:"fee"`
	FeeGrowth       [2]string     `json:"fee_growth"`
	TokensOwed      [2]string     `json:"tokens_owed"`
	TokensDeposited []string      `json:"tokens_deposited,omitempty"`
	Pool            string        `json:"pool,omitempty"`
	PriceRange      [2]PriceRange `json:"price_range"`
	RangeToShow     int           `json:"range_to_show"`
}

// Enriched reports whether subgraph deposit data was attached.
func (p Position) Enriched() bool {
	return p.Pool != "" || len(p.TokensDeposited) > 0
}

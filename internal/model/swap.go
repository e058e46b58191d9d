package model

// Swap is one pool swap as used by the price and volume series.
// Amounts are decimal-adjusted strings, signed from the pool's perspective.
type Swap struct {
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
	AmountUSD string `json:"amountUSD,omitempty"`
	Timestamp string `json:"timestamp"`
	Tick      string `json:"tick"`
}

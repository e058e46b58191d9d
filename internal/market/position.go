package market

import (
	"math/big"

	"lpmarket/internal/dex"
	"lpmarket/internal/model"
	"lpmarket/internal/subgraph"
	"lpmarket/internal/tickprice"
)

// feeDivisor turns a pool fee in hundredths of a bip into a percentage.
const feeDivisor = 10000

func bigOrZero(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// buildPosition converts a registry record using the pairing decimals.
func buildPosition(raw dex.RawPosition, pairing []model.ERC20Token) *model.Position {
	ranges, show := tickprice.Describe(raw.TickLower, raw.TickUpper, pairing[0].Decimals, pairing[1].Decimals)
	pos := &model.Position{
		TickLower:   raw.TickLower,
		TickUpper:   raw.TickUpper,
		Fee:         float64(raw.Fee) / feeDivisor,
		PriceRange:  ranges,
		RangeToShow: show,
	}
	pos.Liquidity = bigOrZero(raw.Liquidity)
	pos.FeeGrowth = [2]string{bigOrZero(raw.FeeGrowth0), bigOrZero(raw.FeeGrowth1)}
	pos.TokensOwed = [2]string{bigOrZero(raw.TokensOwed0), bigOrZero(raw.TokensOwed1)}
	return pos
}

// enrich attaches deposit totals and the pool id from the subgraph.
func enrich(pos *model.Position, sg subgraph.Position) {
	pos.TokensDeposited = []string{sg.DepositedToken0, sg.DepositedToken1}
	if sg.Pool != nil {
		pos.Pool = sg.Pool.ID
	}
}

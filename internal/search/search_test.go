package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lpmarket/internal/model"
)

func rental(id uint64, fee, price float64, duration int64) *model.RentInfo {
	return &model.RentInfo{
		ListingInfo: model.ListingInfo{
			TokenID:      id,
			PriceInEther: price,
			Pairing:      []model.ERC20Token{{Symbol: "WETH"}, {Symbol: "USDC"}},
			Position:     &model.Position{Fee: fee},
		},
		DurationInSeconds: duration,
	}
}

func ids(ls []model.Listing) []uint64 {
	out := []uint64{}
	for _, l := range ls {
		out = append(out, l.ID())
	}
	return out
}

func TestEmptyCriteriaIsIdentity(t *testing.T) {
	listings := []model.Listing{rental(1, 0.05, 1, 60), rental(2, 0.3, 2, 60), &model.Placeholder{TokenID: 3}}
	require.Equal(t, listings, Filter(listings, Criteria{}))
	require.Equal(t, listings, Filter(listings, Criteria{PriceOp: Less, DurationUnit: "d"}))
}

func TestFeeMismatchIsEmpty(t *testing.T) {
	listings := []model.Listing{rental(1, 0.05, 1, 60), rental(2, 0.05, 2, 60)}
	require.Empty(t, Filter(listings, Criteria{Fee: "0.3"}))
	require.Equal(t, []uint64{1, 2}, ids(Filter(listings, Criteria{Fee: "0.05"})))
}

func TestTokenIDSubstring(t *testing.T) {
	listings := []model.Listing{rental(8302, 0.3, 1, 60)}
	require.Len(t, Filter(listings, Criteria{Fee: "0.3", TokenID: "830"}), 1)
	require.Empty(t, Filter(listings, Criteria{Fee: "0.3", TokenID: "999"}))
}

func TestBlankFeeIsComparedLiterally(t *testing.T) {
	listings := []model.Listing{rental(1, 0.3, 1, 60), rental(2, 0, 1, 60)}
	require.Equal(t, []uint64{2}, ids(Filter(listings, Criteria{Token0: "w"})))
	require.Empty(t, Filter(listings, Criteria{Fee: "abc"}))
}

func TestSymbolContainment(t *testing.T) {
	listings := []model.Listing{rental(1, 0.3, 1, 60)}
	require.Len(t, Filter(listings, Criteria{Fee: "0.3", Token0: "eth", Token1: "us"}), 1)
	require.Empty(t, Filter(listings, Criteria{Fee: "0.3", Token0: "dai"}))
}

func TestPriceOperators(t *testing.T) {
	listings := []model.Listing{rental(1, 0.3, 1, 60), rental(2, 0.3, 2, 60), rental(3, 0.3, 3, 60)}
	base := Criteria{Fee: "0.3", Price: "2"}

	c := base
	c.PriceOp = Less
	require.Equal(t, []uint64{1}, ids(Filter(listings, c)))
	c.PriceOp = Equal
	require.Equal(t, []uint64{2}, ids(Filter(listings, c)))
	c.PriceOp = Greater
	require.Equal(t, []uint64{3}, ids(Filter(listings, c)))
	c.PriceOp = "!="
	require.Empty(t, Filter(listings, c))
}

func TestDurationOnlyWhenRequested(t *testing.T) {
	listings := []model.Listing{rental(1, 0.3, 1, 3600), rental(2, 0.3, 1, 3*86400)}
	c := Criteria{Fee: "0.3", DurationOp: Greater, Duration: "2", DurationUnit: "d"}
	require.Len(t, Filter(listings, c), 2)

	c.MatchDuration = true
	require.Equal(t, []uint64{2}, ids(Filter(listings, c)))

	c.DurationUnit = "h"
	c.DurationOp = Less
	require.Equal(t, []uint64{1}, ids(Filter(listings, c)))

	c.DurationUnit = "y"
	require.Empty(t, Filter(listings, c))
}

func TestOptionsSearchByPremium(t *testing.T) {
	option := &model.OptionInfo{
		TokenID:  4,
		Premium:  0.5,
		Pairing:  []model.ERC20Token{{Symbol: "WBTC"}, {Symbol: "WETH"}},
		Position: &model.Position{Fee: 0.05},
	}
	c := Criteria{Fee: "0.05", PriceOp: Less, Price: "1"}
	require.Len(t, Filter([]model.Listing{option}, c), 1)
}

func TestSymbolMatchIgnoresCaseOnBothSides(t *testing.T) {
	option := &model.OptionInfo{
		TokenID:  6,
		Pairing:  []model.ERC20Token{{Symbol: "wstETH"}, {Symbol: "USDC"}},
		Position: &model.Position{Fee: 0.05},
	}
	require.Len(t, Filter([]model.Listing{option}, Criteria{Token0: "steth", Fee: "0.05"}), 1)
	require.Empty(t, Filter([]model.Listing{option}, Criteria{Token0: "reth", Fee: "0.05"}))
}

func TestListingsWithoutPositionNeverMatch(t *testing.T) {
	l := rental(1, 0.3, 1, 60)
	l.Position = nil
	require.Empty(t, Filter([]model.Listing{l}, Criteria{Fee: "0.3"}))
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultCriteria().Validate())
	require.Error(t, Criteria{PriceOp: "~"}.Validate())
	require.Error(t, Criteria{DurationUnit: "y"}.Validate())
}

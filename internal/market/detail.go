package market

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lpmarket/internal/model"
	"lpmarket/internal/subgraph"
)

const (
	detailSwapCount = 1000
	detailDays      = 30
)

// PoolSource is the subgraph surface a detail view reads.
type PoolSource interface {
	FeeTierDistribution(ctx context.Context, token0, token1 string) (subgraph.FeeTierDistribution, error)
	PoolInfo(ctx context.Context, pool string) (subgraph.PoolInfo, error)
	LastSwaps(ctx context.Context, pool string, n int) ([]model.Swap, error)
	PoolDayData(ctx context.Context, pool string, days int) ([]subgraph.PoolDayData, error)
}

// ImageSource returns the rendered image of a position.
type ImageSource interface {
	Image(ctx context.Context, tokenID uint64) (string, error)
}

// Detail is a listing with its pool context.
type Detail struct {
	Type     model.ListingType             `json:"type"`
	Listing  model.Listing                 `json:"listing"`
	FeeTiers *subgraph.FeeTierDistribution `json:"fee_tiers,omitempty"`
	Pool     *subgraph.PoolInfo            `json:"pool,omitempty"`
	Prices   []subgraph.Point              `json:"prices,omitempty"`
	Volume   []subgraph.Point              `json:"volume,omitempty"`
	Image    string                        `json:"image,omitempty"`
	// Errors maps a section name to the reason it is missing.
	Errors map[string]string `json:"errors,omitempty"`
}

// LoadDetail fetches every section concurrently. A failed section is
// recorded in Errors and does not affect the others. Pool sections need
// an enriched position.
func LoadDetail(ctx context.Context, pools PoolSource, images ImageSource, listing model.Listing, logger *zap.Logger) *Detail {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Detail{Type: listing.Kind(), Listing: listing, Errors: map[string]string{}}
	var mu sync.Mutex
	fail := func(section string, err error) {
		logger.Warn("detail section unavailable",
			zap.String("section", section),
			zap.Uint64("token_id", listing.ID()),
			zap.Error(err),
		)
		mu.Lock()
		d.Errors[section] = err.Error()
		mu.Unlock()
	}

	var g errgroup.Group
	if images != nil {
		g.Go(func() error {
			img, err := images.Image(ctx, listing.ID())
			if err != nil {
				fail("image", err)
				return nil
			}
			d.Image = img
			return nil
		})
	}

	pairing := model.PairingOf(listing)
	pos := model.PositionOf(listing)
	if pools != nil && len(pairing) == 2 {
		g.Go(func() error {
			tiers, err := pools.FeeTierDistribution(ctx, pairing[0].Address, pairing[1].Address)
			if err != nil {
				fail("fee_tiers", err)
				return nil
			}
			d.FeeTiers = &tiers
			return nil
		})
	}
	if pools != nil && pos != nil && pos.Pool != "" {
		pool := pos.Pool
		g.Go(func() error {
			info, err := pools.PoolInfo(ctx, pool)
			if err != nil {
				fail("pool", err)
				return nil
			}
			d.Pool = &info
			return nil
		})
		g.Go(func() error {
			swaps, err := pools.LastSwaps(ctx, pool, detailSwapCount)
			if err != nil {
				fail("prices", err)
				return nil
			}
			d.Prices = subgraph.PriceSeries(swaps)
			return nil
		})
		g.Go(func() error {
			days, err := pools.PoolDayData(ctx, pool, detailDays)
			if err != nil {
				fail("volume", err)
				return nil
			}
			d.Volume = subgraph.VolumeSeries(days)
			return nil
		})
	}
	_ = g.Wait()
	return d
}

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lpmarket/internal/model"
)

// Runs against a disposable database named by LPMARKET_TEST_PG_DSN.
func TestStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("LPMARKET_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("LPMARKET_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.EnsureSchema(ctx))

	put := func(batch string, gen uint64, ids ...uint64) {
		listings := make([]model.Listing, 0, len(ids))
		for _, id := range ids {
			listings = append(listings, &model.SwapInfo{ListingInfo: model.ListingInfo{TokenID: id}})
		}
		require.NoError(t, store.PutSnapshot(ctx, model.Snapshot{
			BatchID:    batch,
			Generation: gen,
			TakenAt:    time.Now().UTC(),
			Listings:   map[model.ListingType][]model.Listing{model.ListingSwap: listings},
		}))
	}
	put("first", 1, 5, 6)
	put("second", 2, 9, 5)

	snap, ok, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", snap.BatchID)
	require.Equal(t, uint64(2), snap.Generation)
	got := snap.Listings[model.ListingSwap]
	require.Len(t, got, 2)
	require.Equal(t, uint64(9), got[0].ID())
	require.Equal(t, uint64(5), got[1].ID())
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	require.Error(t, err)
}

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lpmarket/internal/model"
)

func snapshot(batch string, gen uint64, ids ...uint64) model.Snapshot {
	listings := make([]model.Listing, 0, len(ids))
	for _, id := range ids {
		listings = append(listings, &model.SaleInfo{ListingInfo: model.ListingInfo{TokenID: id}, DurationInSeconds: -1})
	}
	return model.Snapshot{
		BatchID:    batch,
		Generation: gen,
		TakenAt:    time.Unix(1700000000, 0).UTC(),
		Listings: map[model.ListingType][]model.Listing{
			model.ListingSale:   listings,
			model.ListingRental: {&model.Placeholder{Type: model.ListingRental, TokenID: 9, Reason: "reverted"}},
		},
	}
}

func TestJsonlRoundTripKeepsLatestBatch(t *testing.T) {
	store := NewJsonlStorage(filepath.Join(t.TempDir(), "out", "listings.jsonl"))
	ctx := context.Background()

	_, ok, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.PutSnapshot(ctx, snapshot("a", 1, 1, 2)))
	require.NoError(t, store.PutSnapshot(ctx, snapshot("b", 2, 3)))

	snap, ok, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", snap.BatchID)
	require.Equal(t, uint64(2), snap.Generation)
	require.Equal(t, 2, snap.Count())
	require.Equal(t, uint64(3), snap.Listings[model.ListingSale][0].ID())
	require.True(t, model.IsPlaceholder(snap.Listings[model.ListingRental][0]))
}

func TestJsonlKeepsOnlyLatestBatchOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "listings.jsonl")
	store := NewJsonlStorage(path)
	ctx := context.Background()

	for gen := uint64(1); gen <= 5; gen++ {
		require.NoError(t, store.PutSnapshot(ctx, snapshot(fmt.Sprintf("batch-%d", gen), gen, 1, 2, 3)))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		require.Contains(t, line, `"batch_id":"batch-5"`)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestJsonlSkipsEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.jsonl")
	store := NewJsonlStorage(path)
	require.NoError(t, store.PutSnapshot(context.Background(), model.Snapshot{BatchID: "empty"}))

	_, ok, err := store.LatestSnapshot(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

package storage

import (
	"context"

	"lpmarket/internal/model"
)

// SnapshotSink persists refresh generations.
type SnapshotSink interface {
	PutSnapshot(ctx context.Context, snap model.Snapshot) error
}

// SnapshotSource loads the most recent persisted generation.
type SnapshotSource interface {
	LatestSnapshot(ctx context.Context) (model.Snapshot, bool, error)
}

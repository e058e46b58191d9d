package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lpmarket/internal/model"
)

const stateName = "listings"

const schema = `
CREATE TABLE IF NOT EXISTS listing_snapshots (
	variant     TEXT        NOT NULL,
	token_id    BIGINT      NOT NULL,
	ordinal     INTEGER     NOT NULL,
	batch_id    TEXT        NOT NULL,
	generation  BIGINT      NOT NULL,
	placeholder BOOLEAN     NOT NULL,
	record      JSONB       NOT NULL,
	taken_at    TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (variant, token_id)
);
CREATE TABLE IF NOT EXISTS snapshot_state (
	name       TEXT PRIMARY KEY,
	batch_id   TEXT        NOT NULL,
	generation BIGINT      NOT NULL,
	taken_at   TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// Store provides Postgres persistence for listing snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the snapshot tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// PutSnapshot upserts every listing of snap, drops listings that left the
// marketplaces and records the generation.
func (s *Store) PutSnapshot(ctx context.Context, snap model.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	queued := 0
	for _, variant := range model.ListingTypes {
		for i, listing := range snap.Listings[variant] {
			record, err := model.EncodeListing(listing)
			if err != nil {
				return fmt.Errorf("encode %s listing %d: %w", variant, listing.ID(), err)
			}
			batch.Queue(`
				INSERT INTO listing_snapshots (
					variant, token_id, ordinal, batch_id, generation, placeholder, record, taken_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
				ON CONFLICT (variant, token_id)
				DO UPDATE SET
					ordinal = EXCLUDED.ordinal,
					batch_id = EXCLUDED.batch_id,
					generation = EXCLUDED.generation,
					placeholder = EXCLUDED.placeholder,
					record = EXCLUDED.record,
					taken_at = EXCLUDED.taken_at,
					updated_at = now()
			`,
				string(variant),
				int64(listing.ID()),
				i,
				snap.BatchID,
				int64(snap.Generation),
				model.IsPlaceholder(listing),
				record,
				snap.TakenAt,
			)
			queued++
		}
	}
	batch.Queue(`DELETE FROM listing_snapshots WHERE batch_id <> $1`, snap.BatchID)
	batch.Queue(`
		INSERT INTO snapshot_state (name, batch_id, generation, taken_at, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (name) DO UPDATE
		SET batch_id = EXCLUDED.batch_id,
			generation = EXCLUDED.generation,
			taken_at = EXCLUDED.taken_at,
			updated_at = now()
	`, stateName, snap.BatchID, int64(snap.Generation), snap.TakenAt)

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < queued+2; i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// LoadState returns the batch id and generation of the last stored snapshot.
func (s *Store) LoadState(ctx context.Context) (string, uint64, bool, error) {
	var (
		batchID    string
		generation int64
	)
	row := s.pool.QueryRow(ctx, `SELECT batch_id, generation FROM snapshot_state WHERE name=$1`, stateName)
	if err := row.Scan(&batchID, &generation); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", 0, false, nil
		}
		return "", 0, false, err
	}
	return batchID, uint64(generation), true, nil
}

// LatestSnapshot loads the stored listings of the last generation.
func (s *Store) LatestSnapshot(ctx context.Context) (model.Snapshot, bool, error) {
	batchID, generation, ok, err := s.LoadState(ctx)
	if err != nil || !ok {
		return model.Snapshot{}, false, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT variant, record, taken_at FROM listing_snapshots
		WHERE batch_id = $1
		ORDER BY variant, ordinal
	`, batchID)
	if err != nil {
		return model.Snapshot{}, false, err
	}
	defer rows.Close()

	snap := model.Snapshot{
		BatchID:    batchID,
		Generation: generation,
		Listings:   make(map[model.ListingType][]model.Listing),
	}
	for rows.Next() {
		var (
			variant string
			record  []byte
			takenAt time.Time
		)
		if err := rows.Scan(&variant, &record, &takenAt); err != nil {
			return model.Snapshot{}, false, err
		}
		listing, err := model.DecodeListing(record)
		if err != nil {
			return model.Snapshot{}, false, err
		}
		t := model.ListingType(variant)
		snap.Listings[t] = append(snap.Listings[t], listing)
		snap.TakenAt = takenAt
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, false, err
	}
	return snap, true, nil
}

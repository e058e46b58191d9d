package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lpmarket/internal/model"
)

// snapshotLine is one listing of one generation.
type snapshotLine struct {
	BatchID    string            `json:"batch_id"`
	Generation uint64            `json:"generation"`
	TakenAt    time.Time         `json:"taken_at"`
	Variant    model.ListingType `json:"variant"`
	Record     json.RawMessage   `json:"record"`
}

// JsonlStorage keeps the latest snapshot in a JSONL file, one listing per
// line. Each batch replaces the previous one.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutSnapshot writes every listing of snap to a temporary file and renames
// it over the output path.
func (s *JsonlStorage) PutSnapshot(_ context.Context, snap model.Snapshot) error {
	if snap.Count() == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := file.Name()
	defer os.Remove(tmp)

	if err := writeSnapshot(file, snap); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace output file: %w", err)
	}
	return nil
}

func writeSnapshot(file *os.File, snap model.Snapshot) error {
	writer := bufio.NewWriter(file)
	for _, variant := range model.ListingTypes {
		for _, listing := range snap.Listings[variant] {
			record, err := model.EncodeListing(listing)
			if err != nil {
				return fmt.Errorf("encode %s listing %d: %w", variant, listing.ID(), err)
			}
			line, err := json.Marshal(snapshotLine{
				BatchID:    snap.BatchID,
				Generation: snap.Generation,
				TakenAt:    snap.TakenAt,
				Variant:    variant,
				Record:     record,
			})
			if err != nil {
				return fmt.Errorf("marshal snapshot line: %w", err)
			}
			if _, err := writer.Write(line); err != nil {
				return fmt.Errorf("write snapshot line: %w", err)
			}
			if err := writer.WriteByte('\n'); err != nil {
				return fmt.Errorf("write newline: %w", err)
			}
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync output: %w", err)
	}
	return nil
}

// LatestSnapshot rebuilds the batch held in the file. Files holding
// several batches yield the last one.
func (s *JsonlStorage) LatestSnapshot(_ context.Context) (model.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Snapshot{}, false, nil
		}
		return model.Snapshot{}, false, fmt.Errorf("open snapshot file: %w", err)
	}
	defer file.Close()

	var snap model.Snapshot
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var line snapshotLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			return model.Snapshot{}, false, fmt.Errorf("decode snapshot line: %w", err)
		}
		if line.BatchID != snap.BatchID {
			snap = model.Snapshot{
				BatchID:    line.BatchID,
				Generation: line.Generation,
				TakenAt:    line.TakenAt,
				Listings:   make(map[model.ListingType][]model.Listing),
			}
		}
		listing, err := model.DecodeListing(line.Record)
		if err != nil {
			return model.Snapshot{}, false, err
		}
		snap.Listings[line.Variant] = append(snap.Listings[line.Variant], listing)
	}
	if err := scanner.Err(); err != nil {
		return model.Snapshot{}, false, fmt.Errorf("read snapshot file: %w", err)
	}
	return snap, snap.BatchID != "", nil
}

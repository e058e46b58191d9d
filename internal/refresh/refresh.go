// Package refresh assembles every marketplace into numbered snapshot
// generations and keeps the latest one for readers.
package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lpmarket/internal/metrics"
	"lpmarket/internal/model"
	"lpmarket/internal/storage"
)

// Lister enumerates one marketplace; *market.Client implements it.
type Lister interface {
	Type() model.ListingType
	AllListings(ctx context.Context) []model.Listing
}

// Result outcomes reported to metrics.
const (
	ResultPublished = "published"
	ResultStale     = "stale"
	ResultSinkError = "sink_error"
)

// Refresher runs refreshes and publishes their snapshots. Refreshes may
// overlap; a finished refresh is published only when no later-started
// refresh has been published already.
type Refresher struct {
	listers []Lister
	sinks   []storage.SnapshotSink
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	started atomic.Uint64

	mu     sync.RWMutex
	latest *model.Snapshot

	// sinkMu orders sink writes; persisted is the newest generation written.
	sinkMu    sync.Mutex
	persisted uint64
}

type Option func(*Refresher)

func WithSinks(sinks ...storage.SnapshotSink) Option {
	return func(r *Refresher) { r.sinks = append(r.sinks, sinks...) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Refresher) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Refresher) { r.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(r *Refresher) { r.now = now }
}

func New(listers []Lister, opts ...Option) *Refresher {
	r := &Refresher{
		listers: listers,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh assembles every marketplace concurrently. It returns the
// snapshot and whether it was published.
func (r *Refresher) Refresh(ctx context.Context) (model.Snapshot, bool) {
	generation := r.started.Add(1)
	snap := model.Snapshot{
		BatchID:    uuid.NewString(),
		Generation: generation,
		TakenAt:    r.now().UTC(),
		Listings:   make(map[model.ListingType][]model.Listing, len(r.listers)),
	}

	results := make([][]model.Listing, len(r.listers))
	var g errgroup.Group
	for i, l := range r.listers {
		i, l := i, l
		g.Go(func() error {
			results[i] = l.AllListings(ctx)
			return nil
		})
	}
	_ = g.Wait()
	for i, l := range r.listers {
		snap.Listings[l.Type()] = results[i]
	}

	return snap, r.publish(ctx, snap)
}

func (r *Refresher) publish(ctx context.Context, snap model.Snapshot) bool {
	r.mu.Lock()
	if r.latest != nil && r.latest.Generation >= snap.Generation {
		published := r.latest.Generation
		r.mu.Unlock()
		r.logger.Info("discarding stale snapshot",
			zap.Uint64("generation", snap.Generation),
			zap.Uint64("published", published),
		)
		r.metrics.ObserveRefresh(ResultStale)
		return false
	}
	r.latest = &snap
	r.mu.Unlock()

	for variant, listings := range snap.Listings {
		r.metrics.SetSnapshotSize(string(variant), len(listings))
	}
	r.metrics.ObserveRefresh(r.persist(ctx, snap))
	r.logger.Info("snapshot published",
		zap.String("batch_id", snap.BatchID),
		zap.Uint64("generation", snap.Generation),
		zap.Int("listings", snap.Count()),
	)
	return true
}

// persist writes snap to every sink unless a newer generation got there
// first. Readers of Latest are not blocked meanwhile.
func (r *Refresher) persist(ctx context.Context, snap model.Snapshot) string {
	r.sinkMu.Lock()
	defer r.sinkMu.Unlock()
	if snap.Generation <= r.persisted {
		return ResultPublished
	}
	r.persisted = snap.Generation

	result := ResultPublished
	for _, sink := range r.sinks {
		if err := sink.PutSnapshot(ctx, snap); err != nil {
			r.logger.Warn("snapshot sink failed", zap.String("batch_id", snap.BatchID), zap.Error(err))
			result = ResultSinkError
		}
	}
	return result
}

// Seed publishes a persisted snapshot until the first refresh completes.
func (r *Refresher) Seed(snap model.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest != nil && r.latest.Generation >= snap.Generation {
		return
	}
	for {
		cur := r.started.Load()
		if cur >= snap.Generation || r.started.CompareAndSwap(cur, snap.Generation) {
			break
		}
	}
	r.latest = &snap
}

// Latest returns the last published snapshot.
func (r *Refresher) Latest() (model.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return model.Snapshot{}, false
	}
	return *r.latest, true
}

// Schedule registers a refresh job on s every interval. Runs that would
// overlap a still-running refresh are skipped.
func (r *Refresher) Schedule(ctx context.Context, s gocron.Scheduler, interval time.Duration) (gocron.Job, error) {
	return s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			r.Refresh(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lpmarket/internal/api"
	"lpmarket/internal/refresh"
	"lpmarket/internal/storage"
	"lpmarket/internal/storage/postgres"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Assemble every marketplace once and persist the snapshot",
		Args:  cobra.NoArgs,
		RunE:  runSnapshot,
	}
	cmd.Flags().String("out", "./data/listings.jsonl", "output JSONL path (empty disables)")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().StringSlice("variants", nil, "variants to include (default all)")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Refresh snapshots on an interval and serve them over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("listen", ":8080", "HTTP listen address")
	cmd.Flags().Duration("refresh-interval", 5*time.Minute, "snapshot refresh interval")
	cmd.Flags().String("out", "", "output JSONL path (empty disables)")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().StringSlice("variants", nil, "variants to include (default all)")
	return cmd
}

// sinks opens the configured snapshot stores. The first source, if any,
// holds the most recent persisted snapshot.
func (a *app) sinks() ([]storage.SnapshotSink, []storage.SnapshotSource, error) {
	var (
		sinks   []storage.SnapshotSink
		sources []storage.SnapshotSource
	)
	if a.cfg.PGDSN != "" {
		store, err := postgres.NewStore(a.ctx, a.cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		if err := store.EnsureSchema(a.ctx); err != nil {
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		sinks = append(sinks, store)
		sources = append(sources, store)
	}
	if a.cfg.Out != "" {
		jsonl := storage.NewJsonlStorage(a.cfg.Out)
		sinks = append(sinks, jsonl)
		sources = append(sources, jsonl)
	}
	return sinks, sources, nil
}

func (a *app) refresher() (*refresh.Refresher, []storage.SnapshotSource, error) {
	clients, err := a.selected()
	if err != nil {
		return nil, nil, err
	}
	sinks, sources, err := a.sinks()
	if err != nil {
		return nil, nil, err
	}
	listers := make([]refresh.Lister, 0, len(clients))
	for _, c := range clients {
		listers = append(listers, c)
	}
	r := refresh.New(listers,
		refresh.WithSinks(sinks...),
		refresh.WithLogger(a.logger),
		refresh.WithMetrics(a.metrics),
	)
	return r, sources, nil
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	r, _, err := a.refresher()
	if err != nil {
		return err
	}
	a.logger.Info("snapshot start", zap.String("out", a.cfg.Out), zap.Bool("postgres", a.cfg.PGDSN != ""))

	snap, _ := r.Refresh(a.ctx)
	counts := make(map[string]int, len(snap.Listings))
	for t, listings := range snap.Listings {
		counts[string(t)] = len(listings)
	}
	return printJSON(map[string]interface{}{
		"batch_id": snap.BatchID,
		"taken_at": snap.TakenAt,
		"listings": counts,
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	r, sources, err := a.refresher()
	if err != nil {
		return err
	}
	for _, source := range sources {
		snap, ok, err := source.LatestSnapshot(a.ctx)
		if err != nil {
			a.logger.Warn("load persisted snapshot failed", zap.Error(err))
			continue
		}
		if ok {
			r.Seed(snap)
			a.logger.Info("seeded snapshot", zap.String("batch_id", snap.BatchID), zap.Int("listings", snap.Count()))
			break
		}
	}

	if a.cfg.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	job, err := r.Schedule(a.ctx, scheduler, a.cfg.RefreshInterval)
	if err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			a.logger.Warn("scheduler shutdown", zap.Error(err))
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr: a.cfg.Listen,
		Handler: api.NewRouter(api.Deps{
			Snapshots: r,
			Prices:    a.fiat,
			Gatherer:  a.registry,
			Logger:    a.logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info("serve start",
		zap.String("listen", a.cfg.Listen),
		zap.Duration("refresh_interval", a.cfg.RefreshInterval),
		zap.String("job", job.ID().String()),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-a.ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

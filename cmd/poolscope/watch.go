package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"poolScope/internal/config"
	"poolScope/internal/model"
	"poolScope/internal/session"
	"poolScope/internal/source"
	"poolScope/internal/storage"
	"poolScope/internal/storage/postgres"
)

const watchStateName = "poolscope-watch"

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWatch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input snapshots path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkpoints := source.NewCheckpointStore(cfg.Checkpoint, cfg.CheckpointEnabled)
	checkpoint, found, err := checkpoints.Load()
	if err != nil {
		return err
	}

	src, err := source.NewJSONLSource(cfg.In)
	if err != nil {
		return err
	}
	defer src.Close()
	src.Follow = cfg.Follow
	src.PollInterval = cfg.PollInterval
	if found {
		src.StartAfter = checkpoint.LastProcessedSlot
	}

	sinks := []storage.EventSink{storage.NewJsonlSink(cfg.Out)}

	var store *postgres.Store
	if cfg.PgDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
	}

	g, gctx := errgroup.WithContext(ctx)

	events := make(chan model.ReconciledEvent, cfg.BatchSize)
	sess := session.New(logger, func(event model.ReconciledEvent) {
		// The drain goroutine may already be gone on shutdown; never block
		// the ingest path forever.
		select {
		case events <- event:
		case <-gctx.Done():
		}
	})

	logger.Info("watch start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.Bool("follow", cfg.Follow),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.Uint64("start_after_slot", src.StartAfter),
		zap.Bool("postgres", store != nil),
	)

	g.Go(func() error {
		defer close(events)
		return sess.Run(gctx, src)
	})

	g.Go(func() error {
		return drainEvents(gctx, cfg, logger, sess, store, sinks, checkpoints, events)
	})

	return g.Wait()
}

func drainEvents(
	ctx context.Context,
	cfg config.WatchConfig,
	logger *zap.Logger,
	sess *session.PoolSession,
	store *postgres.Store,
	sinks []storage.EventSink,
	checkpoints *source.CheckpointStore,
	events <-chan model.ReconciledEvent,
) error {
	batch := make([]model.ReconciledEvent, 0, cfg.BatchSize)
	var maxSlot uint64
	var total int

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		for _, sink := range sinks {
			if err := sink.PutEventBatch(batch); err != nil {
				return err
			}
		}
		if store != nil {
			if err := store.InsertEvents(ctx, batch); err != nil {
				return err
			}
			if err := store.UpsertPools(ctx, poolRecords(sess, batch)); err != nil {
				return err
			}
			if err := store.SaveState(ctx, watchStateName, maxSlot); err != nil {
				return err
			}
		}
		if err := checkpoints.Save(maxSlot); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case event, ok := <-events:
			if !ok {
				if err := flush(); err != nil {
					return err
				}
				logger.Info("watch complete", zap.Int("events", total))
				return nil
			}
			if event.Slot > maxSlot {
				maxSlot = event.Slot
			}
			batch = append(batch, event)
			if len(batch) >= cfg.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}
		case <-ctx.Done():
			if err := flush(); err != nil {
				return err
			}
			return ctx.Err()
		}
	}
}

func poolRecords(sess *session.PoolSession, batch []model.ReconciledEvent) []model.PoolRecord {
	seen := make(map[string]bool, len(batch))
	records := make([]model.PoolRecord, 0, len(batch))
	for _, event := range batch {
		if seen[event.Pool.Key()] {
			continue
		}
		seen[event.Pool.Key()] = true

		current, ok := sess.Current(event.Pool)
		if !ok {
			continue
		}
		records = append(records, model.PoolRecord{
			TokenPolicy:   event.Pool.TokenPolicy,
			TokenName:     event.Pool.TokenName,
			AdaReserve:    current.PoolState.AdaReserve,
			TokenReserve:  current.PoolState.TokenReserve,
			TotalLPSupply: current.PoolState.TotalLPSupply,
			FeeBps:        current.PoolConfig.FeeBps,
			FirstSeenSlot: current.PoolStats.CreatedAtSlot,
			LastSeenSlot:  event.Slot,
		})
	}
	return records
}

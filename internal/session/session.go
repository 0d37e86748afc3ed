// Package session hosts the reconciliation engine. It is the only component
// holding mutable state: the last-known datum per pool identity. Everything
// below it is pure computation.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"poolScope/internal/amm"
	"poolScope/internal/datum"
	"poolScope/internal/model"
	"poolScope/internal/reconcile"
)

// Listener receives reconciled events synchronously, in call order. A panic
// in one listener must not prevent delivery to the rest.
type Listener func(model.ReconciledEvent)

// SnapshotSource delivers pool snapshots. Next blocks until a snapshot is
// available and returns io.EOF when the source is exhausted.
type SnapshotSource interface {
	Next(ctx context.Context) (model.PoolSnapshot, error)
}

// PoolSession applies inbound snapshots to per-pool state and fans out the
// reconstructed events. Snapshots for different pools may be ingested
// concurrently; snapshots for the same pool are serialized on one critical
// section per identity.
type PoolSession struct {
	logger    *zap.Logger
	listeners []Listener

	mu    sync.Mutex
	pools map[string]*poolEntry
}

type poolEntry struct {
	mu     sync.Mutex
	datum  *model.PoolDatum
	slot   uint64
	halted bool
}

// New builds a session. A nil logger is replaced with a no-op one.
func New(logger *zap.Logger, listeners ...Listener) *PoolSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolSession{
		logger:    logger,
		listeners: listeners,
		pools:     make(map[string]*poolEntry),
	}
}

// Subscribe registers an additional listener. Not safe to call concurrently
// with Ingest; register listeners before starting the feed.
func (s *PoolSession) Subscribe(listener Listener) {
	s.listeners = append(s.listeners, listener)
}

func (s *PoolSession) entry(key string) *poolEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.pools[key]
	if entry == nil {
		entry = &poolEntry{}
		s.pools[key] = entry
	}
	return entry
}

// Ingest applies one snapshot. The stored state only advances after the
// snapshot classifies successfully, so a re-delivered snapshot classifies as
// Unchanged instead of re-emitting its event.
func (s *PoolSession) Ingest(snap model.PoolSnapshot) (model.ReconciledEvent, error) {
	entry := s.entry(snap.Pool.Key())
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.halted {
		return model.ReconciledEvent{}, fmt.Errorf("%w: pool %s is halted",
			amm.ErrCorruptPoolState, snap.Pool)
	}

	if err := datum.ValidateStructure(snap.Datum); err != nil {
		s.logger.Warn("rejecting snapshot datum",
			zap.String("pool", snap.Pool.String()),
			zap.Uint64("slot", snap.Slot),
			zap.Error(err),
		)
		return model.ReconciledEvent{}, fmt.Errorf("validate snapshot: %w", err)
	}

	if entry.datum != nil && snap.Slot < entry.slot {
		s.logger.Warn("dropping stale snapshot",
			zap.String("pool", snap.Pool.String()),
			zap.Uint64("slot", snap.Slot),
			zap.Uint64("current_slot", entry.slot),
		)
		return model.ReconciledEvent{}, fmt.Errorf("%w: slot %d behind %d",
			amm.ErrStaleSnapshot, snap.Slot, entry.slot)
	}

	event, err := reconcile.Classify(entry.datum, snap)
	if err != nil {
		if errors.Is(err, amm.ErrCorruptPoolState) {
			// Either a bug or on-chain tampering. Halt this pool loudly
			// instead of guessing.
			entry.halted = true
			s.logger.Error("corrupt pool state, halting pool",
				zap.String("pool", snap.Pool.String()),
				zap.Uint64("slot", snap.Slot),
				zap.Error(err),
			)
		}
		return model.ReconciledEvent{}, err
	}

	stored := snap.Datum
	entry.datum = &stored
	entry.slot = snap.Slot

	s.emit(event)
	return event, nil
}

func (s *PoolSession) emit(event model.ReconciledEvent) {
	for i, listener := range s.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("listener panic",
						zap.Int("listener", i),
						zap.String("pool", event.Pool.String()),
						zap.Any("panic", r),
					)
				}
			}()
			listener(event)
		}()
	}
}

// Current returns the last-known datum for a pool.
func (s *PoolSession) Current(id model.PoolIdentity) (model.PoolDatum, bool) {
	s.mu.Lock()
	entry := s.pools[id.Key()]
	s.mu.Unlock()
	if entry == nil {
		return model.PoolDatum{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.datum == nil {
		return model.PoolDatum{}, false
	}
	return *entry.datum, true
}

// Run drains a snapshot source until it is exhausted or the context ends.
// Recoverable ingest failures (stale, invalid, corrupt) are logged by Ingest
// and skipped; they never stop the feed.
func (s *PoolSession) Run(ctx context.Context, source SnapshotSource) error {
	for {
		snap, err := source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("next snapshot: %w", err)
		}

		if _, err := s.Ingest(snap); err != nil {
			s.logger.Debug("snapshot skipped",
				zap.String("pool", snap.Pool.String()),
				zap.Uint64("slot", snap.Slot),
				zap.Error(err),
			)
		}
	}
}

package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"poolScope/internal/amm"
	"poolScope/internal/datum"
	"poolScope/internal/model"
)

func testSnapshot(slot uint64, state model.PoolState) model.PoolSnapshot {
	state.PoolNFTName = "ADA/SCOPE"
	state.LastInteractionSlot = slot
	return model.PoolSnapshot{
		Pool:        model.PoolIdentity{TokenPolicy: "ab12", TokenName: "SCOPE"},
		Datum:       datum.Build(state, model.PoolConfig{FeeBps: 30}, model.PoolStats{}, nil),
		TxHash:      "tx",
		Slot:        slot,
		BlockHeight: slot / 20,
	}
}

func collect(events *[]model.ReconciledEvent) Listener {
	return func(event model.ReconciledEvent) {
		*events = append(*events, event)
	}
}

func TestIngestFirstSnapshotIsPoolCreated(t *testing.T) {
	var events []model.ReconciledEvent
	s := New(nil, collect(&events))

	event, err := s.Ingest(testSnapshot(100, model.PoolState{AdaReserve: 1_000, TokenReserve: 1_000}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != model.EventPoolCreated {
		t.Fatalf("kind = %q, want pool_created", event.Kind)
	}
	if len(events) != 1 {
		t.Fatalf("listener got %d events, want 1", len(events))
	}
}

func TestIngestDropsStaleSnapshot(t *testing.T) {
	var events []model.ReconciledEvent
	s := New(nil, collect(&events))

	if _, err := s.Ingest(testSnapshot(100, model.PoolState{AdaReserve: 1_000, TokenReserve: 1_000})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := s.Ingest(testSnapshot(90, model.PoolState{AdaReserve: 2_000, TokenReserve: 500}))
	if !errors.Is(err, amm.ErrStaleSnapshot) {
		t.Fatalf("expected ErrStaleSnapshot, got %v", err)
	}

	current, ok := s.Current(model.PoolIdentity{TokenPolicy: "ab12", TokenName: "SCOPE"})
	if !ok {
		t.Fatalf("pool state missing")
	}
	if current.PoolState.LastInteractionSlot != 100 {
		t.Fatalf("state regressed to slot %d", current.PoolState.LastInteractionSlot)
	}
	if len(events) != 1 {
		t.Fatalf("stale snapshot emitted an event")
	}
}

func TestIngestRedeliveryIsUnchanged(t *testing.T) {
	var events []model.ReconciledEvent
	s := New(nil, collect(&events))

	snap := testSnapshot(100, model.PoolState{AdaReserve: 1_000, TokenReserve: 1_000})
	if _, err := s.Ingest(snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	event, err := s.Ingest(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.Kind != model.EventUnchanged {
		t.Fatalf("redelivery classified as %q, want unchanged", event.Kind)
	}
	if events[0].Kind != model.EventPoolCreated || events[1].Kind != model.EventUnchanged {
		t.Fatalf("event order wrong: %+v", events)
	}
}

func TestIngestRejectsInvalidDatum(t *testing.T) {
	s := New(nil)

	snap := testSnapshot(100, model.PoolState{AdaReserve: 1_000, TokenReserve: 1_000})
	snap.Datum.Version = datum.SupportedVersion + 1

	if _, err := s.Ingest(snap); !errors.Is(err, amm.ErrUnsupportedDatumVersion) {
		t.Fatalf("expected ErrUnsupportedDatumVersion, got %v", err)
	}
}

func TestIngestHaltsCorruptPool(t *testing.T) {
	s := New(nil)

	// Establish a corrupt baseline: zero reserve with nonzero LP supply.
	if _, err := s.Ingest(testSnapshot(100, model.PoolState{AdaReserve: 0, TokenReserve: 1_000, TotalLPSupply: 500})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := s.Ingest(testSnapshot(110, model.PoolState{AdaReserve: 1_000, TokenReserve: 1_000, TotalLPSupply: 500}))
	if !errors.Is(err, amm.ErrCorruptPoolState) {
		t.Fatalf("expected ErrCorruptPoolState, got %v", err)
	}

	// Once halted, the pool refuses further snapshots instead of guessing.
	_, err = s.Ingest(testSnapshot(120, model.PoolState{AdaReserve: 2_000, TokenReserve: 2_000, TotalLPSupply: 500}))
	if !errors.Is(err, amm.ErrCorruptPoolState) {
		t.Fatalf("expected halted pool to reject, got %v", err)
	}
}

func TestListenerPanicDoesNotStopDelivery(t *testing.T) {
	var delivered []model.ReconciledEvent
	s := New(nil,
		func(model.ReconciledEvent) { panic("listener bug") },
		collect(&delivered),
	)

	if _, err := s.Ingest(testSnapshot(100, model.PoolState{AdaReserve: 1_000, TokenReserve: 1_000})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(delivered) != 1 {
		t.Fatalf("second listener got %d events, want 1", len(delivered))
	}
}

func TestIngestConcurrentPools(t *testing.T) {
	var mu sync.Mutex
	var events []model.ReconciledEvent
	s := New(nil, func(event model.ReconciledEvent) {
		mu.Lock()
		events = append(events, event)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			snap := testSnapshot(100, model.PoolState{AdaReserve: 1_000, TokenReserve: 1_000})
			snap.Pool.TokenName = string(rune('A' + n))
			if _, err := s.Ingest(snap); err != nil {
				t.Errorf("pool %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	if len(events) != 8 {
		t.Fatalf("got %d events, want 8", len(events))
	}
}

type sliceSource struct {
	snaps []model.PoolSnapshot
	index int
}

func (s *sliceSource) Next(ctx context.Context) (model.PoolSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.PoolSnapshot{}, err
	}
	if s.index >= len(s.snaps) {
		return model.PoolSnapshot{}, io.EOF
	}
	snap := s.snaps[s.index]
	s.index++
	return snap, nil
}

func TestRunDrainsSourceAndSkipsStale(t *testing.T) {
	var events []model.ReconciledEvent
	s := New(nil, collect(&events))

	source := &sliceSource{snaps: []model.PoolSnapshot{
		testSnapshot(100, model.PoolState{AdaReserve: 1_000_000, TokenReserve: 1_000_000, TotalLPSupply: 1_000_000}),
		testSnapshot(90, model.PoolState{AdaReserve: 500, TokenReserve: 500, TotalLPSupply: 500}),
		testSnapshot(110, model.PoolState{AdaReserve: 1_010_000, TokenReserve: 990_197, TotalLPSupply: 1_000_000}),
	}}

	if err := s.Run(context.Background(), source); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (stale dropped)", len(events))
	}
	if events[0].Kind != model.EventPoolCreated || events[1].Kind != model.EventSwap {
		t.Fatalf("event kinds = %q, %q", events[0].Kind, events[1].Kind)
	}
}

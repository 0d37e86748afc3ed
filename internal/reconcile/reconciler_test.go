package reconcile

import (
	"errors"
	"testing"

	"poolScope/internal/amm"
	"poolScope/internal/datum"
	"poolScope/internal/model"
)

func testIdentity() model.PoolIdentity {
	return model.PoolIdentity{TokenPolicy: "ab12", TokenName: "SCOPE"}
}

func testDatum(state model.PoolState) model.PoolDatum {
	state.PoolNFTName = "ADA/SCOPE"
	return datum.Build(state, model.PoolConfig{FeeBps: 30}, model.PoolStats{}, nil)
}

func testSnapshot(d model.PoolDatum, slot uint64) model.PoolSnapshot {
	return model.PoolSnapshot{
		Pool:        testIdentity(),
		Datum:       d,
		TxHash:      "tx0",
		Slot:        slot,
		BlockHeight: slot / 20,
	}
}

func TestClassifyPoolCreated(t *testing.T) {
	snap := testSnapshot(testDatum(model.PoolState{AdaReserve: 100, TokenReserve: 100}), 10)

	event, err := Classify(nil, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != model.EventPoolCreated {
		t.Fatalf("kind = %q, want pool_created", event.Kind)
	}
	if event.Slot != 10 || event.TxHash != "tx0" {
		t.Fatalf("provenance not carried: %+v", event)
	}
}

func TestClassifySwapAdaToToken(t *testing.T) {
	old := testDatum(model.PoolState{
		AdaReserve: 1_000_000_000, TokenReserve: 1_000_000_000, TotalLPSupply: 1_000_000_000,
	})
	next := testDatum(model.PoolState{
		AdaReserve: 1_010_000_000, TokenReserve: 990_128_420, TotalLPSupply: 1_000_000_000,
	})

	event, err := Classify(&old, testSnapshot(next, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != model.EventSwap {
		t.Fatalf("kind = %q, want swap", event.Kind)
	}

	swap := event.Swap
	if swap.Direction != model.SwapAdaToToken {
		t.Fatalf("direction = %q", swap.Direction)
	}
	if swap.AmountIn != 10_000_000 || swap.AmountOut != 9_871_580 {
		t.Fatalf("amounts = (%d, %d), want (10000000, 9871580)", swap.AmountIn, swap.AmountOut)
	}
	// Fee recomputed from the known 30 bps config.
	if swap.Fee != 30_000 {
		t.Fatalf("fee = %d, want 30000", swap.Fee)
	}
	if swap.PriceImpactBps != 128 {
		t.Fatalf("price_impact = %d, want 128", swap.PriceImpactBps)
	}
}

func TestClassifySwapTokenToAda(t *testing.T) {
	old := testDatum(model.PoolState{
		AdaReserve: 1_000_000_000, TokenReserve: 1_000_000_000, TotalLPSupply: 1_000_000_000,
	})
	next := testDatum(model.PoolState{
		AdaReserve: 995_000_000, TokenReserve: 1_005_100_000, TotalLPSupply: 1_000_000_000,
	})

	event, err := Classify(&old, testSnapshot(next, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != model.EventSwap || event.Swap.Direction != model.SwapTokenToAda {
		t.Fatalf("got %q/%v", event.Kind, event.Swap)
	}
	if event.Swap.AmountIn != 5_100_000 || event.Swap.AmountOut != 5_000_000 {
		t.Fatalf("amounts = (%d, %d)", event.Swap.AmountIn, event.Swap.AmountOut)
	}
}

func TestClassifyAddLiquidityExact(t *testing.T) {
	old := testDatum(model.PoolState{
		AdaReserve: 1_000_000, TokenReserve: 4_000_000, TotalLPSupply: 2_000_000,
	})
	next := testDatum(model.PoolState{
		AdaReserve: 1_500_000, TokenReserve: 6_000_000, TotalLPSupply: 3_000_000,
	})

	event, err := Classify(&old, testSnapshot(next, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != model.EventAddLiquidity {
		t.Fatalf("kind = %q, want add_liquidity", event.Kind)
	}
	if event.AddLiquidity.LPAmount != 1_000_000 || event.AddLiquidity.LPEstimated {
		t.Fatalf("lp = %d estimated=%v, want exact 1000000", event.AddLiquidity.LPAmount, event.AddLiquidity.LPEstimated)
	}
}

func TestClassifyAddLiquidityEstimated(t *testing.T) {
	// LP supply missing from the datum diff: fall back to the proportional
	// estimate and mark it.
	old := testDatum(model.PoolState{
		AdaReserve: 1_000_000, TokenReserve: 4_000_000, TotalLPSupply: 2_000_000,
	})
	next := testDatum(model.PoolState{
		AdaReserve: 1_500_000, TokenReserve: 6_000_000, TotalLPSupply: 2_000_000,
	})

	event, err := Classify(&old, testSnapshot(next, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	add := event.AddLiquidity
	if !add.LPEstimated {
		t.Fatalf("estimate not marked")
	}
	// 500000 * 2000000 / 1000000 = 1000000.
	if add.LPAmount != 1_000_000 {
		t.Fatalf("lp estimate = %d, want 1000000", add.LPAmount)
	}
}

func TestClassifyRemoveLiquidity(t *testing.T) {
	old := testDatum(model.PoolState{
		AdaReserve: 1_000_000, TokenReserve: 4_000_000, TotalLPSupply: 2_000_000,
	})
	next := testDatum(model.PoolState{
		AdaReserve: 750_000, TokenReserve: 3_000_000, TotalLPSupply: 1_500_000,
	})

	event, err := Classify(&old, testSnapshot(next, 40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != model.EventRemoveLiquidity {
		t.Fatalf("kind = %q, want remove_liquidity", event.Kind)
	}
	remove := event.RemoveLiquidity
	if remove.AdaAmount != 250_000 || remove.TokenAmount != 1_000_000 || remove.LPAmount != 500_000 {
		t.Fatalf("detail = %+v", remove)
	}
}

func TestClassifyConfigUpdated(t *testing.T) {
	state := model.PoolState{AdaReserve: 1_000_000, TokenReserve: 1_000_000, TotalLPSupply: 1_000_000}
	old := testDatum(state)
	next := old
	next.PoolConfig.IsPaused = true
	next.PoolConfig.FeeBps = 50

	event, err := Classify(&old, testSnapshot(next, 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != model.EventConfigUpdated {
		t.Fatalf("kind = %q, want config_updated", event.Kind)
	}
	if event.ConfigUpdate.Old.FeeBps != 30 || event.ConfigUpdate.New.FeeBps != 50 {
		t.Fatalf("config delta = %+v", event.ConfigUpdate)
	}
}

func TestClassifyOneSidedDeltaIsNotConfigUpdated(t *testing.T) {
	// A one-sided reserve movement alongside a config change matches neither
	// the swap/liquidity rules nor the config rule, which requires both
	// reserves untouched.
	old := testDatum(model.PoolState{AdaReserve: 1_000_000, TokenReserve: 1_000_000, TotalLPSupply: 1_000_000})
	next := old
	next.PoolState.AdaReserve = 1_100_000
	next.PoolConfig.FeeBps = 50

	event, err := Classify(&old, testSnapshot(next, 55))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != model.EventUnchanged {
		t.Fatalf("kind = %q, want unchanged", event.Kind)
	}
}

func TestClassifyIdenticalIsUnchanged(t *testing.T) {
	d := testDatum(model.PoolState{AdaReserve: 1_000_000, TokenReserve: 1_000_000, TotalLPSupply: 1_000_000})

	event, err := Classify(&d, testSnapshot(d, 60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != model.EventUnchanged {
		t.Fatalf("kind = %q, want unchanged", event.Kind)
	}
}

func TestClassifyStatsOnlyChangeIsUnchanged(t *testing.T) {
	d := testDatum(model.PoolState{AdaReserve: 1_000_000, TokenReserve: 1_000_000, TotalLPSupply: 1_000_000})
	next := d
	next.PoolStats.SwapCount = 99

	event, err := Classify(&d, testSnapshot(next, 60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != model.EventUnchanged {
		t.Fatalf("kind = %q, want unchanged", event.Kind)
	}
}

func TestClassifyCorruptOldState(t *testing.T) {
	corrupt := testDatum(model.PoolState{AdaReserve: 0, TokenReserve: 1_000, TotalLPSupply: 500})
	next := testDatum(model.PoolState{AdaReserve: 1_000, TokenReserve: 1_000, TotalLPSupply: 500})

	_, err := Classify(&corrupt, testSnapshot(next, 70))
	if !errors.Is(err, amm.ErrCorruptPoolState) {
		t.Fatalf("expected ErrCorruptPoolState, got %v", err)
	}
}

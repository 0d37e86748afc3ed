package amm

import (
	"errors"
	"testing"

	"poolScope/internal/model"
)

func TestAddLiquidityInitial(t *testing.T) {
	state := model.PoolState{}

	result, err := AddLiquidity(state, 100, 400)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.LPMinted != 200 {
		t.Fatalf("lp_minted = %d, want isqrt(100*400) = 200", result.LPMinted)
	}
	if result.NewState.AdaReserve != 100 || result.NewState.TokenReserve != 400 {
		t.Fatalf("reserves = (%d, %d), want (100, 400)", result.NewState.AdaReserve, result.NewState.TokenReserve)
	}
	if result.NewState.TotalLPSupply != 200 {
		t.Fatalf("lp supply = %d, want 200", result.NewState.TotalLPSupply)
	}
}

func TestAddLiquidityProportional(t *testing.T) {
	state := model.PoolState{
		AdaReserve:    1_000_000,
		TokenReserve:  4_000_000,
		TotalLPSupply: 2_000_000,
	}

	result, err := AddLiquidity(state, 500_000, 2_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both ratios agree: 500000 * 2000000 / 1000000 = 1000000.
	if result.LPMinted != 1_000_000 {
		t.Fatalf("lp_minted = %d, want 1000000", result.LPMinted)
	}
	if result.NewState.TotalLPSupply != 3_000_000 {
		t.Fatalf("lp supply = %d, want 3000000", result.NewState.TotalLPSupply)
	}
}

func TestAddLiquidityImbalancedTakesMinimum(t *testing.T) {
	state := model.PoolState{
		AdaReserve:    1_000_000,
		TokenReserve:  4_000_000,
		TotalLPSupply: 2_000_000,
	}

	// Token side is the limiting ratio: 1000000*2/4 = 500000 vs ada 1000000.
	result, err := AddLiquidity(state, 500_000, 1_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.LPMinted != 500_000 {
		t.Fatalf("lp_minted = %d, want limiting-side 500000", result.LPMinted)
	}
}

func TestAddLiquidityCorruptState(t *testing.T) {
	state := model.PoolState{AdaReserve: 0, TokenReserve: 1_000, TotalLPSupply: 500}

	if _, err := AddLiquidity(state, 100, 100); !errors.Is(err, ErrCorruptPoolState) {
		t.Fatalf("expected ErrCorruptPoolState, got %v", err)
	}
}

func TestAddLiquidityInvalidInput(t *testing.T) {
	state := model.PoolState{AdaReserve: 1_000, TokenReserve: 1_000, TotalLPSupply: 1_000}

	if _, err := AddLiquidity(state, 0, 100); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero ada, got %v", err)
	}
	if _, err := AddLiquidity(state, 100, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero token, got %v", err)
	}
}

func TestRemoveLiquidity(t *testing.T) {
	state := model.PoolState{
		AdaReserve:    1_000_000,
		TokenReserve:  4_000_000,
		TotalLPSupply: 2_000_000,
	}

	result, err := RemoveLiquidity(state, 500_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.AdaOut != 250_000 {
		t.Fatalf("ada_out = %d, want 250000", result.AdaOut)
	}
	if result.TokenOut != 1_000_000 {
		t.Fatalf("token_out = %d, want 1000000", result.TokenOut)
	}
	if result.NewState.TotalLPSupply != 1_500_000 {
		t.Fatalf("lp supply = %d, want 1500000", result.NewState.TotalLPSupply)
	}
	if !result.NewState.Initialized() {
		t.Fatalf("reserves not positive after removal: %+v", result.NewState)
	}
}

func TestRemoveLiquidityFloors(t *testing.T) {
	state := model.PoolState{
		AdaReserve:    1_000,
		TokenReserve:  1_000,
		TotalLPSupply: 3,
	}

	result, err := RemoveLiquidity(state, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1 * 1000 / 3 floors to 333; the pool keeps the remainder.
	if result.AdaOut != 333 || result.TokenOut != 333 {
		t.Fatalf("payouts = (%d, %d), want (333, 333)", result.AdaOut, result.TokenOut)
	}
}

func TestRemoveLiquidityErrors(t *testing.T) {
	state := model.PoolState{
		AdaReserve:    1_000_000,
		TokenReserve:  1_000_000,
		TotalLPSupply: 1_000_000,
	}

	if _, err := RemoveLiquidity(state, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := RemoveLiquidity(state, 1_000_001); !errors.Is(err, ErrInsufficientLP) {
		t.Fatalf("expected ErrInsufficientLP, got %v", err)
	}
	// Burning the full supply would zero both reserves.
	if _, err := RemoveLiquidity(state, 1_000_000); !errors.Is(err, ErrPoolDrained) {
		t.Fatalf("expected ErrPoolDrained, got %v", err)
	}

	corrupt := model.PoolState{AdaReserve: 0, TokenReserve: 1_000, TotalLPSupply: 500}
	if _, err := RemoveLiquidity(corrupt, 100); !errors.Is(err, ErrCorruptPoolState) {
		t.Fatalf("expected ErrCorruptPoolState, got %v", err)
	}
}

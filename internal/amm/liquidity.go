package amm

import (
	"fmt"

	"poolScope/internal/model"
)

// AddLiquidityResult is the deterministic outcome of a liquidity deposit.
type AddLiquidityResult struct {
	LPMinted uint64          `json:"lp_minted"`
	NewState model.PoolState `json:"new_state"`
}

// RemoveLiquidityResult is the deterministic outcome of a liquidity withdrawal.
type RemoveLiquidityResult struct {
	AdaOut   uint64          `json:"ada_out"`
	TokenOut uint64          `json:"token_out"`
	NewState model.PoolState `json:"new_state"`
}

// AddLiquidity computes the LP tokens minted for a deposit.
//
// The first deposit mints isqrt(ada * token), anchoring the LP unit to the
// geometric mean of the deposited value; this is the only place
// non-proportional minting is legal. Every later deposit mints
// min(ada * supply / ada_reserve, token * supply / token_reserve): an
// imbalanced deposit is credited only for the limiting side, so callers are
// expected to pre-compute the optimal ratio against current reserves.
func AddLiquidity(state model.PoolState, adaAmount, tokenAmount uint64) (AddLiquidityResult, error) {
	if adaAmount == 0 || tokenAmount == 0 {
		return AddLiquidityResult{}, fmt.Errorf("%w: deposit amounts must be positive", ErrInvalidInput)
	}

	var lpMinted uint64
	if state.TotalLPSupply == 0 {
		lpMinted = IsqrtUint64(adaAmount, tokenAmount)
	} else {
		if !state.Initialized() {
			return AddLiquidityResult{}, fmt.Errorf("%w: zero reserve with lp supply %d",
				ErrCorruptPoolState, state.TotalLPSupply)
		}
		byAda := MulDiv(adaAmount, state.TotalLPSupply, state.AdaReserve)
		byToken := MulDiv(tokenAmount, state.TotalLPSupply, state.TokenReserve)
		lpMinted = byAda
		if byToken < byAda {
			lpMinted = byToken
		}
	}
	if lpMinted == 0 {
		return AddLiquidityResult{}, fmt.Errorf("%w: deposit too small to mint lp", ErrInvalidInput)
	}

	newState := state
	newState.AdaReserve = state.AdaReserve + adaAmount
	newState.TokenReserve = state.TokenReserve + tokenAmount
	newState.TotalLPSupply = state.TotalLPSupply + lpMinted

	return AddLiquidityResult{LPMinted: lpMinted, NewState: newState}, nil
}

// RemoveLiquidity computes the proportional withdrawal for an LP burn. Both
// payouts floor; the pool never pays a fractional unit in the LP owner's
// favor. A burn that would zero either reserve is rejected as a drain.
func RemoveLiquidity(state model.PoolState, lpAmount uint64) (RemoveLiquidityResult, error) {
	if lpAmount == 0 {
		return RemoveLiquidityResult{}, fmt.Errorf("%w: lp_amount must be positive", ErrInvalidInput)
	}
	if lpAmount > state.TotalLPSupply {
		return RemoveLiquidityResult{}, fmt.Errorf("%w: burn %d exceeds supply %d",
			ErrInsufficientLP, lpAmount, state.TotalLPSupply)
	}
	if !state.Initialized() {
		return RemoveLiquidityResult{}, fmt.Errorf("%w: zero reserve with lp supply %d",
			ErrCorruptPoolState, state.TotalLPSupply)
	}

	adaOut := MulDiv(lpAmount, state.AdaReserve, state.TotalLPSupply)
	tokenOut := MulDiv(lpAmount, state.TokenReserve, state.TotalLPSupply)

	if adaOut >= state.AdaReserve || tokenOut >= state.TokenReserve {
		return RemoveLiquidityResult{}, fmt.Errorf("%w: burn would empty a reserve", ErrPoolDrained)
	}

	newState := state
	newState.AdaReserve = state.AdaReserve - adaOut
	newState.TokenReserve = state.TokenReserve - tokenOut
	newState.TotalLPSupply = state.TotalLPSupply - lpAmount

	return RemoveLiquidityResult{AdaOut: adaOut, TokenOut: tokenOut, NewState: newState}, nil
}

// Package reconcile infers semantic pool events from before/after datum
// snapshots. Chain indexers deliver UTXO state, not events; this is the
// inverse computation that turns a reserve diff back into the action that
// produced it.
//
// Amount reconstruction is necessarily heuristic in places: the swapping
// user's identity and the exact LP mint/burn live in the full transaction
// body, which is not part of the pool-UTXO diff signal. Where the LP amount
// cannot be read off the supply delta it is estimated proportionally and
// marked as such.
package reconcile

import (
	"fmt"

	"poolScope/internal/amm"
	"poolScope/internal/model"
)

// Classify maps an (old, new) snapshot pair onto the closed event set.
// Classification order matters; the first matching rule wins:
//
//  1. no old state            -> PoolCreated
//  2. reserve deltas opposite -> Swap
//  3. both deltas positive    -> AddLiquidity; both negative -> RemoveLiquidity
//  4. no reserve delta, config differs -> ConfigUpdated
//  5. anything else           -> Unchanged
//
// Classify is a pure function of its inputs; re-running it on the same pair
// yields the same event.
func Classify(old *model.PoolDatum, snap model.PoolSnapshot) (model.ReconciledEvent, error) {
	event := model.ReconciledEvent{
		Pool:        snap.Pool,
		TxHash:      snap.TxHash,
		Slot:        snap.Slot,
		BlockHeight: snap.BlockHeight,
	}

	if old == nil {
		event.Kind = model.EventPoolCreated
		return event, nil
	}

	oldState := old.PoolState
	newState := snap.Datum.PoolState

	if !oldState.Initialized() && oldState.TotalLPSupply > 0 {
		return event, fmt.Errorf("%w: zero reserve with lp supply %d",
			amm.ErrCorruptPoolState, oldState.TotalLPSupply)
	}

	adaUp := newState.AdaReserve > oldState.AdaReserve
	adaDown := newState.AdaReserve < oldState.AdaReserve
	tokenUp := newState.TokenReserve > oldState.TokenReserve
	tokenDown := newState.TokenReserve < oldState.TokenReserve
	reservesFlat := !adaUp && !adaDown && !tokenUp && !tokenDown

	switch {
	case adaUp && tokenDown:
		event.Kind = model.EventSwap
		event.Swap = swapDetail(oldState, newState, old.PoolConfig, model.SwapAdaToToken)
	case adaDown && tokenUp:
		event.Kind = model.EventSwap
		event.Swap = swapDetail(oldState, newState, old.PoolConfig, model.SwapTokenToAda)
	case adaUp && tokenUp:
		event.Kind = model.EventAddLiquidity
		event.AddLiquidity = addDetail(oldState, newState)
	case adaDown && tokenDown:
		event.Kind = model.EventRemoveLiquidity
		event.RemoveLiquidity = removeDetail(oldState, newState)
	case reservesFlat && !old.PoolConfig.Equal(snap.Datum.PoolConfig):
		event.Kind = model.EventConfigUpdated
		event.ConfigUpdate = &model.ConfigDelta{Old: old.PoolConfig, New: snap.Datum.PoolConfig}
	default:
		// A one-sided reserve movement (donation, dust sweep) matches no
		// classification rule, even when the config also changed.
		event.Kind = model.EventUnchanged
	}

	return event, nil
}

func swapDetail(oldState, newState model.PoolState, config model.PoolConfig, direction model.SwapDirection) *model.SwapDetail {
	var amountIn, amountOut, reserveIn, reserveOut uint64
	if direction == model.SwapAdaToToken {
		amountIn = newState.AdaReserve - oldState.AdaReserve
		amountOut = oldState.TokenReserve - newState.TokenReserve
		reserveIn, reserveOut = oldState.AdaReserve, oldState.TokenReserve
	} else {
		amountIn = newState.TokenReserve - oldState.TokenReserve
		amountOut = oldState.AdaReserve - newState.AdaReserve
		reserveIn, reserveOut = oldState.TokenReserve, oldState.AdaReserve
	}

	return &model.SwapDetail{
		Direction: direction,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		// The fee is not observable from the delta; recompute it from the
		// known fee config, using the pre-trade state as baseline.
		Fee:                 amm.FeeAmount(amountIn, config.TotalFeeBps()),
		PriceImpactBps:      amm.PriceImpactBps(reserveIn, reserveOut, amountIn, amountOut),
		NewPriceAdaPerToken: amm.ScaledPrice(newState.AdaReserve, newState.TokenReserve),
	}
}

func addDetail(oldState, newState model.PoolState) *model.LiquidityDetail {
	detail := &model.LiquidityDetail{
		AdaAmount:   newState.AdaReserve - oldState.AdaReserve,
		TokenAmount: newState.TokenReserve - oldState.TokenReserve,
	}

	if newState.TotalLPSupply > oldState.TotalLPSupply {
		detail.LPAmount = newState.TotalLPSupply - oldState.TotalLPSupply
		return detail
	}

	// Supply delta unavailable; estimate proportionally from the ADA side.
	detail.LPEstimated = true
	if oldState.TotalLPSupply == 0 {
		detail.LPAmount = amm.IsqrtUint64(detail.AdaAmount, detail.TokenAmount)
	} else if oldState.AdaReserve > 0 {
		detail.LPAmount = amm.MulDiv(detail.AdaAmount, oldState.TotalLPSupply, oldState.AdaReserve)
	}
	return detail
}

func removeDetail(oldState, newState model.PoolState) *model.LiquidityDetail {
	detail := &model.LiquidityDetail{
		AdaAmount:   oldState.AdaReserve - newState.AdaReserve,
		TokenAmount: oldState.TokenReserve - newState.TokenReserve,
	}

	if newState.TotalLPSupply < oldState.TotalLPSupply {
		detail.LPAmount = oldState.TotalLPSupply - newState.TotalLPSupply
		return detail
	}

	detail.LPEstimated = true
	if oldState.AdaReserve > 0 {
		detail.LPAmount = amm.MulDiv(detail.AdaAmount, oldState.TotalLPSupply, oldState.AdaReserve)
	}
	return detail
}

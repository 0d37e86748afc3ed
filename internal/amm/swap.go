package amm

import (
	"fmt"
	"math/big"

	"poolScope/internal/model"
)

// SwapQuote is the deterministic result of a proposed swap. Amounts are exact
// integer values; EffectivePrice is scaled by PriceScale.
type SwapQuote struct {
	AmountIn       uint64          `json:"amount_in"`
	AmountOut      uint64          `json:"amount_out"`
	Fee            uint64          `json:"fee"`
	ProtocolFee    uint64          `json:"protocol_fee"`
	NewState       model.PoolState `json:"new_state"`
	PriceImpactBps uint64          `json:"price_impact_bps"`
	EffectivePrice uint64          `json:"effective_price"`
}

// Quote computes a constant-product swap with fee on input. The fee is charged
// on amount_in before the formula runs; charging it on the output instead is a
// different formula and must not be substituted. All divisions floor, so
// rounding errors always favor the pool.
func Quote(state model.PoolState, config model.PoolConfig, amountIn uint64, swapInToken bool) (SwapQuote, error) {
	if config.IsPaused {
		return SwapQuote{}, ErrPoolPaused
	}
	if amountIn == 0 {
		return SwapQuote{}, fmt.Errorf("%w: amount_in must be positive", ErrInvalidInput)
	}
	if uint32(config.FeeBps)+uint32(config.ProtocolFeeBps) > BpsDenominator {
		return SwapQuote{}, fmt.Errorf("%w: fee_bps %d + protocol_fee_bps %d exceeds %d",
			ErrInvalidInput, config.FeeBps, config.ProtocolFeeBps, BpsDenominator)
	}
	if !state.Initialized() {
		return SwapQuote{}, fmt.Errorf("%w: pool has a zero reserve", ErrPoolDrained)
	}

	var reserveIn, reserveOut uint64
	if swapInToken {
		reserveIn, reserveOut = state.TokenReserve, state.AdaReserve
	} else {
		reserveIn, reserveOut = state.AdaReserve, state.TokenReserve
	}

	totalFeeBps := config.TotalFeeBps()
	amountInAfterFee := ApplyFeeBps(amountIn, totalFeeBps)
	if amountInAfterFee == 0 {
		return SwapQuote{}, fmt.Errorf("%w: amount_in too small after fee", ErrInvalidInput)
	}

	// amount_out = after_fee * reserve_out / (reserve_in + after_fee)
	numerator := new(big.Int).SetUint64(amountInAfterFee)
	numerator.Mul(numerator, new(big.Int).SetUint64(reserveOut))
	denominator := new(big.Int).SetUint64(reserveIn)
	denominator.Add(denominator, new(big.Int).SetUint64(amountInAfterFee))
	amountOut := new(big.Int).Div(numerator, denominator).Uint64()

	if amountOut >= reserveOut {
		return SwapQuote{}, fmt.Errorf("%w: swap would empty the output reserve", ErrPoolDrained)
	}

	protocolFee := FeeAmount(amountIn, config.ProtocolFeeBps)
	fee := amountIn - amountInAfterFee - protocolFee

	newState := state
	if swapInToken {
		newState.TokenReserve = state.TokenReserve + amountIn
		newState.AdaReserve = state.AdaReserve - amountOut
	} else {
		newState.AdaReserve = state.AdaReserve + amountIn
		newState.TokenReserve = state.TokenReserve - amountOut
	}
	if !newState.Initialized() {
		return SwapQuote{}, fmt.Errorf("%w: resulting reserve is zero", ErrPoolDrained)
	}

	return SwapQuote{
		AmountIn:       amountIn,
		AmountOut:      amountOut,
		Fee:            fee,
		ProtocolFee:    protocolFee,
		NewState:       newState,
		PriceImpactBps: PriceImpactBps(reserveIn, reserveOut, amountIn, amountOut),
		EffectivePrice: ScaledPrice(amountOut, amountIn),
	}, nil
}

// CheckMinOut enforces a caller-declared output minimum. Minimum-out is caller
// policy, not an engine invariant, so it is a separate check from Quote.
func CheckMinOut(quote SwapQuote, minOut uint64) error {
	if quote.AmountOut < minOut {
		return fmt.Errorf("%w: amount_out %d below minimum %d", ErrSlippageExceeded, quote.AmountOut, minOut)
	}
	return nil
}

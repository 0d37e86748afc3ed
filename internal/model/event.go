package model

// EventKind enumerates the closed set of reconstructed pool transitions.
type EventKind string

const (
	EventPoolCreated     EventKind = "pool_created"
	EventSwap            EventKind = "swap"
	EventAddLiquidity    EventKind = "add_liquidity"
	EventRemoveLiquidity EventKind = "remove_liquidity"
	EventConfigUpdated   EventKind = "config_updated"
	EventUnchanged       EventKind = "unchanged"
)

// SwapDirection names the input side of a reconstructed swap.
type SwapDirection string

const (
	SwapAdaToToken SwapDirection = "ada_to_token"
	SwapTokenToAda SwapDirection = "token_to_ada"
)

// SwapDetail carries the economic parameters reconstructed for a swap.
type SwapDetail struct {
	Direction SwapDirection `json:"direction"`
	AmountIn  uint64        `json:"amount_in"`
	AmountOut uint64        `json:"amount_out"`
	// Fee is recomputed from the pool's known fee config; it is not directly
	// observable from the reserve delta.
	Fee uint64 `json:"fee"`
	// PriceImpactBps measures deviation from the pre-trade spot price.
	PriceImpactBps uint64 `json:"price_impact_bps"`
	// NewPriceAdaPerToken is the post-trade price scaled by 1e6.
	NewPriceAdaPerToken uint64 `json:"new_price_ada_per_token"`
}

// LiquidityDetail carries the reconstructed parameters of an add or remove.
type LiquidityDetail struct {
	AdaAmount   uint64 `json:"ada_amount"`
	TokenAmount uint64 `json:"token_amount"`
	LPAmount    uint64 `json:"lp_amount"`
	// LPEstimated marks the LP amount as a proportional estimate. The exact
	// amount lives in the LP policy's mint/burn on the same transaction, which
	// is not part of the pool UTXO diff.
	LPEstimated bool `json:"lp_estimated"`
}

// ConfigDelta carries the before/after config of a governance update.
type ConfigDelta struct {
	Old PoolConfig `json:"old"`
	New PoolConfig `json:"new"`
}

// ReconciledEvent is an immutable fact about a past pool transition. Exactly
// one of the detail fields matching Kind is set; the rest are nil.
type ReconciledEvent struct {
	Kind        EventKind    `json:"kind"`
	Pool        PoolIdentity `json:"pool"`
	TxHash      string       `json:"tx_hash"`
	Slot        uint64       `json:"slot"`
	BlockHeight uint64       `json:"block_height"`

	Swap            *SwapDetail      `json:"swap,omitempty"`
	AddLiquidity    *LiquidityDetail `json:"add_liquidity,omitempty"`
	RemoveLiquidity *LiquidityDetail `json:"remove_liquidity,omitempty"`
	ConfigUpdate    *ConfigDelta     `json:"config_update,omitempty"`
}

package model

import (
	"encoding/hex"
	"fmt"
)

// PoolIdentity identifies a pool by its native token, paired implicitly with ADA.
// Immutable once the pool is created.
type PoolIdentity struct {
	TokenPolicy string `json:"token_policy"`
	TokenName   string `json:"token_name"`
}

// Key returns a stable map key for the identity.
func (p PoolIdentity) Key() string {
	return p.TokenPolicy + "." + p.TokenName
}

func (p PoolIdentity) String() string {
	return p.Key()
}

// PoolState holds the mutable core reserves of a pool.
// A pool with either reserve at zero is uninitialized or drained and must not
// accept swaps. TotalLPSupply == 0 is the only legal "no liquidity yet" state.
type PoolState struct {
	AdaReserve          uint64 `json:"ada_reserve"`
	TokenReserve        uint64 `json:"token_reserve"`
	TotalLPSupply       uint64 `json:"total_lp_supply"`
	LastInteractionSlot uint64 `json:"last_interaction_slot"`
	PoolNFTName         string `json:"pool_nft_name"`
}

// Initialized reports whether both reserves are positive.
func (s PoolState) Initialized() bool {
	return s.AdaReserve > 0 && s.TokenReserve > 0
}

// PoolConfig holds governance-mutable pool parameters.
// FeeBps + ProtocolFeeBps must not exceed 10000.
type PoolConfig struct {
	FeeBps         uint16 `json:"fee_bps"`
	ProtocolFeeBps uint16 `json:"protocol_fee_bps"`
	Creator        string `json:"creator"`
	Admin          string `json:"admin"`
	IsPaused       bool   `json:"is_paused"`
}

// TotalFeeBps returns the combined trading and protocol fee.
func (c PoolConfig) TotalFeeBps() uint16 {
	return c.FeeBps + c.ProtocolFeeBps
}

// Equal compares every config field.
func (c PoolConfig) Equal(other PoolConfig) bool {
	return c == other
}

// PoolStats holds cumulative, append-only pool counters. Every counter is
// non-decreasing across successive states of the same pool.
type PoolStats struct {
	TotalVolumeAda          uint64 `json:"total_volume_ada"`
	TotalVolumeToken        uint64 `json:"total_volume_token"`
	TotalFeesCollected      uint64 `json:"total_fees_collected"`
	SwapCount               uint64 `json:"swap_count"`
	LiquidityProvidersCount uint64 `json:"liquidity_providers_count"`
	CreatedAtSlot           uint64 `json:"created_at_slot"`
	// LastPriceAdaPerToken is scaled by 1e6.
	LastPriceAdaPerToken uint64 `json:"last_price_ada_per_token"`
}

// PoolRecord is the storage representation of a pool's latest known summary.
type PoolRecord struct {
	TokenPolicy   string `json:"token_policy"`
	TokenName     string `json:"token_name"`
	AdaReserve    uint64 `json:"ada_reserve"`
	TokenReserve  uint64 `json:"token_reserve"`
	TotalLPSupply uint64 `json:"total_lp_supply"`
	FeeBps        uint16 `json:"fee_bps"`
	FirstSeenSlot uint64 `json:"first_seen_slot"`
	LastSeenSlot  uint64 `json:"last_seen_slot"`
}

// ParsePolicyID validates a hex-encoded policy identifier.
func ParsePolicyID(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("policy id is empty")
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return "", fmt.Errorf("policy id is not hex: %w", err)
	}
	return raw, nil
}

// Package minada computes the minimum lovelace collateral a UTXO must carry.
//
// The values are advisory: the authoritative minimum comes from protocol
// parameters that can change, so every script-owned entity carries a nonzero
// safety buffer. A pool output that drops below its own minimum becomes
// unspendable and permanently locks the remaining funds, which makes the
// post-swap pool check the single most important safety property here.
package minada

import (
	"fmt"

	"poolScope/internal/amm"
	"poolScope/internal/model"
)

// EntityKind selects the base amount and safety buffer for a UTXO shape.
type EntityKind string

const (
	EntityPool    EntityKind = "pool"
	EntityFactory EntityKind = "factory"
	EntityLpToken EntityKind = "lp_token"
	EntityUser    EntityKind = "user"
	EntityGeneric EntityKind = "generic"
)

const (
	// PerAssetCost is the lovelace cost per native asset beyond ADA.
	PerAssetCost = 344_798

	// PerByteCost is the lovelace cost per byte of inline datum.
	PerByteCost = 4_310

	// scriptMinBufferBps floors the buffer for script-owned outputs.
	scriptMinBufferBps = 500
)

type entityParams struct {
	base      uint64
	bufferBps uint16
}

var entityTable = map[EntityKind]entityParams{
	EntityPool:    {base: 2_500_000, bufferBps: 1_500},
	EntityFactory: {base: 2_000_000, bufferBps: 1_500},
	EntityLpToken: {base: 1_500_000, bufferBps: 1_000},
	EntityUser:    {base: 1_200_000, bufferBps: 500},
	EntityGeneric: {base: 1_000_000, bufferBps: 500},
}

// MinAda returns the required lovelace for a UTXO carrying assetCount native
// assets (excluding ADA) and an inline datum of datumSizeBytes.
func MinAda(assetCount int, datumSizeBytes int, isScriptAddress bool, kind EntityKind) (uint64, error) {
	params, ok := entityTable[kind]
	if !ok {
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}

	bufferBps := params.bufferBps
	if isScriptAddress && bufferBps < scriptMinBufferBps {
		bufferBps = scriptMinBufferBps
	}

	required := params.base
	if assetCount > 0 {
		required += uint64(assetCount) * PerAssetCost
	}
	if datumSizeBytes > 0 {
		required += uint64(datumSizeBytes) * PerByteCost
	}
	required += amm.FeeAmount(required, bufferBps)

	return required, nil
}

// Result reports a min-ADA validation outcome. Deficit is
// max(0, required - actual).
type Result struct {
	IsValid  bool   `json:"is_valid"`
	Required uint64 `json:"required"`
	Deficit  uint64 `json:"deficit"`
}

// Validate checks an output's actual lovelace against its requirement.
func Validate(actualLovelace uint64, assetCount int, datumSizeBytes int, isScriptAddress bool, kind EntityKind) (Result, error) {
	required, err := MinAda(assetCount, datumSizeBytes, isScriptAddress, kind)
	if err != nil {
		return Result{}, err
	}

	result := Result{IsValid: actualLovelace >= required, Required: required}
	if !result.IsValid {
		result.Deficit = required - actualLovelace
	}
	return result, nil
}

// ValidatePoolOutput checks that a pool state (typically the proposed state
// after a swap or withdrawal) keeps the pool UTXO above its own minimum. The
// pool output is always script-owned.
func ValidatePoolOutput(state model.PoolState, assetCount int, datumSizeBytes int) (Result, error) {
	result, err := Validate(state.AdaReserve, assetCount, datumSizeBytes, true, EntityPool)
	if err != nil {
		return Result{}, err
	}
	if !result.IsValid {
		return result, fmt.Errorf("%w: pool output %d below required %d",
			amm.ErrPoolDrained, state.AdaReserve, result.Required)
	}
	return result, nil
}

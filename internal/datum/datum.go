// Package datum builds, validates, and updates the CIP-68 pool datum.
package datum

import (
	"fmt"

	"poolScope/internal/amm"
	"poolScope/internal/model"
)

// SupportedVersion is the newest datum version this engine understands. A
// datum with a greater version is rejected rather than partially interpreted.
const SupportedVersion = 1

// Default metadata keys filled in by Build.
const (
	KeyName        = "name"
	KeyDescription = "description"
	KeyPoolType    = "pool_type"
	KeyFeeBps      = "fee_bps"
)

// Build assembles a pool datum from its parts. When metadata is nil, default
// CIP-68 metadata (name, description, pool type, fee) is filled in.
func Build(state model.PoolState, config model.PoolConfig, stats model.PoolStats, metadata *model.CIP68Metadata) model.PoolDatum {
	var md model.CIP68Metadata
	if metadata != nil {
		md = *metadata
	} else {
		name := state.PoolNFTName
		if name == "" {
			name = "AMM Pool"
		}
		md = model.CIP68Metadata{Pairs: []model.MetadataPair{
			{Key: KeyName, Value: name},
			{Key: KeyDescription, Value: "Constant-product liquidity pool"},
			{Key: KeyPoolType, Value: "constant_product"},
			{Key: KeyFeeBps, Value: uint64(config.FeeBps)},
		}}
	}

	return model.PoolDatum{
		Metadata:   md,
		Version:    SupportedVersion,
		PoolState:  state,
		PoolConfig: config,
		PoolStats:  stats,
	}
}

// ValidateStructure is the cheap sanity gate run before trusting any further
// field of a datum.
func ValidateStructure(d model.PoolDatum) error {
	if d.Version < 1 {
		return fmt.Errorf("%w: version %d below 1", amm.ErrInvalidInput, d.Version)
	}
	if d.Version > SupportedVersion {
		return fmt.Errorf("%w: version %d, engine supports up to %d",
			amm.ErrUnsupportedDatumVersion, d.Version, SupportedVersion)
	}
	if d.Metadata.GetString(KeyName) == "" {
		return fmt.Errorf("%w: metadata name is empty", amm.ErrInvalidInput)
	}
	if uint32(d.PoolConfig.FeeBps)+uint32(d.PoolConfig.ProtocolFeeBps) > amm.BpsDenominator {
		return fmt.Errorf("%w: combined fee exceeds %d bps", amm.ErrInvalidInput, amm.BpsDenominator)
	}
	return nil
}

// Delta names the sub-structures replaced by an update. Nil fields keep the
// old datum's value.
type Delta struct {
	NewState    *model.PoolState
	NewStats    *model.PoolStats
	NewConfig   *model.PoolConfig
	NewMetadata *model.CIP68Metadata
}

// ApplyUpdate produces the successor datum for a pool-touching transaction.
// The old datum is never mutated; unaffected sub-structures carry over, and
// config/metadata only change when the delta names them explicitly.
func ApplyUpdate(old model.PoolDatum, delta Delta) model.PoolDatum {
	next := old
	if delta.NewState != nil {
		next.PoolState = *delta.NewState
	}
	if delta.NewStats != nil {
		next.PoolStats = *delta.NewStats
	}
	if delta.NewConfig != nil {
		next.PoolConfig = *delta.NewConfig
	}
	if delta.NewMetadata != nil {
		next.Metadata = *delta.NewMetadata
	}
	return next
}

// UpdateStats returns stats with the swap counters advanced. Counters only
// ever increment; the price is overwritten with the latest value and the slot
// backfills created_at_slot when no earlier interaction set it.
func UpdateStats(old model.PoolStats, volumeAdaDelta, volumeTokenDelta, feeDelta, newPrice, slot uint64) model.PoolStats {
	next := old
	next.TotalVolumeAda += volumeAdaDelta
	next.TotalVolumeToken += volumeTokenDelta
	next.TotalFeesCollected += feeDelta
	next.SwapCount++
	if newPrice > 0 {
		next.LastPriceAdaPerToken = newPrice
	}
	if next.CreatedAtSlot == 0 {
		next.CreatedAtSlot = slot
	}
	return next
}

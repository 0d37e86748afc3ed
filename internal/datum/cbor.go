package datum

import (
	"fmt"
	"sort"

	"github.com/blinklabs-io/gouroboros/cbor"

	"poolScope/internal/amm"
	"poolScope/internal/model"
)

// WirePoolDatum is the on-chain CBOR shape of the CIP-68 inline datum: a
// constructor wrapping [metadata, version, extra, state, config, stats].
type WirePoolDatum struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	Metadata map[cbor.ByteString]cbor.Value
	Version  uint64
	Extra    cbor.RawMessage
	State    WirePoolState
	Config   WirePoolConfig
	Stats    WirePoolStats
}

func (d *WirePoolDatum) UnmarshalCBOR(cborData []byte) error {
	d.SetCbor(cborData)
	var tmpConstr cbor.Constructor
	if _, err := cbor.Decode(cborData, &tmpConstr); err != nil {
		return err
	}
	return cbor.DecodeGeneric(tmpConstr.FieldsCbor(), d)
}

// WirePoolState mirrors the pool_state constructor.
type WirePoolState struct {
	cbor.StructAsArray
	AdaReserve          uint64
	TokenReserve        uint64
	TotalLPSupply       uint64
	LastInteractionSlot uint64
	PoolNFTName         []byte
}

func (s *WirePoolState) UnmarshalCBOR(cborData []byte) error {
	var tmpConstr cbor.Constructor
	if _, err := cbor.Decode(cborData, &tmpConstr); err != nil {
		return err
	}
	return cbor.DecodeGeneric(tmpConstr.FieldsCbor(), s)
}

// WirePoolConfig mirrors the pool_config constructor. Paused follows the
// Plutus convention of an integer flag rather than a CBOR bool.
type WirePoolConfig struct {
	cbor.StructAsArray
	FeeBps         uint64
	ProtocolFeeBps uint64
	Creator        []byte
	Admin          []byte
	Paused         uint64
}

func (c *WirePoolConfig) UnmarshalCBOR(cborData []byte) error {
	var tmpConstr cbor.Constructor
	if _, err := cbor.Decode(cborData, &tmpConstr); err != nil {
		return err
	}
	return cbor.DecodeGeneric(tmpConstr.FieldsCbor(), c)
}

// WirePoolStats mirrors the pool_stats constructor.
type WirePoolStats struct {
	cbor.StructAsArray
	TotalVolumeAda          uint64
	TotalVolumeToken        uint64
	TotalFeesCollected      uint64
	SwapCount               uint64
	LiquidityProvidersCount uint64
	CreatedAtSlot           uint64
	LastPriceAdaPerToken    uint64
}

func (s *WirePoolStats) UnmarshalCBOR(cborData []byte) error {
	var tmpConstr cbor.Constructor
	if _, err := cbor.Decode(cborData, &tmpConstr); err != nil {
		return err
	}
	return cbor.DecodeGeneric(tmpConstr.FieldsCbor(), s)
}

// ToModel converts the wire shape to the engine's datum model. Metadata pairs
// are ordered by key; CBOR map decode does not preserve wire order.
func (d *WirePoolDatum) ToModel() model.PoolDatum {
	pairs := make([]model.MetadataPair, 0, len(d.Metadata))
	for key, value := range d.Metadata {
		pairs = append(pairs, model.MetadataPair{
			Key:   string(key.Bytes()),
			Value: metadataValue(value.Value()),
		})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })

	return model.PoolDatum{
		Metadata: model.CIP68Metadata{Pairs: pairs},
		Version:  uint32(d.Version),
		Extra:    []byte(d.Extra),
		PoolState: model.PoolState{
			AdaReserve:          d.State.AdaReserve,
			TokenReserve:        d.State.TokenReserve,
			TotalLPSupply:       d.State.TotalLPSupply,
			LastInteractionSlot: d.State.LastInteractionSlot,
			PoolNFTName:         string(d.State.PoolNFTName),
		},
		PoolConfig: model.PoolConfig{
			FeeBps:         uint16(d.Config.FeeBps),
			ProtocolFeeBps: uint16(d.Config.ProtocolFeeBps),
			Creator:        string(d.Config.Creator),
			Admin:          string(d.Config.Admin),
			IsPaused:       d.Config.Paused != 0,
		},
		PoolStats: model.PoolStats{
			TotalVolumeAda:          d.Stats.TotalVolumeAda,
			TotalVolumeToken:        d.Stats.TotalVolumeToken,
			TotalFeesCollected:      d.Stats.TotalFeesCollected,
			SwapCount:               d.Stats.SwapCount,
			LiquidityProvidersCount: d.Stats.LiquidityProvidersCount,
			CreatedAtSlot:           d.Stats.CreatedAtSlot,
			LastPriceAdaPerToken:    d.Stats.LastPriceAdaPerToken,
		},
	}
}

func metadataValue(value interface{}) interface{} {
	switch typed := value.(type) {
	case []byte:
		return string(typed)
	case cbor.ByteString:
		return string(typed.Bytes())
	default:
		return typed
	}
}

// DecodePoolDatum decodes a raw inline datum and returns the model plus the
// exact serialized size in bytes. A datum version the engine does not support
// is rejected here, before any field is trusted.
func DecodePoolDatum(raw []byte) (model.PoolDatum, int, error) {
	var wire WirePoolDatum
	if _, err := cbor.Decode(raw, &wire); err != nil {
		return model.PoolDatum{}, 0, fmt.Errorf("decode pool datum: %w", err)
	}
	if wire.Version > SupportedVersion {
		return model.PoolDatum{}, 0, fmt.Errorf("%w: version %d",
			amm.ErrUnsupportedDatumVersion, wire.Version)
	}
	return wire.ToModel(), len(wire.Cbor()), nil
}

// EstimateSize approximates the serialized datum size for engine-built datums
// that have not been on the wire yet. The estimate leans high so min-ADA
// requirements derived from it stay conservative.
func EstimateSize(d model.PoolDatum) int {
	// Constructor framing plus version/extra.
	size := 16 + len(d.Extra)
	for _, pair := range d.Metadata.Pairs {
		size += 4 + len(pair.Key)
		if s, ok := pair.Value.(string); ok {
			size += len(s)
		} else {
			size += 9
		}
	}
	// pool_state: four uint64 plus nft name.
	size += 4 + 4*9 + len(d.PoolState.PoolNFTName)
	// pool_config: two fees, two credentials, paused flag.
	size += 4 + 2*3 + len(d.PoolConfig.Creator) + len(d.PoolConfig.Admin) + 4
	// pool_stats: seven uint64.
	size += 4 + 7*9
	return size
}

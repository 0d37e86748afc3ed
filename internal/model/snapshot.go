package model

// PoolSnapshot is an inbound UTXO snapshot delivered by the indexer
// collaborator whenever the UTXO at a pool's address changes. The datum
// arrives either already decoded in Datum or as raw inline-datum CBOR in
// DatumCbor; the snapshot source decodes the latter before the session
// sees it.
type PoolSnapshot struct {
	Pool        PoolIdentity `json:"pool"`
	Datum       PoolDatum    `json:"datum"`
	TxHash      string       `json:"tx_hash"`
	Slot        uint64       `json:"slot"`
	BlockHeight uint64       `json:"block_height"`

	// DatumCbor is the hex-encoded raw inline datum. When set it takes
	// precedence over Datum.
	DatumCbor string `json:"datum_cbor,omitempty"`
	// DatumSize is the serialized datum size in bytes, exact when decoded
	// from DatumCbor and zero otherwise.
	DatumSize int `json:"datum_size,omitempty"`
}

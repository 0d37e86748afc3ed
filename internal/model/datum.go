package model

// MetadataPair is a single CIP-68 metadata entry. Values are heterogeneous
// (strings and integers in practice) and order is preserved on the wire.
type MetadataPair struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// CIP68Metadata is the ordered key/value map of a CIP-68 datum.
type CIP68Metadata struct {
	Pairs []MetadataPair `json:"pairs"`
}

// Get returns the value for a key and whether it was present.
func (m CIP68Metadata) Get(key string) (interface{}, bool) {
	for _, pair := range m.Pairs {
		if pair.Key == key {
			return pair.Value, true
		}
	}
	return nil, false
}

// GetString returns the string value for a key, or "" if absent or not a string.
func (m CIP68Metadata) GetString(key string) string {
	value, ok := m.Get(key)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

// Set replaces the value for a key, appending when the key is new.
// The receiver is not modified; a copied metadata is returned.
func (m CIP68Metadata) Set(key string, value interface{}) CIP68Metadata {
	pairs := make([]MetadataPair, 0, len(m.Pairs)+1)
	replaced := false
	for _, pair := range m.Pairs {
		if pair.Key == key {
			pairs = append(pairs, MetadataPair{Key: key, Value: value})
			replaced = true
			continue
		}
		pairs = append(pairs, pair)
	}
	if !replaced {
		pairs = append(pairs, MetadataPair{Key: key, Value: value})
	}
	return CIP68Metadata{Pairs: pairs}
}

// PoolDatum is the single unit of on-chain truth for a pool. It is read from a
// UTXO's inline datum and superseded, never mutated, on every pool-touching
// transaction.
type PoolDatum struct {
	Metadata   CIP68Metadata `json:"metadata"`
	Version    uint32        `json:"version"`
	Extra      []byte        `json:"extra,omitempty"`
	PoolState  PoolState     `json:"pool_state"`
	PoolConfig PoolConfig    `json:"pool_config"`
	PoolStats  PoolStats     `json:"pool_stats"`
}

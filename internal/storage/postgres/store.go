package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"poolScope/internal/model"
)

// Store provides Postgres persistence for pools and reconciled events.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertPools inserts or updates pool summaries.
func (s *Store) UpsertPools(ctx context.Context, pools []model.PoolRecord) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		batch.Queue(`
			INSERT INTO pools (
				token_policy, token_name, ada_reserve, token_reserve, total_lp_supply,
				fee_bps, first_seen_slot, last_seen_slot, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
			ON CONFLICT (token_policy, token_name)
			DO UPDATE SET
				ada_reserve = EXCLUDED.ada_reserve,
				token_reserve = EXCLUDED.token_reserve,
				total_lp_supply = EXCLUDED.total_lp_supply,
				fee_bps = EXCLUDED.fee_bps,
				first_seen_slot = LEAST(pools.first_seen_slot, EXCLUDED.first_seen_slot),
				last_seen_slot = GREATEST(pools.last_seen_slot, EXCLUDED.last_seen_slot),
				updated_at = now()
		`,
			pool.TokenPolicy,
			pool.TokenName,
			int64(pool.AdaReserve),
			int64(pool.TokenReserve),
			int64(pool.TotalLPSupply),
			int32(pool.FeeBps),
			int64(pool.FirstSeenSlot),
			int64(pool.LastSeenSlot),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// InsertEvents appends reconciled events. The (tx_hash, pool, kind) conflict
// target makes redeliveries idempotent at the storage layer too.
func (s *Store) InsertEvents(ctx context.Context, events []model.ReconciledEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		detail, err := eventDetailJSON(event)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO pool_events (
				token_policy, token_name, kind, tx_hash, slot, block_height, detail, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (tx_hash, token_policy, token_name, kind) DO NOTHING
		`,
			event.Pool.TokenPolicy,
			event.Pool.TokenName,
			string(event.Kind),
			event.TxHash,
			int64(event.Slot),
			int64(event.BlockHeight),
			detail,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func eventDetailJSON(event model.ReconciledEvent) ([]byte, error) {
	var detail interface{}
	switch event.Kind {
	case model.EventSwap:
		detail = event.Swap
	case model.EventAddLiquidity:
		detail = event.AddLiquidity
	case model.EventRemoveLiquidity:
		detail = event.RemoveLiquidity
	case model.EventConfigUpdated:
		detail = event.ConfigUpdate
	default:
		detail = struct{}{}
	}
	data, err := json.Marshal(detail)
	if err != nil {
		return nil, fmt.Errorf("marshal event detail: %w", err)
	}
	return data, nil
}

// LoadState returns last_processed_slot for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var slot uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_slot FROM watch_state WHERE name=$1`, name)
	if err := row.Scan(&slot); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return slot, true, nil
}

// SaveState upserts last_processed_slot for a name.
func (s *Store) SaveState(ctx context.Context, name string, slot uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO watch_state (name, last_processed_slot, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_slot = EXCLUDED.last_processed_slot, updated_at = now()
	`, name, slot)
	return err
}

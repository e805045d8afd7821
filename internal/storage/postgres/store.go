package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"swaplens/internal/model"
)

// Store provides Postgres persistence for resolved swaps.
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

// UpsertSwaps inserts or updates resolved swaps keyed by (chain_id, tx_hash).
func (s *Store) UpsertSwaps(ctx context.Context, swaps []model.SwapRecord) error {
	if len(swaps) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, swap := range swaps {
		batch.Queue(`
			INSERT INTO resolved_swaps (
				chain_id, tx_hash, block_number, sender, recipient,
				token_in, token_out, amount_in_raw, amount_out_raw,
				amount_in, amount_out, native_in, native_out, unverified,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now(),now())
			ON CONFLICT (chain_id, tx_hash)
			DO UPDATE SET
				block_number = EXCLUDED.block_number,
				sender = EXCLUDED.sender,
				recipient = EXCLUDED.recipient,
				token_in = EXCLUDED.token_in,
				token_out = EXCLUDED.token_out,
				amount_in_raw = EXCLUDED.amount_in_raw,
				amount_out_raw = EXCLUDED.amount_out_raw,
				amount_in = EXCLUDED.amount_in,
				amount_out = EXCLUDED.amount_out,
				native_in = EXCLUDED.native_in,
				native_out = EXCLUDED.native_out,
				unverified = EXCLUDED.unverified,
				updated_at = now()
		`,
			int64(swap.ChainID),
			swap.TxHash,
			int64(swap.BlockNumber),
			swap.Sender,
			swap.Recipient,
			swap.TokenIn,
			swap.TokenOut,
			swap.AmountInRaw,
			swap.AmountOutRaw,
			swap.AmountIn,
			swap.AmountOut,
			swap.NativeIn,
			swap.NativeOut,
			swap.Unverified,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range swaps {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutSwapBatch lets the store satisfy the storage.Storage interface for
// batch-mode sinks that do not carry a caller context.
func (s *Store) PutSwapBatch(swaps []model.SwapRecord) error {
	return s.UpsertSwaps(context.Background(), swaps)
}

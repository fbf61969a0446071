package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"traceScope/internal/model"
)

// Store provides Postgres persistence for token metadata and simulation
// results.
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

// UpsertTokenMeta inserts or updates cached token metadata.
func (s *Store) UpsertTokenMeta(ctx context.Context, meta model.TokenMeta) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO token_metadata (address, name, symbol, decimals, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (address)
		DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			decimals = EXCLUDED.decimals,
			updated_at = now()
	`,
		strings.ToLower(meta.Address),
		meta.Name,
		meta.Symbol,
		int16(meta.Decimals),
	)
	return err
}

// GetTokenMeta returns cached token metadata for an address.
func (s *Store) GetTokenMeta(ctx context.Context, address string) (model.TokenMeta, bool, error) {
	var meta model.TokenMeta
	var decimals int16
	row := s.pool.QueryRow(ctx, `
		SELECT address, name, symbol, decimals FROM token_metadata WHERE address=$1
	`, strings.ToLower(address))
	if err := row.Scan(&meta.Address, &meta.Name, &meta.Symbol, &decimals); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.TokenMeta{}, false, nil
		}
		return model.TokenMeta{}, false, err
	}
	meta.Decimals = uint8(decimals)
	return meta, true, nil
}

// SaveSimulation archives one simulation result as JSON.
func (s *Store) SaveSimulation(ctx context.Context, result *model.SimulationResult) error {
	if result == nil {
		return nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO simulations (chain_id, from_address, to_address, result, created_at)
		VALUES ($1, $2, $3, $4, now())
	`,
		int64(result.ChainID),
		strings.ToLower(result.Request.From),
		strings.ToLower(result.Request.To),
		payload,
	)
	return err
}

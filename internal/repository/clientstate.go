package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sellerdesk/onboard/internal/database"
)

// ClientStateStore is the PostgreSQL implementation of the key-value side
// channel the submission orchestrator relies on across the checkout
// redirect. Writes are idempotent single-key upserts.
type ClientStateStore struct {
	pool *pgxpool.Pool
}

// NewClientStateStore creates a new client-state store.
// Returns error if pool is nil.
func NewClientStateStore(pool *pgxpool.Pool) (*ClientStateStore, error) {
	if pool == nil {
		return nil, errors.New("database pool is required")
	}
	return &ClientStateStore{pool: pool}, nil
}

// Get returns the value for key, reporting whether it exists.
func (s *ClientStateStore) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := database.QB.
		Select("value").
		From("client_state").
		Where("key = ?", key).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build client-state query: %w", err)
	}

	var value string
	err = s.pool.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query client state: %w", err)
	}
	return value, true, nil
}

// Set upserts a key.
func (s *ClientStateStore) Set(ctx context.Context, key, value string) error {
	query, args, err := database.QB.
		Insert("client_state").
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build client-state upsert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert client state: %w", err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *ClientStateStore) Delete(ctx context.Context, key string) error {
	query, args, err := database.QB.
		Delete("client_state").
		Where("key = ?", key).
		ToSql()
	if err != nil {
		return fmt.Errorf("build client-state delete: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete client state: %w", err)
	}
	return nil
}

package devicecode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Insert stores a new unconsumed code. The code column is the primary key,
// so a concurrent issuance of the same value surfaces as ErrCodeExists and
// the caller regenerates.
func (r *PostgresRepository) Insert(ctx context.Context, code *Code) error {
	query := `
		INSERT INTO device_codes (code, token_id, expires_at, consumed)
		VALUES ($1, $2, $3, FALSE)
		ON CONFLICT (code) DO NOTHING`

	result, err := r.pool.Exec(ctx, query, code.Code, code.TokenID, code.ExpiresAt)
	if err != nil {
		return fmt.Errorf("inserting device code: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCodeExists
	}

	return nil
}

// Consume performs the redemption as a single conditional update. The check
// for existence, consumption, and expiry and the consumed flip behave as one
// unit; a read-then-write sequence would leave a double-redemption window.
func (r *PostgresRepository) Consume(ctx context.Context, code string, now time.Time) (uuid.UUID, error) {
	query := `
		UPDATE device_codes
		SET consumed = TRUE
		WHERE code = $1 AND NOT consumed AND expires_at > $2
		RETURNING token_id`

	var tokenID uuid.UUID
	err := r.pool.QueryRow(ctx, query, code, now).Scan(&tokenID)
	if err == nil {
		return tokenID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("consuming device code: %w", err)
	}

	// The update matched nothing. Losing a redemption race and redeeming a
	// stale code both land here; the row's state tells them apart.
	var consumed bool
	var expiresAt time.Time
	err = r.pool.QueryRow(ctx,
		"SELECT consumed, expires_at FROM device_codes WHERE code = $1",
		code,
	).Scan(&consumed, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("checking device code: %w", err)
	}

	if consumed {
		return uuid.Nil, ErrConsumed
	}
	return uuid.Nil, ErrExpired
}

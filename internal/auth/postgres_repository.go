package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

// CreateUserWithToken inserts the user row and its first bearer token inside
// one transaction. A unique violation on the email maps to ErrEmailTaken.
func (r *PostgresRepository) CreateUserWithToken(ctx context.Context, user *User, token *Token) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING created_at`,
		user.ID, user.Email, user.PasswordHash,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO api_tokens (id, label, token, user_id, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING created_at`,
		token.ID, token.Label, token.Value, token.UserID,
	).Scan(&token.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by its (already normalized) email.
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1`

	var u User
	err := r.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return &u, nil
}

// CreateToken inserts a new bearer token record.
func (r *PostgresRepository) CreateToken(ctx context.Context, token *Token) error {
	query := `
		INSERT INTO api_tokens (id, label, token, user_id, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		token.ID, token.Label, token.Value, token.UserID,
	).Scan(&token.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting token: %w", err)
	}

	return nil
}

// GetTokenByValue retrieves a token by exact match on its secret value.
func (r *PostgresRepository) GetTokenByValue(ctx context.Context, value string) (*Token, error) {
	query := `
		SELECT id, label, token, user_id, created_at
		FROM api_tokens
		WHERE token = $1`

	return r.scanToken(ctx, query, value)
}

// GetTokenByID retrieves a token by its UUID.
func (r *PostgresRepository) GetTokenByID(ctx context.Context, id uuid.UUID) (*Token, error) {
	query := `
		SELECT id, label, token, user_id, created_at
		FROM api_tokens
		WHERE id = $1`

	return r.scanToken(ctx, query, id)
}

// scanToken scans a single Token row. Returns ErrTokenNotFound if no rows.
func (r *PostgresRepository) scanToken(ctx context.Context, query string, args ...any) (*Token, error) {
	var t Token
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&t.ID, &t.Label, &t.Value, &t.UserID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("scanning token row: %w", err)
	}
	return &t, nil
}

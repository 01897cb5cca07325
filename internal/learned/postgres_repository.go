package learned

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

// Record inserts or increments in one statement, so concurrent reports of
// the same command never lose counts to a read-modify-write race.
func (r *PostgresRepository) Record(ctx context.Context, ownerToken uuid.UUID, entry Entry) error {
	query := `
		INSERT INTO learned_commands (id, content, os, pwd, ls_output, owner_token, usage_count, created_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, $7, $7)
		ON CONFLICT (owner_token, content) DO UPDATE
		SET usage_count = learned_commands.usage_count + 1,
		    last_used_at = EXCLUDED.last_used_at`

	_, err := r.pool.Exec(ctx, query,
		uuid.New(), entry.Content, entry.OS, entry.Pwd, entry.LsOutput,
		ownerToken, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording learned command: %w", err)
	}

	return nil
}

// List retrieves one page of the owner's learned commands, most used first,
// with an independently computed total.
func (r *PostgresRepository) List(ctx context.Context, ownerToken uuid.UUID, limit, offset int) (*Page, error) {
	if limit == 0 {
		limit = 20
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM learned_commands WHERE owner_token = $1", ownerToken,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("counting learned commands: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, content, os, pwd, ls_output, owner_token, usage_count, created_at, last_used_at
		FROM learned_commands
		WHERE owner_token = $1
		ORDER BY usage_count DESC, created_at DESC
		LIMIT $2 OFFSET $3`,
		ownerToken, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing learned commands: %w", err)
	}
	defer rows.Close()

	items := []LearnedCommand{}
	for rows.Next() {
		var lc LearnedCommand
		err := rows.Scan(
			&lc.ID, &lc.Content, &lc.OS, &lc.Pwd, &lc.LsOutput,
			&lc.OwnerToken, &lc.UsageCount, &lc.CreatedAt, &lc.LastUsedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning learned command row: %w", err)
		}
		items = append(items, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating learned command rows: %w", err)
	}

	return &Page{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// Get retrieves a learned command only if it belongs to the given token.
func (r *PostgresRepository) Get(ctx context.Context, ownerToken, id uuid.UUID) (*LearnedCommand, error) {
	query := `
		SELECT id, content, os, pwd, ls_output, owner_token, usage_count, created_at, last_used_at
		FROM learned_commands
		WHERE id = $1 AND owner_token = $2`

	var lc LearnedCommand
	err := r.pool.QueryRow(ctx, query, id, ownerToken).Scan(
		&lc.ID, &lc.Content, &lc.OS, &lc.Pwd, &lc.LsOutput,
		&lc.OwnerToken, &lc.UsageCount, &lc.CreatedAt, &lc.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying learned command: %w", err)
	}

	return &lc, nil
}

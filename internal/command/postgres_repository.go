package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const commandColumns = `id, title, text, description, platform, visibility, favorite,
	       usage_count, owner_token, created_at, updated_at, last_used_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// visibilityConditions translates the filter into independent WHERE
// conditions with positional args. The same conditions drive both the data
// query and the count query so total always matches the page predicate.
func visibilityConditions(filter ListFilter) ([]string, []any) {
	var conditions []string
	var args []any
	argIdx := 1

	if filter.OwnerToken != nil {
		conditions = append(conditions, fmt.Sprintf("(owner_token = $%d OR visibility = 'PUBLIC')", argIdx))
		args = append(args, *filter.OwnerToken)
		argIdx++
	} else {
		conditions = append(conditions, "visibility = 'PUBLIC'")
	}

	if filter.Text != nil {
		conditions = append(conditions, fmt.Sprintf("text ILIKE $%d", argIdx))
		args = append(args, "%"+*filter.Text+"%")
		argIdx++
	}

	if filter.Tag != nil {
		conditions = append(conditions, fmt.Sprintf(
			`EXISTS (
				SELECT 1 FROM command_tags ct
				JOIN tags t ON t.id = ct.tag_id
				WHERE ct.command_id = commands.id AND t.name ILIKE $%d
			)`, argIdx))
		args = append(args, "%"+*filter.Tag+"%")
	}

	return conditions, args
}

// List retrieves one page of commands visible to the presented identity,
// with an independently computed total.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) (*Page, error) {
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	if filter.Limit < 1 {
		filter.Limit = 1
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	conditions, args := visibilityConditions(filter)
	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM commands %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting commands: %w", err)
	}

	dataQuery := fmt.Sprintf(`
		SELECT %s
		FROM commands
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, commandColumns, whereClause, len(args)+1, len(args)+2)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("listing commands: %w", err)
	}
	defer rows.Close()

	var commands []Command
	for rows.Next() {
		var c Command
		err := rows.Scan(
			&c.ID, &c.Title, &c.Text, &c.Description, &c.Platform,
			&c.Visibility, &c.Favorite, &c.UsageCount, &c.OwnerToken,
			&c.CreatedAt, &c.UpdatedAt, &c.LastUsedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning command row: %w", err)
		}
		commands = append(commands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating command rows: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(commands))
	for _, c := range commands {
		ids = append(ids, c.ID)
	}

	tags, err := r.loadTags(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]CommandWithTags, 0, len(commands))
	for _, c := range commands {
		names := tags[c.ID]
		if names == nil {
			names = []string{}
		}
		items = append(items, CommandWithTags{Command: c, Tags: names})
	}

	return &Page{
		Items:  items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// Create inserts a new command stamped with the owning token and
// synchronizes its tag associations.
func (r *PostgresRepository) Create(ctx context.Context, ownerToken uuid.UUID, params CreateParams) (*CommandWithTags, error) {
	now := time.Now().UTC()
	c := Command{
		ID:          uuid.New(),
		Title:       params.Title,
		Text:        params.Text,
		Description: params.Description,
		Platform:    params.Platform,
		Visibility:  params.Visibility,
		Favorite:    params.Favorite,
		UsageCount:  params.UsageCount,
		OwnerToken:  ownerToken,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `
		INSERT INTO commands (
			id, title, text, description, platform, visibility, favorite,
			usage_count, owner_token, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Title, c.Text, c.Description, c.Platform,
		c.Visibility, c.Favorite, c.UsageCount, c.OwnerToken, now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting command: %w", err)
	}

	if err := r.syncTags(ctx, ownerToken, c.ID, params.Tags); err != nil {
		return nil, err
	}

	tags, err := r.loadTags(ctx, []uuid.UUID{c.ID})
	if err != nil {
		return nil, err
	}
	names := tags[c.ID]
	if names == nil {
		names = []string{}
	}

	return &CommandWithTags{Command: c, Tags: names}, nil
}

// Delete removes a command only if it belongs to the given token. Absent
// rows and rows owned by someone else both report ErrNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, ownerToken, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		"DELETE FROM commands WHERE id = $1 AND owner_token = $2", id, ownerToken)
	if err != nil {
		return fmt.Errorf("deleting command: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Suggest returns up to ten visible command texts matching the substring,
// most used first.
func (r *PostgresRepository) Suggest(ctx context.Context, ownerToken *uuid.UUID, query string) ([]string, error) {
	term := "%" + query + "%"

	var sql string
	var args []any
	if ownerToken != nil {
		sql = `
			SELECT text
			FROM commands
			WHERE (owner_token = $1 OR visibility = 'PUBLIC') AND text ILIKE $2
			ORDER BY usage_count DESC, created_at DESC
			LIMIT 10`
		args = []any{*ownerToken, term}
	} else {
		sql = `
			SELECT text
			FROM commands
			WHERE visibility = 'PUBLIC' AND text ILIKE $1
			ORDER BY usage_count DESC, created_at DESC
			LIMIT 10`
		args = []any{term}
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying suggestions: %w", err)
	}
	defer rows.Close()

	suggestions := []string{}
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scanning suggestion row: %w", err)
		}
		suggestions = append(suggestions, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating suggestion rows: %w", err)
	}

	return suggestions, nil
}

// syncTags upserts each tag name within the owner's namespace and associates
// it with the command. Both statements are idempotent, so duplicate names in
// the request collapse to a single tag and association.
func (r *PostgresRepository) syncTags(ctx context.Context, ownerToken, commandID uuid.UUID, names []string) error {
	for _, name := range names {
		var tagID uuid.UUID
		err := r.pool.QueryRow(ctx, `
			INSERT INTO tags (id, name, owner_token)
			VALUES ($1, $2, $3)
			ON CONFLICT (owner_token, name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			uuid.New(), name, ownerToken,
		).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("upserting tag %q: %w", name, err)
		}

		_, err = r.pool.Exec(ctx, `
			INSERT INTO command_tags (command_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			commandID, tagID,
		)
		if err != nil {
			return fmt.Errorf("associating tag %q: %w", name, err)
		}
	}

	return nil
}

// loadTags fetches tag names for the given command IDs in one query.
func (r *PostgresRepository) loadTags(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]string, error) {
	tags := make(map[uuid.UUID][]string)
	if len(ids) == 0 {
		return tags, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT ct.command_id, t.name
		FROM command_tags ct
		JOIN tags t ON t.id = ct.tag_id
		WHERE ct.command_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var commandID uuid.UUID
		var name string
		if err := rows.Scan(&commandID, &name); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		tags[commandID] = append(tags[commandID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tag rows: %w", err)
	}

	return tags, nil
}

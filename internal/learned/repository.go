package learned

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a learned command does not exist or belongs
// to a different token.
var ErrNotFound = errors.New("learned command not found")

// Repository provides owner-scoped operations on the learned_commands table.
type Repository interface {
	// Record upserts the entry for the owner: an existing (owner, content)
	// row has its usage count incremented, otherwise a new row starts at 1.
	Record(ctx context.Context, ownerToken uuid.UUID, entry Entry) error
	List(ctx context.Context, ownerToken uuid.UUID, limit, offset int) (*Page, error)
	Get(ctx context.Context, ownerToken, id uuid.UUID) (*LearnedCommand, error)
}

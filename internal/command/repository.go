package command

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a command does not exist or is owned by a
// different token. The two cases are deliberately indistinguishable so
// existence does not leak across owners.
var ErrNotFound = errors.New("command not found")

// Repository provides visibility-scoped operations on the commands table.
type Repository interface {
	List(ctx context.Context, filter ListFilter) (*Page, error)
	Create(ctx context.Context, ownerToken uuid.UUID, params CreateParams) (*CommandWithTags, error)
	Delete(ctx context.Context, ownerToken, id uuid.UUID) error
	Suggest(ctx context.Context, ownerToken *uuid.UUID, query string) ([]string, error)
}

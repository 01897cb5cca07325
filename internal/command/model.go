package command

import (
	"time"

	"github.com/google/uuid"
)

// Visibility values for a command. PUBLIC commands are readable by anyone;
// PRIVATE commands only by their owning token.
const (
	VisibilityPublic  = "PUBLIC"
	VisibilityPrivate = "PRIVATE"
)

// ValidVisibility reports whether v is one of the two allowed values.
func ValidVisibility(v string) bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Command represents a row in the commands table. Ownership is per bearer
// token, not per user: two tokens of the same user do not share commands.
type Command struct {
	ID          uuid.UUID
	Title       *string
	Text        string
	Description *string
	Platform    string
	Visibility  string
	Favorite    bool
	UsageCount  int
	OwnerToken  uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastUsedAt  *time.Time
}

// CommandWithTags is a command merged with its associated tag names.
type CommandWithTags struct {
	Command
	Tags []string
}

// ListFilter narrows a catalog listing. OwnerToken is the presented
// identity (nil for anonymous callers); the text and tag filters are
// optional case-insensitive substring matches combined conjunctively.
type ListFilter struct {
	OwnerToken *uuid.UUID
	Text       *string
	Tag        *string
	Limit      int
	Offset     int
}

// Page is one window of a filtered listing. Total reflects the full filter
// predicate independently of Limit and Offset.
type Page struct {
	Items  []CommandWithTags
	Total  int
	Limit  int
	Offset int
}

// CreateParams carries the fields for a new command. UsageCount is nonzero
// only when promoting a learned command, which keeps its counter.
type CreateParams struct {
	Title       *string
	Text        string
	Description *string
	Platform    string
	Visibility  string
	Favorite    bool
	UsageCount  int
	Tags        []string
}

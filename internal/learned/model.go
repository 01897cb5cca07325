package learned

import (
	"time"

	"github.com/google/uuid"
)

// LearnedCommand represents a row in the learned_commands table: a frequency
// counter for shell commands a client has reported executing, unique per
// (owner token, content).
type LearnedCommand struct {
	ID         uuid.UUID
	Content    string
	OS         *string
	Pwd        *string
	LsOutput   *string
	OwnerToken uuid.UUID
	UsageCount int
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// Entry carries the context a client reports alongside an executed command.
type Entry struct {
	Content  string
	OS       *string
	Pwd      *string
	LsOutput *string
}

// Page is one owner-scoped window of learned commands.
type Page struct {
	Items  []LearnedCommand
	Total  int
	Limit  int
	Offset int
}

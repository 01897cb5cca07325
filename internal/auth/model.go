package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a row in the users table.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Token represents a row in the api_tokens table. The Value field is the
// opaque bearer secret; possession of it grants all of the token's
// privileges. UserID is nil for admin-seeded tokens that have no user row.
type Token struct {
	ID        uuid.UUID
	Label     string
	Value     string
	UserID    *uuid.UUID
	CreatedAt time.Time
}

// Credentials is the result of a successful registration or login.
type Credentials struct {
	Token  string
	UserID uuid.UUID
}

package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrTokenNotFound is returned when a bearer token record is not found.
var ErrTokenNotFound = errors.New("token not found")

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

// Repository provides operations on the users and api_tokens tables.
type Repository interface {
	// CreateUserWithToken inserts a user and its first bearer token in a
	// single transaction; a user without a token is never observable.
	CreateUserWithToken(ctx context.Context, user *User, token *Token) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateToken(ctx context.Context, token *Token) error
	GetTokenByValue(ctx context.Context, value string) (*Token, error)
	GetTokenByID(ctx context.Context, id uuid.UUID) (*Token, error)
}

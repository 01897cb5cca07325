package devicecode

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no device code with the given value exists.
var ErrNotFound = errors.New("device code not found")

// ErrConsumed is returned when a code has already been redeemed.
var ErrConsumed = errors.New("code already used")

// ErrExpired is returned when a code is past its expiry.
var ErrExpired = errors.New("code expired")

// ErrCodeExists is returned by Insert when the generated code value collides
// with an existing row.
var ErrCodeExists = errors.New("device code already exists")

// Repository provides operations on the device_codes table.
type Repository interface {
	Insert(ctx context.Context, code *Code) error
	// Consume atomically marks a redeemable code as consumed and returns the
	// bound token ID. Under concurrent redemption of the same code at most
	// one caller succeeds; the rest observe ErrConsumed.
	Consume(ctx context.Context, code string, now time.Time) (uuid.UUID, error)
}
